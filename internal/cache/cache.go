package cache

import (
	"context"
	"time"

	"github.com/addons-front/listing-api/internal/card"
)

// Token identifies the cache state a card was built against. Take it with
// CardCache.Token before loading the data the card is built from.
type Token struct {
	Generation int64
	Stamp      int64
}

// CardCache stores rendered permission cards by version ID.
//
// Flush bumps a generation and Invalidate bumps a per-version stamp. Set only
// makes a card visible when the token passed in still matches both, so a card
// built before an invalidation is never served after it.
type CardCache interface {
	Token(ctx context.Context, versionID uint64) (Token, error)
	Get(ctx context.Context, versionID uint64) (card.Card, bool, error)
	Set(ctx context.Context, versionID uint64, token Token, c card.Card, ttl time.Duration) error
	Invalidate(ctx context.Context, versionID uint64) error
	Flush(ctx context.Context) error
}
