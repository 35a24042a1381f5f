package settings

import "time"

// DB setting keys and defaults.
const (
	// LearnMoreURLKey is the DB setting key for the card's learn-more link.
	LearnMoreURLKey = "LEARN_MORE_URL"
	// CardCacheTTLSecondsKey controls how long rendered cards stay cached.
	CardCacheTTLSecondsKey = "CARD_CACHE_TTL_SECONDS"
	// DefaultCardCacheTTLSeconds is the fallback card cache TTL.
	DefaultCardCacheTTLSeconds = 300
	// maxCardCacheTTL caps the card cache TTL.
	maxCardCacheTTL = 24 * time.Hour
)
