package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/addons-front/listing-api/internal/card"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "listing:card"

// RedisOptions configures a RedisCache.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisCache stores JSON-encoded cards in redis.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to redis and verifies the connection.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, errors.New("cache: empty redis address")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if errPing := client.Ping(pingCtx).Err(); errPing != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", errPing)
	}
	return newRedisCache(client, opts.KeyPrefix), nil
}

func newRedisCache(client *redis.Client, prefix string) *RedisCache {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Close releases the redis connection pool.
func (r *RedisCache) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

// Token reads the current generation and the stamp of versionID.
func (r *RedisCache) Token(ctx context.Context, versionID uint64) (Token, error) {
	vals, err := r.client.MGet(ctx, r.generationKey(), r.stampKey(versionID)).Result()
	if err != nil {
		return Token{}, fmt.Errorf("cache: redis token: %w", err)
	}
	gen, errGen := parseCounter(vals[0])
	if errGen != nil {
		return Token{}, fmt.Errorf("cache: bad generation: %w", errGen)
	}
	stamp, errStamp := parseCounter(vals[1])
	if errStamp != nil {
		return Token{}, fmt.Errorf("cache: bad stamp for version %d: %w", versionID, errStamp)
	}
	return Token{Generation: gen, Stamp: stamp}, nil
}

// Get returns the cached card for versionID.
func (r *RedisCache) Get(ctx context.Context, versionID uint64) (card.Card, bool, error) {
	token, err := r.Token(ctx, versionID)
	if err != nil {
		return card.Card{}, false, err
	}
	raw, err := r.client.Get(ctx, r.entryKey(token, versionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return card.Card{}, false, nil
	}
	if err != nil {
		return card.Card{}, false, fmt.Errorf("cache: redis get: %w", err)
	}
	var c card.Card
	if errUnmarshal := json.Unmarshal(raw, &c); errUnmarshal != nil {
		return card.Card{}, false, fmt.Errorf("cache: decode card: %w", errUnmarshal)
	}
	return c, true, nil
}

// Set stores c for ttl under the key of token. A card stored with a stale
// token lands under a key Get no longer reads and expires unseen.
// A non-positive ttl is a no-op.
func (r *RedisCache) Set(ctx context.Context, versionID uint64, token Token, c card.Card, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cache: encode card: %w", err)
	}
	if errSet := r.client.Set(ctx, r.entryKey(token, versionID), raw, ttl).Err(); errSet != nil {
		return fmt.Errorf("cache: redis set: %w", errSet)
	}
	return nil
}

// Invalidate bumps the stamp of versionID so its current entry is no longer read.
func (r *RedisCache) Invalidate(ctx context.Context, versionID uint64) error {
	if errIncr := r.client.Incr(ctx, r.stampKey(versionID)).Err(); errIncr != nil {
		return fmt.Errorf("cache: redis incr stamp: %w", errIncr)
	}
	return nil
}

// Flush starts a new generation; old entries expire on their own.
func (r *RedisCache) Flush(ctx context.Context) error {
	if errIncr := r.client.Incr(ctx, r.generationKey()).Err(); errIncr != nil {
		return fmt.Errorf("cache: redis incr: %w", errIncr)
	}
	return nil
}

// parseCounter reads an MGET value; a missing key counts as zero.
func parseCounter(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected type %T", v)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, err)
	}
	return n, nil
}

func (r *RedisCache) generationKey() string {
	return r.prefix + ":gen"
}

func (r *RedisCache) stampKey(versionID uint64) string {
	return r.prefix + ":stamp:" + strconv.FormatUint(versionID, 10)
}

func (r *RedisCache) entryKey(token Token, versionID uint64) string {
	return r.prefix + ":" + strconv.FormatInt(token.Generation, 10) + ":" +
		strconv.FormatUint(versionID, 10) + ":" + strconv.FormatInt(token.Stamp, 10)
}
