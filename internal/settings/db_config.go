package settings

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// snapshot holds the in-memory copy of DB settings.
type snapshot struct {
	updatedAt time.Time
	values    map[string]json.RawMessage
}

var current atomic.Pointer[snapshot]

func init() {
	current.Store(&snapshot{values: map[string]json.RawMessage{}})
}

// Store replaces the in-memory settings snapshot.
func Store(updatedAt time.Time, values map[string]json.RawMessage) {
	next := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		next[key] = append(json.RawMessage(nil), v...)
	}
	current.Store(&snapshot{updatedAt: updatedAt.UTC(), values: next})
}

// UpdatedAt returns the newest update time among loaded settings.
func UpdatedAt() time.Time {
	return current.Load().updatedAt
}

// Value returns a copy of the raw value stored for key.
func Value(key string) (json.RawMessage, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}
	val, ok := current.Load().values[key]
	if !ok {
		return nil, false
	}
	return append(json.RawMessage(nil), val...), true
}

// String returns the setting as a string, accepting JSON strings or bare values.
func String(key string) (string, bool) {
	raw, ok := Value(key)
	if !ok {
		return "", false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if errUnmarshal := json.Unmarshal(raw, &s); errUnmarshal == nil {
		return strings.TrimSpace(s), true
	}
	return strings.TrimSpace(string(raw)), true
}

// Int returns the setting as an integer, accepting JSON numbers or numeric strings.
func Int(key string) (int64, bool) {
	s, ok := String(key)
	if !ok || s == "" {
		return 0, false
	}
	if n, errParse := strconv.ParseInt(s, 10, 64); errParse == nil {
		return n, true
	}
	if f, errParse := strconv.ParseFloat(s, 64); errParse == nil {
		return int64(f), true
	}
	return 0, false
}

// LearnMoreURL returns the configured learn-more link, empty when unset.
func LearnMoreURL() string {
	s, _ := String(LearnMoreURLKey)
	return s
}

// CardCacheTTL returns the configured card cache TTL. Zero disables caching.
func CardCacheTTL() time.Duration {
	n, ok := Int(CardCacheTTLSecondsKey)
	if !ok || n < 0 {
		n = DefaultCardCacheTTLSeconds
	}
	ttl := time.Duration(n) * time.Second
	if ttl > maxCardCacheTTL {
		return maxCardCacheTTL
	}
	return ttl
}
