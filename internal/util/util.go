package util

import (
	"net/url"
	"strings"
)

// MaskValue obscures a secret for logging, keeping only a few edge characters.
func MaskValue(value string) string {
	switch n := len(value); {
	case n > 8:
		return value[:4] + "..." + value[n-4:]
	case n > 4:
		return value[:2] + "..." + value[n-2:]
	case n > 2:
		return value[:1] + "..." + value[n-1:]
	default:
		return value
	}
}

// MaskSensitiveQuery masks token-like query parameters in a raw query string.
func MaskSensitiveQuery(raw string) string {
	if raw == "" {
		return ""
	}
	parts := strings.Split(raw, "&")
	changed := false
	for i, part := range parts {
		if part == "" {
			continue
		}
		keyPart, valuePart, _ := strings.Cut(part, "=")
		decodedKey, err := url.QueryUnescape(keyPart)
		if err != nil {
			decodedKey = keyPart
		}
		if !isSensitiveParam(decodedKey) {
			continue
		}
		decodedValue, err := url.QueryUnescape(valuePart)
		if err != nil {
			decodedValue = valuePart
		}
		parts[i] = keyPart + "=" + url.QueryEscape(MaskValue(strings.TrimSpace(decodedValue)))
		changed = true
	}
	if !changed {
		return raw
	}
	return strings.Join(parts, "&")
}

func isSensitiveParam(key string) bool {
	key = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(key)), "[]")
	if key == "" {
		return false
	}
	return key == "key" || key == "jwt" ||
		strings.Contains(key, "token") ||
		strings.Contains(key, "secret") ||
		strings.Contains(key, "password")
}
