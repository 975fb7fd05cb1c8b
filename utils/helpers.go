package utils

import (
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// NewID mints a prefixed opaque ID, e.g. "card_V1StGXR8Z5Ab".
func NewID(prefix string) string {
	id, err := gonanoid.New(12)
	if err != nil {
		// gonanoid only errors when crypto/rand fails; fall back to a
		// timestamp so card creation never aborts.
		return prefix + "_" + time.Now().UTC().Format("20060102150405.000000000")
	}
	return prefix + "_" + id
}

// NowISO returns the current time as an ISO-8601 (RFC 3339) UTC string.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Truncate trims s and cuts it to at most max runes.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) > max {
		return string(r[:max])
	}
	return s
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
