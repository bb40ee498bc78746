package model

import (
	"strings"
	"time"
)

const pairKeySeparator = "|"

// Match is derived from two reciprocal LIKE rows, seen from UserID's side.
type Match struct {
	UserID        string    `json:"user_id"`
	CounterpartID string    `json:"counterpart_id"`
	MatchedAt     time.Time `json:"matched_at"`
}

// PairKey identifies an unordered pair of users. PairKey(a, b) == PairKey(b, a).
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + pairKeySeparator + b
}

// SplitPairKey is the inverse of PairKey; the returned ids are sorted.
func SplitPairKey(key string) (string, string, bool) {
	low, high, ok := strings.Cut(key, pairKeySeparator)
	if !ok || low == "" || high == "" {
		return "", "", false
	}
	return low, high, true
}
