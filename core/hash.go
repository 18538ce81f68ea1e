package core

import (
	"encoding/hex"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// KeyFromContent generates a deterministic hex key from text content using
// BLAKE2b hashing. Identical content produces identical keys.
func KeyFromContent(text string) string {
	h, _ := blake2b.New(20, nil) // 20 bytes = 160 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Normalize canonicalizes text for cache addressing: lowercased and trimmed.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// CacheKey returns the content key of the normalized text.
func CacheKey(text string) string {
	return KeyFromContent(Normalize(text))
}
