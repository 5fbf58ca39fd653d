package jobs

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashLength is the number of hex characters kept from the digest.
const HashLength = 16

// Hash derives the deduplication key for a normalized (prompt, style) pair.
// It is a cache key, not a security boundary, so the SHA-256 digest is
// truncated.
func Hash(prompt, style string) string {
	sum := sha256.Sum256([]byte(prompt + "|" + style))
	return hex.EncodeToString(sum[:])[:HashLength]
}
