// Package hash collects the digests used for cache fingerprints, memo keys
// and bloom bit positions.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

// Sum128 returns both halves of the murmur3 128 bit digest of b.
func Sum128(b []byte) (uint64, uint64) {
	return murmur3.Sum128(b)
}

// Fingerprint is the hex SHA-256 of b. It is stable across processes and
// versions, so it can be persisted.
func Fingerprint(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Short is a 16 character hex xxhash of s, for keys that never leave Redis.
func Short(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}
