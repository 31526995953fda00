package enrich

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash returns the hex SHA-256 digest of a document's raw text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// HashSet tracks content hashes seen within one run. It is owned exclusively
// by the metadata stage, which runs before the fan-out barrier, so no
// locking is required; it must never be shared with the parallel stages.
type HashSet struct {
	seen map[string]struct{}
}

// NewHashSet creates an empty run-scoped hash set.
func NewHashSet() *HashSet {
	return &HashSet{seen: make(map[string]struct{})}
}

// Seen reports whether hash was already recorded, inserting it if not.
// The first call for a given hash returns false, every later call true.
func (h *HashSet) Seen(hash string) bool {
	if _, ok := h.seen[hash]; ok {
		return true
	}
	h.seen[hash] = struct{}{}
	return false
}

// Len returns the number of distinct hashes recorded.
func (h *HashSet) Len() int {
	return len(h.seen)
}
