package engine

import (
	"crypto/sha256"
	"strings"
	"sync"
)

// RecentComments is a fixed-size ring buffer of hashes of recently returned
// comments, used for anti-repetition across requests. Safe for concurrent
// use.
type RecentComments struct {
	mu     sync.Mutex
	hashes [][sha256.Size]byte
	next   int
	filled bool
}

// NewRecentComments creates a ring buffer holding up to size hashes.
func NewRecentComments(size int) *RecentComments {
	if size <= 0 {
		size = 50
	}
	return &RecentComments{hashes: make([][sha256.Size]byte, size)}
}

// IsUnique reports whether text has not been returned recently and records
// it. The second submission of an identical text therefore reports false.
func (r *RecentComments) IsUnique(text string) bool {
	hash := hashComment(text)

	r.mu.Lock()
	defer r.mu.Unlock()

	limit := len(r.hashes)
	if !r.filled {
		limit = r.next
	}
	for i := 0; i < limit; i++ {
		if r.hashes[i] == hash {
			return false
		}
	}

	r.hashes[r.next] = hash
	r.next++
	if r.next == len(r.hashes) {
		r.next = 0
		r.filled = true
	}
	return true
}

// hashComment hashes whitespace-normalized, lowercased comment text.
func hashComment(text string) [sha256.Size]byte {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	return sha256.Sum256([]byte(normalized))
}
