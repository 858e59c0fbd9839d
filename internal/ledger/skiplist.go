package ledger

import (
	"sync"
	"time"
)

// SkipList is an in-memory negative cache for videos that came back
// NotFound. Entries expire after a TTL, so a video that reappears is
// retried instead of being permanently written off; deliberately not a
// durable ledger record.
type SkipList struct {
	mu    sync.Mutex
	ttl   time.Duration
	until map[string]time.Time
	now   func() time.Time
}

func NewSkipList(ttl time.Duration) *SkipList {
	return &SkipList{
		ttl:   ttl,
		until: make(map[string]time.Time),
		now:   time.Now,
	}
}

// Skip marks a video id to be ignored until the TTL elapses.
func (s *SkipList) Skip(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.until[id] = s.now().Add(s.ttl)
}

// Skipped reports whether the id is still inside its skip window.
// Expired entries are pruned on the way out.
func (s *SkipList) Skipped(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline, ok := s.until[id]
	if !ok {
		return false
	}
	if s.now().After(deadline) {
		delete(s.until, id)
		return false
	}
	return true
}
