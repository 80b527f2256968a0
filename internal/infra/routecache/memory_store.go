package routecache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/safetravels/internal/domain/route"
)

const defaultMaxEntries = 1024

type entry struct {
	analysis  route.Analysis
	expiresAt time.Time
}

// MemoryStore is an in-process route analysis cache for dev and single
// instance deployments. When full, expired entries are purged first and
// then the entry closest to expiry is evicted.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]entry
	maxEntries int
	now        func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &MemoryStore{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get implements route.Cache.
func (s *MemoryStore) Get(_ context.Context, key string) (route.Analysis, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return route.Analysis{}, false, nil
	}
	if s.expired(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return route.Analysis{}, false, nil
	}
	return e.analysis, true, nil
}

// Set implements route.Cache. A non-positive ttl never expires.
func (s *MemoryStore) Set(_ context.Context, key string, analysis route.Analysis, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxEntries {
		s.evictLocked()
	}
	s.entries[key] = entry{analysis: analysis, expiresAt: exp}
	return nil
}

// Len reports the number of cached analyses, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) evictLocked() {
	var (
		victim    string
		victimExp time.Time
	)
	for key, e := range s.entries {
		if s.expired(e.expiresAt) {
			delete(s.entries, key)
			continue
		}
		if e.expiresAt.IsZero() {
			continue
		}
		if victim == "" || e.expiresAt.Before(victimExp) {
			victim, victimExp = key, e.expiresAt
		}
	}
	if len(s.entries) < s.maxEntries {
		return
	}
	if victim == "" {
		for key := range s.entries {
			victim = key
			break
		}
	}
	delete(s.entries, victim)
}

func (s *MemoryStore) expired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(s.now())
}

var _ route.Cache = (*MemoryStore)(nil)
