package audit

import (
	"context"
	"sort"
	"sync"
)

// defaultQueryLimit caps unfiltered queries when the caller sets no limit.
const defaultQueryLimit = 1000

// InMemoryStore keeps audit entries in an append-only slice for tests and
// ephemeral demos. Entries are copied on the way in and out so callers can
// never mutate what was recorded.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *InMemoryStore) Query(_ context.Context, filter Filter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*Entry
	for i := range s.entries {
		if filter.Matches(&s.entries[i]) {
			clone := s.entries[i]
			matches = append(matches, &clone)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Timestamp.After(matches[j].Timestamp)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.entries)), nil
}

func (s *InMemoryStore) Close() error { return nil }
