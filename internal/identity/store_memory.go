package identity

import (
	"context"
	"sort"
	"sync"

	"medvault/pkg/domain"
	"medvault/pkg/platform/sentinel"
)

// InMemoryStore keeps identity records in process memory. It backs tests and
// ephemeral demos; semantics mirror the SQLite store, including uniqueness of
// both id and pseudonym.
type InMemoryStore struct {
	mu          sync.RWMutex
	records     map[string]*Record
	byPseudonym map[domain.Pseudonym]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records:     make(map[string]*Record),
		byPseudonym: make(map[domain.Pseudonym]string),
	}
}

func (s *InMemoryStore) Create(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byPseudonym[record.Pseudonym]; exists {
		return sentinel.ErrConflict
	}
	clone := *record
	s.records[record.ID] = &clone
	s.byPseudonym[record.Pseudonym] = record.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

// Save replaces the mutable fields of an existing record. The stored
// pseudonym always wins, so a caller cannot rewrite it by accident.
func (s *InMemoryStore) Save(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.records[record.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	clone := *record
	clone.Pseudonym = existing.Pseudonym
	clone.CreatedAt = existing.CreatedAt
	s.records[record.ID] = &clone
	return nil
}

func (s *InMemoryStore) List(_ context.Context, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]*Record, 0, len(s.records))
	for _, r := range s.records {
		clone := *r
		records = append(records, &clone)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return false, nil
	}
	delete(s.byPseudonym, record.Pseudonym)
	delete(s.records, id)
	return true, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

func (s *InMemoryStore) CountByRegion(_ context.Context) (map[domain.Region]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.Region]int64)
	for _, r := range s.records {
		counts[r.Region]++
	}
	return counts, nil
}

func (s *InMemoryStore) Close() error { return nil }
