package clinical

import (
	"context"
	"sort"
	"sync"

	"medvault/pkg/domain"
	"medvault/pkg/platform/sentinel"
)

// InMemoryStore keeps clinical records in process memory for tests and
// ephemeral demos.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*Record)}
}

func (s *InMemoryStore) Create(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := cloneRecord(record)
	s.records[record.ID] = clone
	return nil
}

func (s *InMemoryStore) ListByPseudonym(_ context.Context, pseudonym domain.Pseudonym) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []*Record
	for _, r := range s.records {
		if r.Pseudonym == pseudonym {
			matches = append(matches, cloneRecord(r))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches, nil
}

func (s *InMemoryStore) Save(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.records[record.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	clone := cloneRecord(record)
	clone.Pseudonym = existing.Pseudonym
	clone.CreatedAt = existing.CreatedAt
	s.records[record.ID] = clone
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

func (s *InMemoryStore) Close() error { return nil }

func cloneRecord(r *Record) *Record {
	clone := *r
	clone.Allergies = append([]string(nil), r.Allergies...)
	clone.Medications = append([]string(nil), r.Medications...)
	clone.Diagnoses = append([]string(nil), r.Diagnoses...)
	return &clone
}
