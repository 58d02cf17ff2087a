package orphan

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"idgate/pkg/platform/sentinel"
)

// InMemoryStore keeps orphan records in memory for tests/dev.
//
// Error Contract:
// - Return ErrNotFound (wrapped sentinel) when the profile id is not recorded
// - Return nil for successful operations
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewInMemoryStore constructs an empty in-memory ledger.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]Record)}
}

// Record upserts by profile id.
func (s *InMemoryStore) Record(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ProfileID] = rec
	return nil
}

// List returns records oldest first.
func (s *InMemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sortRecords(out)
	return out, nil
}

// Delete drops a resolved record.
func (s *InMemoryStore) Delete(_ context.Context, profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[profileID]; !ok {
		return fmt.Errorf("orphan %s: %w", profileID, sentinel.ErrNotFound)
	}
	delete(s.records, profileID)
	return nil
}

func sortRecords(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].RecordedAt.Equal(records[j].RecordedAt) {
			return records[i].ProfileID < records[j].ProfileID
		}
		return records[i].RecordedAt.Before(records[j].RecordedAt)
	})
}
