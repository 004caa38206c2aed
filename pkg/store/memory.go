package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/matzehuels/procsheet/pkg/diagram"
)

type memoryRecord struct {
	diagram   *diagram.Diagram
	updatedAt time.Time
}

// MemoryStore keeps records in process memory. Values are copied on the way
// in and out, so callers never share state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	now     func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryRecord), now: time.Now}
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, f Filter) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.records))
	for _, r := range s.records {
		if f.match(r.diagram) {
			out = append(out, summarize(r.diagram, r.updatedAt))
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessSummary(out[i], out[j]) })
	return out, nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (*diagram.Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.diagram.Clone(), nil
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, d *diagram.Diagram) (*diagram.Diagram, error) {
	stored := d.Clone()
	if stored.ID == "" {
		stored.ID = newID()
	}

	s.mu.Lock()
	s.records[stored.ID] = memoryRecord{diagram: stored, updatedAt: s.now().UTC()}
	s.mu.Unlock()
	return stored.Clone(), nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
