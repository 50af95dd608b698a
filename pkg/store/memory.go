package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/mosaic/pkg/mosaic"
)

// MemoryStore keeps records in a map. Definitions are copied on the way in
// and out, so callers never share memory with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record), now: time.Now}
}

func (s *MemoryStore) Create(ctx context.Context, def mosaic.Definition) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rec := Record{ID: NewID(), Definition: def.Clone(), Version: 1, CreatedAt: now, UpdatedAt: now}
	s.records[rec.ID] = rec
	return copyRecord(rec), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, notFound(id)
	}
	return copyRecord(rec), nil
}

func (s *MemoryStore) Put(ctx context.Context, id string, def mosaic.Definition) (Record, error) {
	return s.Update(ctx, id, func(d *mosaic.Definition) error {
		*d = def.Clone()
		return nil
	})
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*mosaic.Definition) error) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, notFound(id)
	}
	def := rec.Definition.Clone()
	if err := fn(&def); err != nil {
		return Record{}, err
	}
	rec.Definition = def
	rec.Version++
	rec.UpdatedAt = s.now().UTC()
	s.records[id] = rec
	return copyRecord(rec), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return notFound(id)
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		recs = append(recs, r)
	}
	slices.SortFunc(recs, func(a, b Record) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	out := make([]Summary, len(recs))
	for i, r := range recs {
		out[i] = Summary{ID: r.ID, Title: r.Definition.Title, UpdatedAt: r.UpdatedAt}
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

func copyRecord(r Record) Record {
	r.Definition = r.Definition.Clone()
	return r
}

var _ Store = (*MemoryStore)(nil)
