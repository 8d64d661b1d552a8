package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/matzehuels/chartdir/pkg/chart"
)

// MemoryStore keeps handles in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	next    uint64
	records map[uint64]*record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[uint64]*record)}
}

func (s *MemoryStore) Create(ctx context.Context, c *chart.Chart, now time.Time) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	s.records[s.next] = &record{ID: s.next, AccessTime: now, Chart: c}
	return s.next, nil
}

func (s *MemoryStore) Update(ctx context.Context, id uint64, now time.Time, fn func(*chart.Chart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return ErrChartNotFound()
	}
	rec.AccessTime = now
	return fn(rec.Chart)
}

func (s *MemoryStore) Delete(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrChartNotFound()
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, Entry{ID: rec.ID, AccessTime: rec.AccessTime})
	}
	return out, nil
}

func (s *MemoryStore) Sweep(ctx context.Context, cutoff time.Time) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []uint64
	for id, rec := range s.records {
		if rec.AccessTime.Before(cutoff) {
			ids = append(ids, id)
			delete(s.records, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
