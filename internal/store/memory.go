package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/go-faster/errors"
)

// MemoryRepository keeps records in process memory. Used when no database
// is configured and in tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]Record
	now  func() time.Time
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]Record), now: time.Now}
}

func (m *MemoryRepository) Insert(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[rec.ID]; ok {
		return errors.Wrapf(ErrDuplicate, "insert %s", rec.ID)
	}
	now := m.now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now
	m.byID[rec.ID] = clone(*rec)
	return nil
}

func (m *MemoryRepository) Update(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.byID[rec.ID]
	if !ok || cur.StoreHash != rec.StoreHash {
		return errors.Wrapf(ErrNotFound, "update %s", rec.ID)
	}
	rec.CreatedAt = cur.CreatedAt
	rec.UpdatedAt = m.now().UTC()
	m.byID[rec.ID] = clone(*rec)
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, storeHash, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.byID[id]
	if !ok || rec.StoreHash != storeHash {
		return nil, errors.Wrapf(ErrNotFound, "get %s", id)
	}
	out := clone(rec)
	return &out, nil
}

// List returns records newest first.
func (m *MemoryRepository) List(_ context.Context, storeHash string, f Filter) ([]Record, error) {
	m.mu.RLock()
	out := make([]Record, 0, len(m.byID))
	for _, rec := range m.byID {
		if rec.StoreHash != storeHash || (f.Kind != "" && rec.Kind != f.Kind) {
			continue
		}
		out = append(out, clone(rec))
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *MemoryRepository) Delete(_ context.Context, storeHash, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok || rec.StoreHash != storeHash {
		return errors.Wrapf(ErrNotFound, "delete %s", id)
	}
	delete(m.byID, id)
	return nil
}

// clone copies the settings so callers cannot mutate stored bytes.
func clone(rec Record) Record {
	rec.Settings = slices.Clone(rec.Settings)
	return rec
}
