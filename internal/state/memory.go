package state

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/aqipro/aqipro/internal/aqi"
)

// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu        sync.RWMutex
	readings  map[string]CachedReading
	favorites []string
	recents   []string
	lastQuery string
	hasLast   bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		readings: make(map[string]CachedReading),
	}
}

// GetReading implements Store.
func (s *MemoryStore) GetReading(_ context.Context, key string) (*CachedReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cached, ok := s.readings[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := cached
	return &out, nil
}

// PutReading implements Store.
func (s *MemoryStore) PutReading(_ context.Context, key string, reading *aqi.Reading, fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readings[key] = CachedReading{Reading: *reading, FetchedAt: fetchedAt}
	return nil
}

// Favorites implements Store.
func (s *MemoryStore) Favorites(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.favorites), nil
}

// AddFavorite implements Store.
func (s *MemoryStore) AddFavorite(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.favorites, name) {
		s.favorites = append(s.favorites, name)
	}
	return nil
}

// RemoveFavorite implements Store.
func (s *MemoryStore) RemoveFavorite(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := slices.Index(s.favorites, name); i >= 0 {
		s.favorites = slices.Delete(s.favorites, i, i+1)
	}
	return nil
}

// IsFavorite implements Store.
func (s *MemoryStore) IsFavorite(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.favorites, name), nil
}

// Recents implements Store.
func (s *MemoryStore) Recents(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.recents), nil
}

// TouchRecent implements Store.
func (s *MemoryStore) TouchRecent(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := slices.Index(s.recents, name); i >= 0 {
		s.recents = slices.Delete(s.recents, i, i+1)
	}
	s.recents = slices.Insert(s.recents, 0, name)
	if len(s.recents) > MaxRecents {
		s.recents = s.recents[:MaxRecents]
	}
	return nil
}

// ClearRecents implements Store.
func (s *MemoryStore) ClearRecents(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recents = nil
	return nil
}

// LastQuery implements Store.
func (s *MemoryStore) LastQuery(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasLast {
		return "", ErrNotFound
	}
	return s.lastQuery, nil
}

// SetLastQuery implements Store.
func (s *MemoryStore) SetLastQuery(_ context.Context, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastQuery = raw
	s.hasLast = true
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
