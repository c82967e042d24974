// Package state persists the client's local data: the reading cache,
// favorite locations, and recent searches.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/aqipro/aqipro/internal/aqi"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// MaxRecents caps the recent-searches list.
const MaxRecents = 5

// ReadingTTL is how long a cached reading counts as fresh. Stale
// entries are treated as misses but kept for refresh comparisons.
const ReadingTTL = 30 * time.Minute

// CachedReading is a reading plus the time it was fetched.
type CachedReading struct {
	Reading   aqi.Reading
	FetchedAt time.Time
}

// FreshAt reports whether the entry is still within ReadingTTL at the
// given instant.
func (c *CachedReading) FreshAt(now time.Time) bool {
	return now.Sub(c.FetchedAt) < ReadingTTL
}

// Store persists client-side state. Keys for readings are normalized
// query strings (see aqi.Query.CacheKey); favorites and recents hold
// display names.
type Store interface {
	// GetReading returns the cached reading for a key, fresh or not.
	// Returns ErrNotFound when the key has never been cached.
	GetReading(ctx context.Context, key string) (*CachedReading, error)

	// PutReading stores or replaces the cached reading for a key.
	PutReading(ctx context.Context, key string, reading *aqi.Reading, fetchedAt time.Time) error

	// Favorites lists favorite names in the order they were added.
	Favorites(ctx context.Context) ([]string, error)

	// AddFavorite adds a name to favorites. Adding an existing
	// favorite is a no-op.
	AddFavorite(ctx context.Context, name string) error

	// RemoveFavorite removes a name from favorites. Removing a
	// missing favorite is a no-op.
	RemoveFavorite(ctx context.Context, name string) error

	// IsFavorite reports whether a name is a favorite.
	IsFavorite(ctx context.Context, name string) (bool, error)

	// Recents lists recent searches, most recent first, at most
	// MaxRecents entries.
	Recents(ctx context.Context) ([]string, error)

	// TouchRecent moves a name to the front of the recents list,
	// inserting it if absent and evicting beyond MaxRecents.
	TouchRecent(ctx context.Context, name string) error

	// ClearRecents empties the recents list.
	ClearRecents(ctx context.Context) error

	// LastQuery returns the raw text of the last successful lookup.
	// Returns ErrNotFound when no lookup has succeeded yet.
	LastQuery(ctx context.Context) (string, error)

	// SetLastQuery records the raw text of a successful lookup.
	SetLastQuery(ctx context.Context, raw string) error

	// Close releases underlying resources.
	Close() error
}
