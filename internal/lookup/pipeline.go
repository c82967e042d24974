// Package lookup implements the full resolution workflow for a query:
// cache check, provider fetch, geocoding fallback, and the local state
// updates that follow a successful lookup.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aqipro/aqipro/internal/aqi"
	"github.com/aqipro/aqipro/internal/gateway"
	"github.com/aqipro/aqipro/internal/state"
)

// Outcome is the result of a lookup. Exactly one of Reading and
// NotFound is meaningful: NotFound means the provider answered but
// knows no station for the query, even after the geocoding fallback.
type Outcome struct {
	Reading   *aqi.Reading
	FromCache bool

	NotFound bool
	// Message is the provider's refusal text when NotFound is set.
	Message string
}

// Config holds pipeline dependencies.
type Config struct {
	Gateway gateway.Gateway
	Store   state.Store
	Logger  zerolog.Logger

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Pipeline resolves queries against the cache and the proxy.
type Pipeline struct {
	gw    gateway.Gateway
	store state.Store
	log   zerolog.Logger
	now   func() time.Time
}

// New creates a Pipeline.
func New(cfg Config) *Pipeline {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		gw:    cfg.Gateway,
		store: cfg.Store,
		log:   cfg.Logger,
		now:   now,
	}
}

// Lookup resolves a query, serving from cache when a fresh entry
// exists. A cache hit mutates nothing: recents and the last query
// record only fresh fetches.
func (p *Pipeline) Lookup(ctx context.Context, q aqi.Query) (*Outcome, error) {
	key := q.CacheKey()

	cached, err := p.store.GetReading(ctx, key)
	if err == nil && cached.FreshAt(p.now()) {
		p.log.Debug().Str("key", key).Msg("reading cache hit")
		reading := cached.Reading
		return &Outcome{Reading: &reading, FromCache: true}, nil
	}
	if err != nil && !errors.Is(err, state.ErrNotFound) {
		p.log.Warn().Err(err).Str("key", key).Msg("reading cache read failed")
	}

	return p.fetchAndCommit(ctx, q, key, true)
}

// Refresh resolves a query against the provider unconditionally,
// bypassing the cache. The fetched reading still lands in the cache,
// but background refreshes do not count as searches, so recents are
// left alone.
func (p *Pipeline) Refresh(ctx context.Context, q aqi.Query) (*Outcome, error) {
	return p.fetchAndCommit(ctx, q, q.CacheKey(), false)
}

func (p *Pipeline) fetchAndCommit(ctx context.Context, q aqi.Query, key string, touchRecents bool) (*Outcome, error) {
	result, err := p.fetch(ctx, q)
	if err != nil {
		return p.malformedOutcome(q, err)
	}

	if !result.OK && q.Kind == aqi.QueryPlainName {
		result, err = p.geocodeFallback(ctx, q, result)
		if err != nil {
			return p.malformedOutcome(q, err)
		}
	}

	if !result.OK {
		return &Outcome{NotFound: true, Message: result.Message}, nil
	}

	p.commit(ctx, key, q.Raw(), result.Reading, touchRecents)
	return &Outcome{Reading: result.Reading}, nil
}

// malformedOutcome downgrades an unusable provider payload to a
// not-found outcome with the detail preserved in the log. Transport
// errors pass through untouched.
func (p *Pipeline) malformedOutcome(q aqi.Query, err error) (*Outcome, error) {
	var malformed *gateway.MalformedError
	if !errors.As(err, &malformed) {
		return nil, err
	}

	p.log.Warn().Err(malformed).Str("query", q.Raw()).Msg("provider sent unusable payload")
	return &Outcome{NotFound: true, Message: "station data unavailable"}, nil
}

func (p *Pipeline) fetch(ctx context.Context, q aqi.Query) (gateway.FeedResult, error) {
	switch q.Kind {
	case aqi.QueryStationRef:
		return p.gw.LookupByStation(ctx, q.StationID)
	case aqi.QueryGeoCoord:
		return p.gw.LookupByGeo(ctx, q.Lat, q.Lon)
	default:
		return p.gw.LookupByName(ctx, q.Name)
	}
}

// geocodeFallback resolves a refused plain-name query through the
// geocoder and the nearest station. The original refusal is returned
// when the place itself is unknown.
func (p *Pipeline) geocodeFallback(ctx context.Context, q aqi.Query, refusal gateway.FeedResult) (gateway.FeedResult, error) {
	p.log.Debug().Str("query", q.Name).Msg("station lookup refused, trying geocoder")

	places, err := p.gw.Geocode(ctx, q.Name)
	if err != nil {
		return gateway.FeedResult{}, fmt.Errorf("geocode fallback: %w", err)
	}
	if len(places) == 0 {
		return refusal, nil
	}

	// Take the first candidate; the geocoder already ranks them.
	place := places[0]
	result, err := p.gw.LookupByGeo(ctx, place.Lat, place.Lon)
	if err != nil {
		return gateway.FeedResult{}, fmt.Errorf("geocode fallback: %w", err)
	}
	if !result.OK {
		return refusal, nil
	}

	result.Reading.IsNearest = true
	result.Reading.SearchedName = q.Name
	return result, nil
}

// commit performs the state updates after a fresh fetch: cache the
// reading, move the display name to the front of recents, and remember
// the raw query for the next argument-less lookup. Background refreshes
// skip the recents and last-query updates. Failures here degrade to log
// lines; the lookup already succeeded.
func (p *Pipeline) commit(ctx context.Context, key, raw string, reading *aqi.Reading, touchRecents bool) {
	if err := p.store.PutReading(ctx, key, reading, p.now()); err != nil {
		p.log.Warn().Err(err).Str("key", key).Msg("reading cache write failed")
	}

	if !touchRecents {
		return
	}

	if name := reading.DisplayName(); name != "" {
		if err := p.store.TouchRecent(ctx, name); err != nil {
			p.log.Warn().Err(err).Str("name", name).Msg("recents update failed")
		}
	}

	if err := p.store.SetLastQuery(ctx, raw); err != nil {
		p.log.Warn().Err(err).Msg("last query update failed")
	}
}
