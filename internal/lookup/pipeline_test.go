package lookup_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqipro/aqipro/internal/aqi"
	"github.com/aqipro/aqipro/internal/gateway"
	"github.com/aqipro/aqipro/internal/lookup"
	"github.com/aqipro/aqipro/internal/state"
)

// mockGateway scripts gateway responses and counts calls.
type mockGateway struct {
	byName    gateway.FeedResult
	byStation gateway.FeedResult
	byGeo     gateway.FeedResult
	places    []gateway.Place
	err       error

	nameCalls    int
	stationCalls int
	geoCalls     int
	geocodeCalls int
}

func (m *mockGateway) LookupByName(context.Context, string) (gateway.FeedResult, error) {
	m.nameCalls++
	return m.byName, m.err
}

func (m *mockGateway) LookupByStation(context.Context, string) (gateway.FeedResult, error) {
	m.stationCalls++
	return m.byStation, m.err
}

func (m *mockGateway) LookupByGeo(context.Context, float64, float64) (gateway.FeedResult, error) {
	m.geoCalls++
	return m.byGeo, m.err
}

func (m *mockGateway) SearchStations(context.Context, string) ([]gateway.StationHit, error) {
	return nil, nil
}

func (m *mockGateway) Geocode(context.Context, string) ([]gateway.Place, error) {
	m.geocodeCalls++
	return m.places, nil
}

func (m *mockGateway) StationsInBounds(context.Context, string) ([]aqi.MapStation, error) {
	return nil, nil
}

func okResult(name string, index int) gateway.FeedResult {
	return gateway.FeedResult{
		OK:      true,
		Reading: &aqi.Reading{AQI: index, StationName: name},
	}
}

func newPipeline(gw gateway.Gateway, store state.Store, now time.Time) *lookup.Pipeline {
	return lookup.New(lookup.Config{
		Gateway: gw,
		Store:   store,
		Logger:  zerolog.New(io.Discard),
		Now:     func() time.Time { return now },
	})
}

func TestLookupFetchesAndCommits(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	gw := &mockGateway{byName: okResult("Pune, Maharashtra, India", 72)}
	store := state.NewMemoryStore()

	p := newPipeline(gw, store, now)

	outcome, err := p.Lookup(ctx, aqi.ParseQuery("Pune"))
	require.NoError(t, err)

	assert.False(t, outcome.FromCache)
	assert.Equal(t, 72, outcome.Reading.AQI)

	cached, err := store.GetReading(ctx, "pune")
	require.NoError(t, err)
	assert.Equal(t, 72, cached.Reading.AQI)

	recents, err := store.Recents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pune"}, recents)

	last, err := store.LastQuery(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Pune", last)
}

func TestLookupServesFreshCache(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	gw := &mockGateway{byName: okResult("Pune", 99)}
	store := state.NewMemoryStore()
	require.NoError(t, store.PutReading(ctx, "pune",
		&aqi.Reading{AQI: 72, StationName: "Pune"}, now.Add(-10*time.Minute)))

	p := newPipeline(gw, store, now)

	outcome, err := p.Lookup(ctx, aqi.ParseQuery("pune"))
	require.NoError(t, err)

	assert.True(t, outcome.FromCache)
	assert.Equal(t, 72, outcome.Reading.AQI)
	assert.Zero(t, gw.nameCalls)

	// A cache hit leaves recents and the last query untouched.
	recents, err := store.Recents(ctx)
	require.NoError(t, err)
	assert.Empty(t, recents)

	_, err = store.LastQuery(ctx)
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestLookupStaleCacheRefetches(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	gw := &mockGateway{byName: okResult("Pune", 81)}
	store := state.NewMemoryStore()
	require.NoError(t, store.PutReading(ctx, "pune",
		&aqi.Reading{AQI: 72, StationName: "Pune"}, now.Add(-45*time.Minute)))

	p := newPipeline(gw, store, now)

	outcome, err := p.Lookup(ctx, aqi.ParseQuery("pune"))
	require.NoError(t, err)

	assert.False(t, outcome.FromCache)
	assert.Equal(t, 81, outcome.Reading.AQI)
	assert.Equal(t, 1, gw.nameCalls)
}

func TestLookupCacheKeyIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	gw := &mockGateway{byName: okResult("Pune", 99)}
	store := state.NewMemoryStore()
	require.NoError(t, store.PutReading(ctx, "pune",
		&aqi.Reading{AQI: 72, StationName: "Pune"}, now))

	p := newPipeline(gw, store, now)

	outcome, err := p.Lookup(ctx, aqi.ParseQuery("PUNE"))
	require.NoError(t, err)
	assert.True(t, outcome.FromCache)
}

func TestLookupGeocodeFallback(t *testing.T) {
	ctx := context.Background()
	gw := &mockGateway{
		byName: gateway.FeedResult{Message: "Unknown station"},
		places: []gateway.Place{{Lat: 48.85, Lon: 2.32, DisplayName: "Paris, France"}},
		byGeo:  okResult("Paris Centre, France", 34),
	}
	store := state.NewMemoryStore()

	p := newPipeline(gw, store, time.Now())

	outcome, err := p.Lookup(ctx, aqi.ParseQuery("paris 14e"))
	require.NoError(t, err)

	require.NotNil(t, outcome.Reading)
	assert.True(t, outcome.Reading.IsNearest)
	assert.Equal(t, "paris 14e", outcome.Reading.SearchedName)
	assert.Equal(t, 1, gw.geocodeCalls)
	assert.Equal(t, 1, gw.geoCalls)

	// The fallback reading headlines the searched name, and that is
	// what lands in recents.
	recents, err := store.Recents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"paris 14e"}, recents)
}

func TestLookupNotFoundWhenGeocoderHasNothing(t *testing.T) {
	gw := &mockGateway{
		byName: gateway.FeedResult{Message: "Unknown station"},
	}
	p := newPipeline(gw, state.NewMemoryStore(), time.Now())

	outcome, err := p.Lookup(context.Background(), aqi.ParseQuery("xyzzy"))
	require.NoError(t, err)

	assert.True(t, outcome.NotFound)
	assert.Equal(t, "Unknown station", outcome.Message)
	assert.Equal(t, 1, gw.geocodeCalls)
	assert.Zero(t, gw.geoCalls)
}

func TestLookupNoFallbackForStationRef(t *testing.T) {
	gw := &mockGateway{
		byStation: gateway.FeedResult{Message: "Unknown ID"},
	}
	p := newPipeline(gw, state.NewMemoryStore(), time.Now())

	outcome, err := p.Lookup(context.Background(), aqi.ParseQuery("@99999"))
	require.NoError(t, err)

	assert.True(t, outcome.NotFound)
	assert.Zero(t, gw.geocodeCalls)
}

func TestLookupTransportErrorPropagates(t *testing.T) {
	gw := &mockGateway{err: &gateway.TransportError{Op: "lookup by name"}}
	p := newPipeline(gw, state.NewMemoryStore(), time.Now())

	_, err := p.Lookup(context.Background(), aqi.ParseQuery("pune"))
	require.Error(t, err)
}

func TestRefreshBypassesCache(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	gw := &mockGateway{byName: okResult("Pune", 90)}
	store := state.NewMemoryStore()
	require.NoError(t, store.PutReading(ctx, "pune",
		&aqi.Reading{AQI: 72, StationName: "Pune"}, now))

	p := newPipeline(gw, store, now)

	outcome, err := p.Refresh(ctx, aqi.ParseQuery("pune"))
	require.NoError(t, err)

	assert.Equal(t, 90, outcome.Reading.AQI)
	assert.Equal(t, 1, gw.nameCalls)

	cached, err := store.GetReading(ctx, "pune")
	require.NoError(t, err)
	assert.Equal(t, 90, cached.Reading.AQI)

	// Background refreshes are not searches.
	recents, err := store.Recents(ctx)
	require.NoError(t, err)
	assert.Empty(t, recents)

	_, err = store.LastQuery(ctx)
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestLookupMalformedPayloadReadsAsNotFound(t *testing.T) {
	gw := &mockGateway{err: &gateway.MalformedError{
		Op:     "lookup by name",
		Reason: "feed payload has no station name",
	}}
	store := state.NewMemoryStore()
	p := newPipeline(gw, store, time.Now())

	outcome, err := p.Lookup(context.Background(), aqi.ParseQuery("pune"))
	require.NoError(t, err)

	assert.True(t, outcome.NotFound)
	assert.NotEmpty(t, outcome.Message)

	// Nothing was committed.
	recents, err := store.Recents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recents)
}
