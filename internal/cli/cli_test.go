package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqipro/aqipro/internal/aqi"
	"github.com/aqipro/aqipro/internal/config"
	"github.com/aqipro/aqipro/internal/gateway"
	"github.com/aqipro/aqipro/internal/lookup"
	"github.com/aqipro/aqipro/internal/state"
	"github.com/aqipro/aqipro/internal/view"
)

type stubGateway struct {
	feed     gateway.FeedResult
	feedErr  error
	hits     []gateway.StationHit
	places   []gateway.Place
	stations []aqi.MapStation

	lookupCalls int
}

func (g *stubGateway) LookupByName(context.Context, string) (gateway.FeedResult, error) {
	g.lookupCalls++
	return g.feed, g.feedErr
}

func (g *stubGateway) LookupByStation(context.Context, string) (gateway.FeedResult, error) {
	g.lookupCalls++
	return g.feed, g.feedErr
}

func (g *stubGateway) LookupByGeo(context.Context, float64, float64) (gateway.FeedResult, error) {
	g.lookupCalls++
	return g.feed, g.feedErr
}

func (g *stubGateway) SearchStations(context.Context, string) ([]gateway.StationHit, error) {
	return g.hits, nil
}

func (g *stubGateway) Geocode(context.Context, string) ([]gateway.Place, error) {
	return g.places, nil
}

func (g *stubGateway) StationsInBounds(context.Context, string) ([]aqi.MapStation, error) {
	return g.stations, nil
}

func testReading() *aqi.Reading {
	return &aqi.Reading{
		AQI:         57,
		StationName: "Paris, France",
		Lat:         48.85,
		Lon:         2.35,
		SubIndices:  map[aqi.Pollutant]float64{aqi.PollutantPM25: 57},
		ObservedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestApp(t *testing.T, gw gateway.Gateway) (*App, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	store := state.NewMemoryStore()
	return &App{
		Gateway: gw,
		Store:   store,
		Pipeline: lookup.New(lookup.Config{
			Gateway: gw,
			Store:   store,
			Logger:  zerolog.Nop(),
		}),
		Terminal: view.NewTerminal(&buf),
		Out:      &buf,
		Log:      zerolog.Nop(),
	}, &buf
}

func TestLookupCommandRendersReading(t *testing.T) {
	gw := &stubGateway{feed: gateway.FeedResult{OK: true, Reading: testReading()}}
	app, buf := newTestApp(t, gw)

	cmd := &LookupCommand{globals: &GlobalFlags{}}
	cmd.Positional.Query = []string{"paris"}

	require.NoError(t, cmd.executeWithApp(context.Background(), app))
	assert.Contains(t, buf.String(), "Paris")
	assert.Contains(t, buf.String(), "AQI 57")

	recents, err := app.Store.Recents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris"}, recents)
}

func TestLookupCommandJSON(t *testing.T) {
	gw := &stubGateway{feed: gateway.FeedResult{OK: true, Reading: testReading()}}
	app, buf := newTestApp(t, gw)

	cmd := &LookupCommand{globals: &GlobalFlags{JSON: true}}
	cmd.Positional.Query = []string{"paris"}

	require.NoError(t, cmd.executeWithApp(context.Background(), app))

	var reading aqi.Reading
	require.NoError(t, json.Unmarshal(buf.Bytes(), &reading))
	assert.Equal(t, 57, reading.AQI)
	assert.Equal(t, "Paris, France", reading.StationName)
}

func TestLookupCommandNotFound(t *testing.T) {
	gw := &stubGateway{feed: gateway.FeedResult{OK: false, Message: "Unknown station"}}
	app, _ := newTestApp(t, gw)

	cmd := &LookupCommand{globals: &GlobalFlags{}}
	cmd.Positional.Query = []string{"atlantis"}

	err := cmd.executeWithApp(context.Background(), app)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no station found")
	assert.Contains(t, err.Error(), "Unknown station")
}

func TestLookupCommandCachedMarker(t *testing.T) {
	gw := &stubGateway{feed: gateway.FeedResult{OK: true, Reading: testReading()}}
	app, buf := newTestApp(t, gw)

	cmd := &LookupCommand{globals: &GlobalFlags{}}
	cmd.Positional.Query = []string{"paris"}

	require.NoError(t, cmd.executeWithApp(context.Background(), app))
	buf.Reset()

	require.NoError(t, cmd.executeWithApp(context.Background(), app))
	assert.Contains(t, buf.String(), "(cached)")
	assert.Equal(t, 1, gw.lookupCalls)
}

func TestLookupCommandRefreshBypassesCache(t *testing.T) {
	gw := &stubGateway{feed: gateway.FeedResult{OK: true, Reading: testReading()}}
	app, _ := newTestApp(t, gw)

	cmd := &LookupCommand{Refresh: true, globals: &GlobalFlags{}}
	cmd.Positional.Query = []string{"paris"}

	require.NoError(t, cmd.executeWithApp(context.Background(), app))
	require.NoError(t, cmd.executeWithApp(context.Background(), app))
	assert.Equal(t, 2, gw.lookupCalls)
}

func TestLookupCommandNoQueryUsesLastQuery(t *testing.T) {
	gw := &stubGateway{feed: gateway.FeedResult{OK: true, Reading: testReading()}}
	app, buf := newTestApp(t, gw)
	require.NoError(t, app.Store.SetLastQuery(context.Background(), "paris"))

	cmd := &LookupCommand{globals: &GlobalFlags{}}

	require.NoError(t, cmd.executeWithApp(context.Background(), app))
	assert.Contains(t, buf.String(), "AQI 57")
	assert.Equal(t, 1, gw.lookupCalls)
}

func TestLookupCommandNoQueryFallsBackToDefaultCity(t *testing.T) {
	gw := &stubGateway{feed: gateway.FeedResult{OK: true, Reading: testReading()}}
	app, buf := newTestApp(t, gw)
	app.Config = &config.CLI{DefaultCity: "Pune"}

	cmd := &LookupCommand{globals: &GlobalFlags{}}

	require.NoError(t, cmd.executeWithApp(context.Background(), app))
	assert.Contains(t, buf.String(), "AQI 57")

	last, err := app.Store.LastQuery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Pune", last)
}

func TestLookupCommandRendersNearbyStations(t *testing.T) {
	gw := &stubGateway{
		feed: gateway.FeedResult{OK: true, Reading: testReading()},
		stations: []aqi.MapStation{
			{Name: "Montsouris, Paris", Lat: 48.822, Lon: 2.337, AQI: 38},
		},
	}
	app, buf := newTestApp(t, gw)

	cmd := &LookupCommand{globals: &GlobalFlags{}}
	cmd.Positional.Query = []string{"paris"}

	require.NoError(t, cmd.executeWithApp(context.Background(), app))
	assert.Contains(t, buf.String(), "Nearby stations")
	assert.Contains(t, buf.String(), "Montsouris, Paris")

	buf.Reset()
	noMap := &LookupCommand{NoMap: true, globals: &GlobalFlags{}}
	noMap.Positional.Query = []string{"paris"}
	require.NoError(t, noMap.executeWithApp(context.Background(), app))
	assert.NotContains(t, buf.String(), "Nearby stations")
}

func TestFavoritesAddListRemove(t *testing.T) {
	app, buf := newTestApp(t, &stubGateway{})
	ctx := context.Background()
	globals := &GlobalFlags{}

	add := &FavoritesCommand{globals: globals}
	add.Positional.Action = "add"
	add.Positional.Name = []string{"Paris"}
	require.NoError(t, add.executeWithApp(ctx, app))

	buf.Reset()
	list := &FavoritesCommand{globals: globals}
	require.NoError(t, list.executeWithApp(ctx, app))
	assert.Contains(t, buf.String(), "★ Paris")

	remove := &FavoritesCommand{globals: globals}
	remove.Positional.Action = "remove"
	remove.Positional.Name = []string{"Paris"}
	require.NoError(t, remove.executeWithApp(ctx, app))

	buf.Reset()
	require.NoError(t, list.executeWithApp(ctx, app))
	assert.Contains(t, buf.String(), "no favorites yet")
}

func TestFavoritesUnknownAction(t *testing.T) {
	app, _ := newTestApp(t, &stubGateway{})

	cmd := &FavoritesCommand{globals: &GlobalFlags{}}
	cmd.Positional.Action = "destroy"

	err := cmd.executeWithApp(context.Background(), app)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestFavoritesListJSON(t *testing.T) {
	app, buf := newTestApp(t, &stubGateway{})
	ctx := context.Background()
	require.NoError(t, app.Store.AddFavorite(ctx, "Paris"))
	require.NoError(t, app.Store.AddFavorite(ctx, "Delhi"))

	cmd := &FavoritesCommand{globals: &GlobalFlags{JSON: true}}
	require.NoError(t, cmd.executeWithApp(ctx, app))

	var names []string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &names))
	assert.Equal(t, []string{"Paris", "Delhi"}, names)
}

func TestRecentsCommand(t *testing.T) {
	app, buf := newTestApp(t, &stubGateway{})
	ctx := context.Background()
	require.NoError(t, app.Store.TouchRecent(ctx, "Paris"))
	require.NoError(t, app.Store.TouchRecent(ctx, "Delhi"))

	cmd := &RecentsCommand{globals: &GlobalFlags{}}
	require.NoError(t, cmd.executeWithApp(ctx, app))
	assert.Contains(t, buf.String(), "• Delhi")
	assert.Contains(t, buf.String(), "• Paris")
}

func TestRecentsCommandClear(t *testing.T) {
	app, buf := newTestApp(t, &stubGateway{})
	ctx := context.Background()
	require.NoError(t, app.Store.TouchRecent(ctx, "Paris"))

	cmd := &RecentsCommand{Clear: true, globals: &GlobalFlags{}}
	require.NoError(t, cmd.executeWithApp(ctx, app))
	assert.Contains(t, buf.String(), "cleared")

	recents, err := app.Store.Recents(ctx)
	require.NoError(t, err)
	assert.Empty(t, recents)
}

func TestRecentsCommandEmptyJSON(t *testing.T) {
	app, buf := newTestApp(t, &stubGateway{})

	cmd := &RecentsCommand{globals: &GlobalFlags{JSON: true}}
	require.NoError(t, cmd.executeWithApp(context.Background(), app))
	assert.JSONEq(t, "[]", buf.String())
}

func TestSuggestCommandOneShot(t *testing.T) {
	gw := &stubGateway{hits: []gateway.StationHit{
		{UID: 1451, Name: "Shanghai (上海)", AQI: 74},
		{UID: 660, Name: "Paris, France", AQI: 42},
	}}
	app, buf := newTestApp(t, gw)

	cmd := &SuggestCommand{globals: &GlobalFlags{}}
	cmd.Positional.Query = []string{"sh"}

	require.NoError(t, cmd.executeWithApp(context.Background(), app))
	assert.Contains(t, buf.String(), "1. Shanghai")
	assert.Contains(t, buf.String(), "2. Paris")
}

func TestSuggestCommandEmptyQuery(t *testing.T) {
	app, _ := newTestApp(t, &stubGateway{})

	cmd := &SuggestCommand{globals: &GlobalFlags{}}
	require.Error(t, cmd.executeWithApp(context.Background(), app))
}

func TestCardCommandWritesFile(t *testing.T) {
	gw := &stubGateway{feed: gateway.FeedResult{OK: true, Reading: testReading()}}
	app, buf := newTestApp(t, gw)

	out := filepath.Join(t.TempDir(), "card.svg")
	cmd := &CardCommand{Out: out, globals: &GlobalFlags{}}
	cmd.Positional.Query = []string{"paris"}

	require.NoError(t, cmd.executeWithApp(context.Background(), app))
	assert.Contains(t, buf.String(), out)

	svg, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
	assert.Contains(t, string(svg), "57")
}

func TestStationsCommand(t *testing.T) {
	gw := &stubGateway{stations: []aqi.MapStation{
		{Name: "Montsouris, Paris", Lat: 48.822, Lon: 2.337, AQI: 38},
	}}
	app, buf := newTestApp(t, gw)

	cmd := &StationsCommand{Bounds: "48.8,2.2,48.9,2.4", globals: &GlobalFlags{}}
	require.NoError(t, cmd.executeWithApp(context.Background(), app))
	assert.Contains(t, buf.String(), "Montsouris, Paris")
	assert.Contains(t, buf.String(), "38")
}

func TestStationsCommandBadBounds(t *testing.T) {
	app, _ := newTestApp(t, &stubGateway{})

	cmd := &StationsCommand{Bounds: "48.8,2.2", globals: &GlobalFlags{}}
	require.Error(t, cmd.executeWithApp(context.Background(), app))
}

func TestRefreshCommandWarmsFavorites(t *testing.T) {
	gw := &stubGateway{feed: gateway.FeedResult{OK: true, Reading: testReading()}}
	app, buf := newTestApp(t, gw)
	ctx := context.Background()
	require.NoError(t, app.Store.AddFavorite(ctx, "Paris"))

	cmd := &RefreshCommand{globals: &GlobalFlags{}}
	require.NoError(t, cmd.executeWithApp(ctx, app))
	assert.Contains(t, buf.String(), "favorites refreshed")
	assert.Equal(t, 1, gw.lookupCalls)

	cached, err := app.Store.GetReading(ctx, "paris")
	require.NoError(t, err)
	assert.Equal(t, 57, cached.Reading.AQI)

	recents, err := app.Store.Recents(ctx)
	require.NoError(t, err)
	assert.Empty(t, recents)
}

func TestBuildParserRegistersCommands(t *testing.T) {
	parser, _, _ := buildParser()

	for _, name := range []string{"lookup", "suggest", "favorites", "recents", "card", "refresh", "stations"} {
		assert.NotNil(t, parser.Find(name), "command %q not registered", name)
	}
}
