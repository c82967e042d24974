package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aqipro/aqipro/internal/aqi"
	"github.com/aqipro/aqipro/internal/lookup"
	"github.com/aqipro/aqipro/internal/state"
)

// Execute implements the go-flags Commander interface for LookupCommand.
func (c *LookupCommand) Execute(_ []string) error {
	app, cleanup, err := newApp(c.globals)
	if err != nil {
		return err
	}
	defer cleanup()

	return c.executeWithApp(context.Background(), app)
}

func (c *LookupCommand) executeWithApp(ctx context.Context, app *App) error {
	raw, err := c.resolveRawQuery(ctx, app)
	if err != nil {
		return err
	}
	query := aqi.ParseQuery(raw)

	var outcome *lookup.Outcome
	if c.Refresh {
		outcome, err = app.Pipeline.Refresh(ctx, query)
	} else {
		outcome, err = app.Pipeline.Lookup(ctx, query)
	}
	if err != nil {
		return err
	}
	if outcome.NotFound {
		return fmt.Errorf("no station found for %q: %s", query.Raw(), outcome.Message)
	}

	if c.globals.JSON {
		return json.NewEncoder(app.Out).Encode(outcome.Reading)
	}

	app.Terminal.RenderReading(aqi.BuildViewModel(outcome.Reading))
	if outcome.FromCache {
		fmt.Fprintln(app.Out, "(cached)")
	}

	if !c.NoMap {
		c.renderNearby(ctx, app, outcome.Reading)
	}
	return nil
}

// resolveRawQuery falls back to the last successful lookup, then the
// configured default city, when no query argument was given.
func (c *LookupCommand) resolveRawQuery(ctx context.Context, app *App) (string, error) {
	raw := strings.TrimSpace(strings.Join(c.Positional.Query, " "))
	if raw != "" {
		return raw, nil
	}

	last, err := app.Store.LastQuery(ctx)
	if err != nil && !errors.Is(err, state.ErrNotFound) {
		return "", err
	}
	if last != "" {
		return last, nil
	}

	if app.Config != nil && app.Config.DefaultCity != "" {
		return app.Config.DefaultCity, nil
	}
	return "", fmt.Errorf("query must not be empty")
}

// renderNearby lists stations in a box around the resolved reading.
// Best effort; a failed map fetch never fails the lookup.
func (c *LookupCommand) renderNearby(ctx context.Context, app *App, reading *aqi.Reading) {
	if reading.Lat == 0 && reading.Lon == 0 {
		return
	}

	const span = 0.5
	bounds := fmt.Sprintf("%g,%g,%g,%g",
		reading.Lat-span, reading.Lon-span, reading.Lat+span, reading.Lon+span)

	stations, err := app.Gateway.StationsInBounds(ctx, bounds)
	if err != nil {
		app.Log.Warn().Err(err).Msg("nearby stations fetch failed")
		return
	}
	if len(stations) == 0 {
		return
	}

	fmt.Fprintln(app.Out, "Nearby stations")
	app.Terminal.RenderStations(stations)
}
