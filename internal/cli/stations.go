package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Execute implements the go-flags Commander interface for StationsCommand.
func (c *StationsCommand) Execute(_ []string) error {
	app, cleanup, err := newApp(c.globals)
	if err != nil {
		return err
	}
	defer cleanup()

	return c.executeWithApp(context.Background(), app)
}

func (c *StationsCommand) executeWithApp(ctx context.Context, app *App) error {
	bounds := strings.TrimSpace(c.Bounds)
	if strings.Count(bounds, ",") != 3 {
		return fmt.Errorf("bounds must be lat1,lon1,lat2,lon2")
	}

	stations, err := app.Gateway.StationsInBounds(ctx, bounds)
	if err != nil {
		return err
	}

	if c.globals.JSON {
		return json.NewEncoder(app.Out).Encode(stations)
	}

	app.Terminal.RenderStations(stations)
	return nil
}
