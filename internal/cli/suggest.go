package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aqipro/aqipro/internal/aqi"
	"github.com/aqipro/aqipro/internal/search"
)

// Execute implements the go-flags Commander interface for SuggestCommand.
func (c *SuggestCommand) Execute(_ []string) error {
	app, cleanup, err := newApp(c.globals)
	if err != nil {
		return err
	}
	defer cleanup()

	if c.Interactive {
		return c.runInteractive(context.Background(), app, os.Stdin)
	}
	return c.executeWithApp(context.Background(), app)
}

func (c *SuggestCommand) executeWithApp(ctx context.Context, app *App) error {
	query := strings.TrimSpace(strings.Join(c.Positional.Query, " "))
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}

	hits, err := app.Gateway.SearchStations(ctx, query)
	if err != nil {
		return err
	}

	suggestions := search.BuildSuggestions(hits)
	if c.globals.JSON {
		return json.NewEncoder(app.Out).Encode(suggestions)
	}

	app.Terminal.ShowSuggestions(suggestions)
	return nil
}

// runInteractive feeds stdin lines through the debounced search
// controller, one query per line, mirroring the dashboard's search box.
// A line with just a suggestion number selects and resolves that entry.
func (c *SuggestCommand) runInteractive(ctx context.Context, app *App, in *os.File) error {
	controller := search.NewController(search.Config{
		Gateway: app.Gateway,
		Store:   app.Store,
		View:    app.Terminal,
		Logger:  app.Log,
	})
	defer controller.Close()

	controller.Focus(ctx)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= search.MaxSuggestions {
			controller.Hover(n - 1)
			if query, ok := controller.Submit(); ok {
				if err := c.resolve(ctx, app, query); err != nil {
					fmt.Fprintln(app.Out, err)
				}
			}
			controller.Focus(ctx)
			continue
		}

		controller.Input(ctx, line)
		waitForResults(controller)
	}
	return scanner.Err()
}

func (c *SuggestCommand) resolve(ctx context.Context, app *App, query aqi.Query) error {
	outcome, err := app.Pipeline.Lookup(ctx, query)
	if err != nil {
		return err
	}
	if outcome.NotFound {
		return fmt.Errorf("no station found for %q: %s", query.Raw(), outcome.Message)
	}
	app.Terminal.RenderReading(aqi.BuildViewModel(outcome.Reading))
	return nil
}

// waitForResults blocks until the controller settles, so the next
// prompt does not interleave with async suggestion output.
func waitForResults(c *search.Controller) {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		switch c.Phase() {
		case search.PhaseShowingResults, search.PhaseShowingDefaults, search.PhaseClosed:
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}
