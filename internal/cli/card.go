package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aqipro/aqipro/internal/aqi"
	"github.com/aqipro/aqipro/internal/sharecard"
)

// Execute implements the go-flags Commander interface for CardCommand.
func (c *CardCommand) Execute(_ []string) error {
	app, cleanup, err := newApp(c.globals)
	if err != nil {
		return err
	}
	defer cleanup()

	return c.executeWithApp(context.Background(), app)
}

func (c *CardCommand) executeWithApp(ctx context.Context, app *App) error {
	query := aqi.ParseQuery(strings.Join(c.Positional.Query, " "))
	if query.Raw() == "" {
		return fmt.Errorf("query must not be empty")
	}

	outcome, err := app.Pipeline.Lookup(ctx, query)
	if err != nil {
		return err
	}
	if outcome.NotFound {
		return fmt.Errorf("no station found for %q: %s", query.Raw(), outcome.Message)
	}

	svg := sharecard.Render(aqi.BuildViewModel(outcome.Reading))
	if err := os.WriteFile(c.Out, svg, 0o644); err != nil {
		return fmt.Errorf("write card: %w", err)
	}

	fmt.Fprintf(app.Out, "wrote %s\n", c.Out)
	return nil
}
