package cli

import (
	"context"
	"encoding/json"
	"fmt"
)

// Execute implements the go-flags Commander interface for RecentsCommand.
func (c *RecentsCommand) Execute(_ []string) error {
	app, cleanup, err := newApp(c.globals)
	if err != nil {
		return err
	}
	defer cleanup()

	return c.executeWithApp(context.Background(), app)
}

func (c *RecentsCommand) executeWithApp(ctx context.Context, app *App) error {
	if c.Clear {
		if err := app.Store.ClearRecents(ctx); err != nil {
			return err
		}
		fmt.Fprintln(app.Out, "recent searches cleared")
		return nil
	}

	recents, err := app.Store.Recents(ctx)
	if err != nil {
		return err
	}

	if c.globals.JSON {
		if recents == nil {
			recents = []string{}
		}
		return json.NewEncoder(app.Out).Encode(recents)
	}

	if len(recents) == 0 {
		fmt.Fprintln(app.Out, "no recent searches")
		return nil
	}
	for _, name := range recents {
		fmt.Fprintf(app.Out, "• %s\n", name)
	}
	return nil
}
