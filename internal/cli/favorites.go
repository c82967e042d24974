package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Execute implements the go-flags Commander interface for FavoritesCommand.
func (c *FavoritesCommand) Execute(_ []string) error {
	app, cleanup, err := newApp(c.globals)
	if err != nil {
		return err
	}
	defer cleanup()

	return c.executeWithApp(context.Background(), app)
}

func (c *FavoritesCommand) executeWithApp(ctx context.Context, app *App) error {
	name := strings.TrimSpace(strings.Join(c.Positional.Name, " "))

	switch c.Positional.Action {
	case "":
		return c.list(ctx, app)
	case "add":
		if name == "" {
			return fmt.Errorf("a location name is required for add")
		}
		if err := app.Store.AddFavorite(ctx, name); err != nil {
			return err
		}
		fmt.Fprintf(app.Out, "added %q to favorites\n", name)
		return nil
	case "remove":
		if name == "" {
			return fmt.Errorf("a location name is required for remove")
		}
		if err := app.Store.RemoveFavorite(ctx, name); err != nil {
			return err
		}
		fmt.Fprintf(app.Out, "removed %q from favorites\n", name)
		return nil
	default:
		return fmt.Errorf("unknown action %q (expected add or remove)", c.Positional.Action)
	}
}

func (c *FavoritesCommand) list(ctx context.Context, app *App) error {
	favorites, err := app.Store.Favorites(ctx)
	if err != nil {
		return err
	}

	if c.globals.JSON {
		if favorites == nil {
			favorites = []string{}
		}
		return json.NewEncoder(app.Out).Encode(favorites)
	}

	if len(favorites) == 0 {
		fmt.Fprintln(app.Out, "no favorites yet")
		return nil
	}
	for _, name := range favorites {
		fmt.Fprintf(app.Out, "★ %s\n", name)
	}
	return nil
}
