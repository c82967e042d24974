package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aqipro/aqipro/internal/worker"
)

// Execute implements the go-flags Commander interface for RefreshCommand.
func (c *RefreshCommand) Execute(_ []string) error {
	app, cleanup, err := newApp(c.globals)
	if err != nil {
		return err
	}
	defer cleanup()

	if c.Daemon {
		return c.runDaemon(app)
	}
	return c.executeWithApp(context.Background(), app)
}

func (c *RefreshCommand) executeWithApp(ctx context.Context, app *App) error {
	refresher := c.newRefresher(app)
	if err := refresher.RefreshAll(ctx); err != nil {
		return err
	}
	fmt.Fprintln(app.Out, "favorites refreshed")
	return nil
}

func (c *RefreshCommand) runDaemon(app *App) error {
	schedule := c.Schedule
	if schedule == "" {
		schedule = app.Config.RefreshSchedule
	}

	refresher := worker.NewRefresher(worker.RefresherConfig{
		Pipeline: app.Pipeline,
		Store:    app.Store,
		Logger:   app.Log,
		Schedule: schedule,
	})
	if err := refresher.Start(); err != nil {
		return err
	}
	defer refresher.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	return nil
}

func (c *RefreshCommand) newRefresher(app *App) *worker.Refresher {
	return worker.NewRefresher(worker.RefresherConfig{
		Pipeline: app.Pipeline,
		Store:    app.Store,
		Logger:   app.Log,
	})
}
