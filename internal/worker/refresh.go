// Package worker periodically refreshes cached readings for favorite
// locations so the dashboard opens warm.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/aqipro/aqipro/internal/aqi"
	"github.com/aqipro/aqipro/internal/lookup"
	"github.com/aqipro/aqipro/internal/state"
)

// DefaultSchedule refreshes favorites every 20 minutes, keeping cached
// readings inside the 30-minute TTL.
const DefaultSchedule = "@every 20m"

// RefresherConfig holds refresher dependencies.
type RefresherConfig struct {
	Pipeline *lookup.Pipeline
	Store    state.Store
	Logger   zerolog.Logger

	// Schedule is a cron expression (default DefaultSchedule).
	Schedule string

	// Timeout bounds one favorite's refresh (default 15s).
	Timeout time.Duration
}

// Refresher runs scheduled favorite refreshes.
type Refresher struct {
	pipeline *lookup.Pipeline
	store    state.Store
	log      zerolog.Logger
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
}

// NewRefresher creates a Refresher. Call Start to begin scheduling.
func NewRefresher(cfg RefresherConfig) *Refresher {
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = DefaultSchedule
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Refresher{
		pipeline: cfg.Pipeline,
		store:    cfg.Store,
		log:      cfg.Logger,
		schedule: schedule,
		timeout:  timeout,
	}
}

// Start schedules the refresh job.
func (r *Refresher) Start() error {
	c := cron.New()
	_, err := c.AddFunc(r.schedule, func() {
		if err := r.RefreshAll(context.Background()); err != nil {
			r.log.Warn().Err(err).Msg("scheduled refresh finished with errors")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}

	c.Start()
	r.cron = c
	r.log.Info().Str("schedule", r.schedule).Msg("favorites refresher started")
	return nil
}

// Stop halts scheduling and waits for a running job to finish.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
	r.log.Info().Msg("favorites refresher stopped")
}

// RefreshAll refreshes every favorite once. Individual failures are
// logged and counted; the remaining favorites still refresh.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	favorites, err := r.store.Favorites(ctx)
	if err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	if len(favorites) == 0 {
		return nil
	}

	start := time.Now()
	failed := 0
	for _, name := range favorites {
		if err := r.refreshOne(ctx, name); err != nil {
			failed++
			r.log.Warn().Err(err).Str("favorite", name).Msg("favorite refresh failed")
		}
	}

	r.log.Info().
		Int("total", len(favorites)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("favorites refresh complete")

	if failed > 0 {
		return fmt.Errorf("%d of %d favorites failed to refresh", failed, len(favorites))
	}
	return nil
}

func (r *Refresher) refreshOne(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	outcome, err := r.pipeline.Refresh(ctx, aqi.ParseQuery(name))
	if err != nil {
		return err
	}
	if outcome.NotFound {
		return fmt.Errorf("no station found: %s", outcome.Message)
	}
	return nil
}
