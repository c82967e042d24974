package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aqipro/aqipro/internal/config"
	"github.com/aqipro/aqipro/internal/gateway"
	"github.com/aqipro/aqipro/internal/lookup"
	"github.com/aqipro/aqipro/internal/state"
	"github.com/aqipro/aqipro/internal/view"
)

// App bundles the wired client dependencies commands operate on.
// Commands receive a fully built App so tests can substitute fakes.
type App struct {
	Config   *config.CLI
	Gateway  gateway.Gateway
	Store    state.Store
	Pipeline *lookup.Pipeline
	Terminal *view.Terminal
	Out      io.Writer
	Log      zerolog.Logger
}

// newApp builds the real App from configuration and flags. The returned
// cleanup closes the state store.
func newApp(globals *GlobalFlags) (*App, func(), error) {
	cfg, err := config.LoadCLI()
	if err != nil {
		return nil, nil, err
	}
	if globals.ProxyURL != "" {
		cfg.ProxyURL = globals.ProxyURL
	}
	if globals.StatePath != "" {
		cfg.StatePath = globals.StatePath
	}

	level := zerolog.WarnLevel
	if globals.Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	if err := os.MkdirAll(filepath.Dir(cfg.StatePath), 0o755); err != nil {
		return nil, nil, err
	}
	store, err := state.OpenSQLite(cfg.StatePath)
	if err != nil {
		return nil, nil, err
	}

	gw := gateway.NewClient(gateway.ClientConfig{BaseURL: cfg.ProxyURL})

	app := &App{
		Config:  cfg,
		Gateway: gw,
		Store:   store,
		Pipeline: lookup.New(lookup.Config{
			Gateway: gw,
			Store:   store,
			Logger:  log,
		}),
		Terminal: view.NewTerminal(os.Stdout),
		Out:      os.Stdout,
		Log:      log,
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("state store close failed")
		}
	}
	return app, cleanup, nil
}
