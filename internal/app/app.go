package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rvoss/swarmview/internal/config"
	"github.com/rvoss/swarmview/internal/control"
	"github.com/rvoss/swarmview/internal/feed"
	"github.com/rvoss/swarmview/internal/prefs"
	"github.com/rvoss/swarmview/internal/state"
	"github.com/rvoss/swarmview/internal/swarmd"
	"github.com/rvoss/swarmview/internal/ui"
)

const scenarioRetryBase = 2 * time.Second

// Options configure the swarmview application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/swarmview/prefs.toml
	PollEvery  time.Duration
	NoStream   bool // force polling only, regardless of config
}

// Run boots the swarmview TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load swarmview config: %w", err)
	}

	userPrefs := prefs.Load(opts.PrefsPath)

	client, err := swarmd.NewClient(cfg.ServerURL)
	if err != nil {
		return fmt.Errorf("init swarmd client: %w", err)
	}

	store := &state.Store{}

	interval := cfg.PollInterval
	if opts.PollEvery > 0 {
		interval = opts.PollEvery
	}

	manager := feed.NewManager(store, client, feed.Options{
		PollInterval: interval,
		OpenStream:   streamFactory(cfg, opts, client),
	})
	manager.Activate(ctx)
	defer manager.Deactivate()

	coordinator := control.NewCoordinator(client, store, manager)
	catalog := feed.NewCatalog(client, scenarioRetryBase)

	return ui.Run(ui.Options{
		Context:     ctx,
		Store:       store,
		Manager:     manager,
		Coordinator: coordinator,
		Catalog:     catalog,
		ThemeName:   userPrefs.Theme,
		PrefsPath:   opts.PrefsPath,
	})
}

// streamFactory builds the per-activation push stream, or nil when the
// stream is disabled and the view runs on polling alone.
func streamFactory(cfg config.Config, opts Options, client *swarmd.Client) func() feed.StreamSource {
	if opts.NoStream || !cfg.StreamEnabled {
		return nil
	}
	return func() feed.StreamSource {
		return swarmd.NewStream(client.StreamURL(), swarmd.StreamOptions{
			RetryDelay:  cfg.StreamRetry,
			IdleTimeout: cfg.StreamIdle,
		})
	}
}
