package app

import (
	"context"
	"fmt"
	"time"

	"github.com/framepick/framepick/internal/api"
	"github.com/framepick/framepick/internal/config"
	"github.com/framepick/framepick/internal/creds"
	"github.com/framepick/framepick/internal/session"
	"github.com/framepick/framepick/internal/state"
	"github.com/framepick/framepick/internal/tracker"
	"github.com/framepick/framepick/internal/ui"
)

// Options configure the Framepick application.
type Options struct {
	ConfigPath string
	PollEvery  int // seconds; zero uses the config value
}

// Run boots the Framepick TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := creds.Open(cfg.CredsPath)
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}

	client, err := api.NewClient(cfg.ServerURL, store)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	videos := &state.Store{}
	sessions := session.NewManager(client, store, videos.Reset)

	interval := cfg.PollEvery
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	jobs := tracker.New(ctx, client, interval)

	// Start background poller for the video list
	StartPoller(ctx, videos, sessions, client, interval)

	// Populate the store before the UI starts when already logged in
	if sessions.Active() {
		refresh(ctx, videos, client)
	}

	uiOpts := ui.Options{
		Context:  ctx,
		Client:   client,
		Sessions: sessions,
		Videos:   videos,
		Tracker:  jobs,
		PollTick: interval,
		Theme:    cfg.Theme,
	}
	return ui.Run(uiOpts)
}
