package app

import (
	"context"
	"log"
	"time"

	"github.com/framepick/framepick/internal/api"
	"github.com/framepick/framepick/internal/session"
	"github.com/framepick/framepick/internal/state"
)

const (
	defaultPollInterval = 3 * time.Second
	listPageSize        = 20
)

// StartPoller launches a background goroutine that refreshes the video
// list at a fixed cadence while a session is active. It returns
// immediately.
func StartPoller(ctx context.Context, store *state.Store, sessions *session.Manager, client *api.Client, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if !sessions.Active() {
				continue
			}
			refresh(ctx, store, client)
		}
	}()
}

func refresh(ctx context.Context, store *state.Store, client *api.Client) {
	list, err := client.ListVideos(ctx, listPageSize, 0)
	if err != nil {
		store.Update(nil, err)
		if ctx.Err() == nil {
			log.Printf("video list poll failed: %v", err)
		}
		return
	}
	store.Update(list, nil)
}
