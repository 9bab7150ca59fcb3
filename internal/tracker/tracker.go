// Package tracker polls processing status for submitted videos and
// exposes a live snapshot per video until a terminal state is reached.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/framepick/framepick/internal/api"
)

// ErrNotCompleted indicates a download was requested before the video
// finished processing. No request is sent to the server.
var ErrNotCompleted = errors.New("video has not completed processing")

const defaultPollInterval = 3 * time.Second

// StatusClient is the slice of the API client the tracker needs.
// Implemented by *api.Client.
type StatusClient interface {
	VideoStatus(ctx context.Context, videoID string) (*api.VideoStatus, error)
	DownloadURL(ctx context.Context, videoID string) (*api.Download, error)
}

var _ StatusClient = (*api.Client)(nil)

// Snapshot is the latest observed view of one video's processing job.
// When a poll fails the previous data is kept and the error recorded.
type Snapshot struct {
	Status              api.VideoStatus
	HasStatus           bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
	Done                bool // terminal state observed, polling stopped
}

// Tracker owns one poll loop per watched video id. Multiple observers
// of the same id share a loop instead of multiplying load on the server.
type Tracker struct {
	ctx      context.Context
	client   StatusClient
	interval time.Duration

	mu   sync.Mutex
	jobs map[string]*job
}

// New builds a Tracker. Loops run until ctx is cancelled, their video
// reaches a terminal state, or their last observer stops watching.
func New(ctx context.Context, client StatusClient, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Tracker{
		ctx:      ctx,
		client:   client,
		interval: interval,
		jobs:     make(map[string]*job),
	}
}

// Watch subscribes to a video's status. The first watcher of an id
// starts the poll loop; later watchers share it. Every subscription
// must be released with Stop.
func (t *Tracker) Watch(videoID string) *Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()

	j, ok := t.jobs[videoID]
	if !ok {
		ctx, cancel := context.WithCancel(t.ctx)
		j = &job{
			tracker: t,
			id:      videoID,
			cancel:  cancel,
			done:    make(chan struct{}),
		}
		t.jobs[videoID] = j
		go j.run(ctx, t.client, t.interval)
	}
	j.refs++
	return &Subscription{job: j}
}

type job struct {
	tracker *Tracker
	id      string
	refs    int
	cancel  context.CancelFunc
	done    chan struct{}

	mu       sync.RWMutex
	snapshot Snapshot
}

func (j *job) run(ctx context.Context, client StatusClient, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if j.refresh(ctx, client) {
			// Hard stop: a terminal status is never polled again.
			j.cancel()
			close(j.done)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// refresh performs one poll tick and reports whether the video reached
// a terminal state. A failed tick keeps the last snapshot and waits for
// the next tick; there is no retry within a tick.
func (j *job) refresh(ctx context.Context, client StatusClient) bool {
	status, err := client.VideoStatus(ctx, j.id)

	j.mu.Lock()
	defer j.mu.Unlock()

	j.snapshot.LastUpdated = time.Now()
	if err != nil {
		j.snapshot.LastError = err
		j.snapshot.ConsecutiveFailures++
		if ctx.Err() == nil {
			log.Printf("status poll failed for %s: %v", j.id, err)
		}
		return false
	}
	j.snapshot.Status = *status
	j.snapshot.HasStatus = true
	j.snapshot.LastError = nil
	j.snapshot.ConsecutiveFailures = 0
	if status.Terminal() {
		j.snapshot.Done = true
		return true
	}
	return false
}

func (j *job) release() {
	t := j.tracker
	t.mu.Lock()
	defer t.mu.Unlock()

	j.refs--
	if j.refs <= 0 {
		j.cancel()
		delete(t.jobs, j.id)
	}
}

// Subscription is one observer's handle on a video's poll loop.
type Subscription struct {
	job  *job
	once sync.Once
}

// Snapshot returns a copy of the latest observed state.
func (s *Subscription) Snapshot() Snapshot {
	s.job.mu.RLock()
	defer s.job.mu.RUnlock()

	snap := s.job.snapshot
	if s.job.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.job.snapshot.LastError)
	}
	return snap
}

// Done is closed once the video reaches a terminal state.
func (s *Subscription) Done() <-chan struct{} {
	return s.job.done
}

// Stop releases the subscription. When the last observer of an id
// stops, the poll loop is cancelled and performs no further ticks.
func (s *Subscription) Stop() {
	s.once.Do(s.job.release)
}

// Download fetches the time-limited download link. Allowed only once
// the observed status is COMPLETED; anything earlier is refused locally
// without contacting the server.
func (s *Subscription) Download(ctx context.Context) (*api.Download, error) {
	snap := s.Snapshot()
	if !snap.HasStatus || snap.Status.Status != api.StatusCompleted {
		return nil, ErrNotCompleted
	}
	return s.job.tracker.client.DownloadURL(ctx, s.job.id)
}
