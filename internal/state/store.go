package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/framepick/framepick/internal/api"
)

// Snapshot represents the latest video list data available to the UI.
type Snapshot struct {
	Videos              []api.Video
	Total               int
	HasMore             bool
	HasData             bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored snapshot. When err is non-nil the previous
// data is kept but the error is recorded for visibility.
func (s *Store) Update(list *api.VideoList, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Videos = cloneVideos(list.Videos)
	s.snapshot.Total = list.Total
	s.snapshot.HasMore = list.HasMore
	s.snapshot.HasData = true
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Reset drops all cached data. Called when the session identity changes
// so one user's listings never leak into another session.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = Snapshot{}
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Videos = cloneVideos(s.snapshot.Videos)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneVideos(videos []api.Video) []api.Video {
	if len(videos) == 0 {
		return nil
	}
	dup := make([]api.Video, len(videos))
	copy(dup, videos)
	return dup
}
