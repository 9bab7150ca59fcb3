package state

import (
	"errors"
	"testing"

	"github.com/framepick/framepick/internal/api"
)

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	s := &Store{}

	s.Update(&api.VideoList{
		Videos: []api.Video{
			{ID: "v1", Filename: "a.mp4", Status: api.StatusPending},
			{ID: "v2", Filename: "b.mp4", Status: api.StatusCompleted},
		},
		Total:   5,
		HasMore: true,
	}, nil)

	snap := s.Snapshot()
	if !snap.HasData {
		t.Fatal("snapshot has no data after successful update")
	}
	if len(snap.Videos) != 2 || snap.Total != 5 || !snap.HasMore {
		t.Fatalf("snapshot = %#v, want 2 videos, total 5, more", snap)
	}

	// Mutating the returned slice must not touch the store.
	snap.Videos[0].Status = api.StatusFailed
	if again := s.Snapshot(); again.Videos[0].Status != api.StatusPending {
		t.Fatalf("store mutated through snapshot: %q", again.Videos[0].Status)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	s := &Store{}

	s.Update(&api.VideoList{
		Videos: []api.Video{{ID: "v1", Filename: "a.mp4"}},
		Total:  1,
	}, nil)
	s.Update(nil, errors.New("connection refused"))

	snap := s.Snapshot()
	if snap.LastError == nil {
		t.Fatal("error update did not record LastError")
	}
	if !snap.HasData || len(snap.Videos) != 1 {
		t.Fatalf("snapshot = %#v, want previous data retained", snap)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	s := &Store{}

	s.Update(nil, errors.New("boom"))
	if s.Snapshot().IsOffline() {
		t.Fatal("one failure already reports offline")
	}

	s.Update(nil, errors.New("boom"))
	if !s.Snapshot().IsOffline() {
		t.Fatal("two failures should report offline")
	}

	s.Update(&api.VideoList{}, nil)
	snap := s.Snapshot()
	if snap.IsOffline() || snap.ConsecutiveFailures != 0 || snap.LastError != nil {
		t.Fatalf("snapshot = %#v, want failures cleared by success", snap)
	}
}

func TestStore_ResetDropsEverything(t *testing.T) {
	s := &Store{}

	s.Update(&api.VideoList{
		Videos: []api.Video{{ID: "v1"}},
		Total:  1,
	}, nil)
	s.Reset()

	snap := s.Snapshot()
	if snap.HasData || len(snap.Videos) != 0 || snap.Total != 0 {
		t.Fatalf("snapshot = %#v, want empty after Reset", snap)
	}
}
