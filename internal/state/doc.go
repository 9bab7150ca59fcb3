// Package state holds the shared snapshot of the video list that the
// background poller writes and the UI reads.
package state
