package api

import (
	"encoding/json"
	"time"
)

// Video processing statuses as reported by the server. The lifecycle is
// strictly forward: PENDING → PROCESSING → COMPLETED or FAILED.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// IsTerminalStatus reports whether a video status can no longer change.
func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// envelope is the uniform response wrapper used by every endpoint.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Identity is the authenticated user snapshot attached at login time.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthSession mirrors the login response payload.
type AuthSession struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	User         Identity `json:"user"`
}

// TokenPair mirrors the refresh response payload.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Video describes one entry in the paged video list.
type Video struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Status      string `json:"status"`
	FrameCount  int    `json:"frame_count"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at"`
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (v Video) ParsedCreatedAt() time.Time {
	return parseTime(v.CreatedAt)
}

// VideoList mirrors the paged /videos response.
type VideoList struct {
	Videos  []Video `json:"videos"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
	HasMore bool    `json:"has_more"`
}

// VideoStatus mirrors the per-video status poll response.
type VideoStatus struct {
	VideoID      string `json:"video_id"`
	Filename     string `json:"filename"`
	Status       string `json:"status"`
	FrameCount   int    `json:"frame_count"`
	ErrorMessage string `json:"error_message"`
	CreatedAt    string `json:"created_at"`
	StartedAt    string `json:"started_at"`
	CompletedAt  string `json:"completed_at"`
}

// Terminal reports whether the video has reached a final status.
func (s VideoStatus) Terminal() bool {
	return IsTerminalStatus(s.Status)
}

// Download mirrors the time-limited download URL response.
type Download struct {
	DownloadURL string `json:"download_url"`
	Filename    string `json:"filename"`
	ExpiresIn   int64  `json:"expires_in"`
}

// UploadResult mirrors the upload submission response.
type UploadResult struct {
	VideoID  string `json:"video_id"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
