package api

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials indicates the server rejected a login attempt.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSessionExpired indicates the access token is invalid and the
	// refresh token could not restore the session.
	ErrSessionExpired = errors.New("session expired")
	// ErrUnsupportedFileType indicates the selected file is not a video.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrFileTooLarge indicates the selected file exceeds the upload limit.
	ErrFileTooLarge = errors.New("file exceeds 500MB upload limit")
)

// Error is an application-level rejection carried in the response
// envelope: the HTTP status plus the server's message, surfaced verbatim.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.Status)
	}
	return fmt.Sprintf("api returned status %d: %s", e.Status, e.Message)
}

// ValidationError indicates the server rejected the request payload
// (duplicate email, weak password, bad upload). Never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "request rejected by server"
	}
	return e.Message
}

// IsTransient reports whether an error is a connectivity-class failure
// (timeout, refused connection, 5xx) rather than a definitive rejection.
// Pollers tolerate transient errors until the next tick.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrUnsupportedFileType) || errors.Is(err, ErrFileTooLarge) {
		return false
	}
	var validation *ValidationError
	if errors.As(err, &validation) {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	// Anything else came from the network layer. Timeouts are folded in
	// here too; they are not a distinct error kind.
	return true
}
