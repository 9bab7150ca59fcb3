// Package creds handles the authenticated session credentials.
// Credentials are stored in ~/.config/framepick/credentials.toml so a
// session survives restarts until logout or refresh exhaustion.
package creds

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// Identity is the user snapshot captured at login time. It is not
// re-fetched until the next login.
type Identity struct {
	UserID   int64  `toml:"user_id"`
	Username string `toml:"username"`
	Email    string `toml:"email"`
}

// Credentials is the full persisted session: the bearer pair plus the
// owning identity. A zero access token means unauthenticated.
type Credentials struct {
	AccessToken  string   `toml:"access_token"`
	RefreshToken string   `toml:"refresh_token"`
	User         Identity `toml:"user"`
}

const defaultCredsPath = "~/.config/framepick/credentials.toml"

// DefaultPath returns the default credentials file path.
func DefaultPath() string {
	return defaultCredsPath
}

// Store coordinates concurrent access to the credentials and keeps the
// on-disk copy in sync. Writers are limited to the session manager
// (login/logout) and the transport's refresh path.
type Store struct {
	mu      sync.RWMutex
	path    string
	current Credentials
}

// Open loads credentials from the given path, falling back to an
// unauthenticated store when the file is missing or unreadable.
func Open(path string) (*Store, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve credentials path: %w", err)
	}
	s := &Store{path: resolved}

	file, err := os.Open(resolved)
	if err != nil {
		return s, nil
	}
	defer func() { _ = file.Close() }()

	raw, err := io.ReadAll(file)
	if err != nil {
		return s, nil
	}
	var loaded Credentials
	if err := toml.Unmarshal(raw, &loaded); err != nil {
		return s, nil // corrupt file degrades to unauthenticated
	}
	s.current = loaded
	return s, nil
}

// Current returns a copy of the credentials and whether a session exists.
func (s *Store) Current() (Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current.AccessToken != ""
}

// Active reports whether an access token is present. Purely local; the
// token is validated lazily by the next authenticated call.
func (s *Store) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.AccessToken != ""
}

// AccessToken returns the current access token, empty when logged out.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.AccessToken
}

// RefreshToken returns the current refresh token, empty when logged out.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.RefreshToken
}

// Set replaces the credentials wholesale and persists them.
func (s *Store) Set(c Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = c
	return s.persist()
}

// SetTokens installs a rotated access/refresh pair, keeping the
// identity from login time.
func (s *Store) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.AccessToken = access
	s.current.RefreshToken = refresh
	return s.persist()
}

// Clear wipes the session both in memory and on disk.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Credentials{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials file: %w", err)
	}
	return nil
}

func (s *Store) persist() error {
	raw, err := toml.Marshal(s.current)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	// 0600: the file carries live tokens.
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultCredsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
