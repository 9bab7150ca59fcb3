// Package session manages the login lifecycle on top of the credential
// store and the API client.
package session

import (
	"context"
	"fmt"

	"github.com/framepick/framepick/internal/api"
	"github.com/framepick/framepick/internal/creds"
)

// Manager exposes register, login, logout and the session predicate.
// Cached video data is purged through the invalidate hook whenever the
// session identity changes.
type Manager struct {
	client     *api.Client
	store      *creds.Store
	invalidate func()
}

// NewManager wires a session manager. invalidate may be nil.
func NewManager(client *api.Client, store *creds.Store, invalidate func()) *Manager {
	return &Manager{client: client, store: store, invalidate: invalidate}
}

// Register creates an account without touching the stored session.
func (m *Manager) Register(ctx context.Context, username, email, password string) (*api.Identity, error) {
	return m.client.Register(ctx, username, email, password)
}

// Login authenticates and replaces the stored credentials wholesale.
// Any cached video data from a previous session is invalidated.
func (m *Manager) Login(ctx context.Context, email, password string) (creds.Identity, error) {
	auth, err := m.client.Login(ctx, email, password)
	if err != nil {
		return creds.Identity{}, err
	}
	identity := creds.Identity{
		UserID:   auth.User.UserID,
		Username: auth.User.Username,
		Email:    auth.User.Email,
	}
	err = m.store.Set(creds.Credentials{
		AccessToken:  auth.AccessToken,
		RefreshToken: auth.RefreshToken,
		User:         identity,
	})
	if err != nil {
		return creds.Identity{}, fmt.Errorf("store credentials: %w", err)
	}
	if m.invalidate != nil {
		m.invalidate()
	}
	return identity, nil
}

// Logout invalidates the refresh token server-side when one exists and
// clears the local session unconditionally. Remote failures are
// swallowed; logout always succeeds locally.
func (m *Manager) Logout(ctx context.Context) error {
	if token := m.store.RefreshToken(); token != "" {
		_ = m.client.Logout(ctx, token)
	}
	if err := m.store.Clear(); err != nil {
		return err
	}
	if m.invalidate != nil {
		m.invalidate()
	}
	return nil
}

// Active reports whether an access token is present locally.
func (m *Manager) Active() bool {
	return m.store.Active()
}

// User returns the identity captured at login time.
func (m *Manager) User() (creds.Identity, bool) {
	current, ok := m.store.Current()
	return current.User, ok
}
