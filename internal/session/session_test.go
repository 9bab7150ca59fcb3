package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/framepick/framepick/internal/api"
	"github.com/framepick/framepick/internal/creds"
)

func newTestManager(t *testing.T, handler http.Handler) (*Manager, *creds.Store, *atomic.Int64) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := creds.Open(filepath.Join(t.TempDir(), "credentials.toml"))
	if err != nil {
		t.Fatalf("creds.Open returned error: %v", err)
	}
	client, err := api.NewClient(server.URL, store)
	if err != nil {
		t.Fatalf("api.NewClient returned error: %v", err)
	}

	var invalidations atomic.Int64
	manager := NewManager(client, store, func() { invalidations.Add(1) })
	return manager, store, &invalidations
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func TestManager_LoginStoresCredentialsAndInvalidatesCache(t *testing.T) {
	t.Parallel()

	manager, store, invalidations := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/login" {
			http.NotFound(w, r)
			return
		}
		writeData(w, api.AuthSession{
			AccessToken:  "a1",
			RefreshToken: "r1",
			User:         api.Identity{UserID: 7, Username: "ada", Email: "ada@example.com"},
		})
	}))

	if manager.Active() {
		t.Fatal("session active before login")
	}

	identity, err := manager.Login(context.Background(), "ada@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if identity.Username != "ada" || identity.UserID != 7 {
		t.Fatalf("identity = %#v, want ada/7", identity)
	}
	if !manager.Active() {
		t.Fatal("session not active after login")
	}
	if store.AccessToken() != "a1" || store.RefreshToken() != "r1" {
		t.Fatalf("tokens = %q/%q, want a1/r1", store.AccessToken(), store.RefreshToken())
	}
	if n := invalidations.Load(); n != 1 {
		t.Fatalf("cache invalidations = %d, want 1", n)
	}

	user, ok := manager.User()
	if !ok || user.Email != "ada@example.com" {
		t.Fatalf("User() = %#v/%v, want stored identity", user, ok)
	}
}

func TestManager_LoginRejectionLeavesSessionUntouched(t *testing.T) {
	t.Parallel()

	manager, store, invalidations := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "invalid credentials"})
	}))

	_, err := manager.Login(context.Background(), "ada@example.com", "wrong")
	if !errors.Is(err, api.ErrInvalidCredentials) {
		t.Fatalf("Login error = %v, want ErrInvalidCredentials", err)
	}
	if manager.Active() || store.AccessToken() != "" {
		t.Fatal("failed login left credentials behind")
	}
	if n := invalidations.Load(); n != 0 {
		t.Fatalf("cache invalidations = %d, want 0", n)
	}
}

func TestManager_RegisterDoesNotTouchCredentials(t *testing.T) {
	t.Parallel()

	manager, store, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/register" {
			http.NotFound(w, r)
			return
		}
		writeData(w, api.Identity{UserID: 9, Username: "bob", Email: "bob@example.com"})
	}))

	identity, err := manager.Register(context.Background(), "bob", "bob@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if identity.Username != "bob" {
		t.Fatalf("identity = %#v, want bob", identity)
	}
	if manager.Active() || store.AccessToken() != "" {
		t.Fatal("register mutated the credential store")
	}
}

func TestManager_LogoutClearsLocallyEvenWhenServerFails(t *testing.T) {
	t.Parallel()

	var logoutCalls atomic.Int64
	manager, store, invalidations := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/auth/logout" {
			logoutCalls.Add(1)
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		http.NotFound(w, r)
	}))

	if err := store.Set(creds.Credentials{AccessToken: "a1", RefreshToken: "r1"}); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	if err := manager.Logout(context.Background()); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if manager.Active() || store.RefreshToken() != "" {
		t.Fatal("logout left credentials behind")
	}
	if n := logoutCalls.Load(); n != 1 {
		t.Fatalf("logout calls = %d, want best-effort remote call", n)
	}
	if n := invalidations.Load(); n != 1 {
		t.Fatalf("cache invalidations = %d, want 1", n)
	}
}

func TestManager_LogoutWithoutRefreshTokenSkipsRemoteCall(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	manager, _, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))

	if err := manager.Logout(context.Background()); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if n := requests.Load(); n != 0 {
		t.Fatalf("server saw %d requests, want 0 without a refresh token", n)
	}
}
