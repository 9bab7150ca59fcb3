package creds

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_RoundTripSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.toml")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if s.Active() {
		t.Fatal("fresh store reports an active session")
	}

	saved := Credentials{
		AccessToken:  "a1",
		RefreshToken: "r1",
		User:         Identity{UserID: 7, Username: "ada", Email: "ada@example.com"},
	}
	if err := s.Set(saved); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	current, ok := reopened.Current()
	if !ok {
		t.Fatal("reopened store reports no session")
	}
	if current != saved {
		t.Fatalf("credentials = %#v, want %#v", current, saved)
	}
}

func TestStore_SetTokensKeepsIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.toml")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := s.Set(Credentials{
		AccessToken:  "a1",
		RefreshToken: "r1",
		User:         Identity{UserID: 7, Username: "ada"},
	}); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	if err := s.SetTokens("a2", "r2"); err != nil {
		t.Fatalf("SetTokens returned error: %v", err)
	}

	current, _ := s.Current()
	if current.AccessToken != "a2" || current.RefreshToken != "r2" {
		t.Fatalf("tokens = %q/%q, want rotated a2/r2", current.AccessToken, current.RefreshToken)
	}
	if current.User.Username != "ada" {
		t.Fatalf("identity = %#v, want preserved", current.User)
	}
}

func TestStore_ClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.toml")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := s.Set(Credentials{AccessToken: "a1", RefreshToken: "r1"}); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if s.Active() {
		t.Fatal("store still active after Clear")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("credentials file still exists after Clear: %v", err)
	}

	// Clearing an already-clear store is fine.
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear returned error: %v", err)
	}
}

func TestOpen_CorruptFileDegradesToUnauthenticated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.toml")
	if err := os.WriteFile(path, []byte("{not toml"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if s.Active() {
		t.Fatal("corrupt file produced an active session")
	}
}

func TestOpen_MissingFileIsUnauthenticated(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nope", "credentials.toml"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if s.Active() || s.AccessToken() != "" || s.RefreshToken() != "" {
		t.Fatal("missing file produced session data")
	}
}
