package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != defaultServerURL {
		t.Fatalf("ServerURL = %q, want %q", cfg.ServerURL, defaultServerURL)
	}
	if cfg.PollEvery != defaultPollEvery {
		t.Fatalf("PollEvery = %v, want %v", cfg.PollEvery, defaultPollEvery)
	}
	if cfg.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", cfg.Theme, defaultTheme)
	}
	if cfg.CredsPath != "" {
		t.Fatalf("CredsPath = %q, want empty", cfg.CredsPath)
	}
}

func TestLoad_ParsesAndTrimsFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
server_url = "  https://frames.example.com  "
poll_seconds = 5
credentials_path = "~/secrets/framepick.toml"
theme = " light "
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != "https://frames.example.com" {
		t.Fatalf("ServerURL = %q, want trimmed URL", cfg.ServerURL)
	}
	if cfg.PollEvery != 5*time.Second {
		t.Fatalf("PollEvery = %v, want 5s", cfg.PollEvery)
	}
	if cfg.Theme != "light" {
		t.Fatalf("Theme = %q, want light", cfg.Theme)
	}
	want := filepath.Join(home, "secrets", "framepick.toml")
	if cfg.CredsPath != want {
		t.Fatalf("CredsPath = %q, want %q", cfg.CredsPath, want)
	}
}

func TestLoad_InvalidTOMLReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("server_url = [broken"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %v, want parse failure", err)
	}
}

func TestLoad_ZeroPollSecondsKeepsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("poll_seconds = 0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.PollEvery != defaultPollEvery {
		t.Fatalf("PollEvery = %v, want default %v", cfg.PollEvery, defaultPollEvery)
	}
}
