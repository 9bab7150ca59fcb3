// Package config loads Framepick settings from
// ~/.config/framepick/config.toml, falling back to defaults when the
// file is missing.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the fields Framepick needs to reach the platform.
type Config struct {
	ServerURL string
	PollEvery time.Duration
	CredsPath string
	Theme     string
}

const (
	defaultConfigPath = "~/.config/framepick/config.toml"
	defaultServerURL  = "http://localhost:8080"
	defaultPollEvery  = 3 * time.Second
	defaultTheme      = "dark"
)

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ServerURL: defaultServerURL,
		PollEvery: defaultPollEvery,
		Theme:     defaultTheme,
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var parsed struct {
		ServerURL   string `toml:"server_url"`
		PollSeconds int    `toml:"poll_seconds"`
		CredsPath   string `toml:"credentials_path"`
		Theme       string `toml:"theme"`
	}
	if err := toml.Unmarshal(raw, &parsed); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if url := strings.TrimSpace(parsed.ServerURL); url != "" {
		cfg.ServerURL = url
	}
	if parsed.PollSeconds > 0 {
		cfg.PollEvery = time.Duration(parsed.PollSeconds) * time.Second
	}
	if credsPath := strings.TrimSpace(parsed.CredsPath); credsPath != "" {
		cfg.CredsPath = mustExpand(credsPath)
	}
	if theme := strings.TrimSpace(parsed.Theme); theme != "" {
		cfg.Theme = theme
	}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
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
