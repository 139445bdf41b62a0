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

// Config captures the connection settings swarmview needs.
type Config struct {
	ServerURL     string
	PollInterval  time.Duration
	StreamEnabled bool
	StreamRetry   time.Duration
	StreamIdle    time.Duration
}

const (
	defaultConfigPath = "~/.config/swarmview/config.toml"
	defaultServerURL  = "127.0.0.1:8470"

	defaultPollIntervalMS = 1000
	defaultStreamRetryMS  = 3000
	defaultStreamIdleMS   = 15000
)

// Load locates and parses the swarmview config, falling back to defaults
// when the file is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		ServerURL         string `toml:"server_url"`
		PollIntervalMS    int    `toml:"poll_interval_ms"`
		Stream            *bool  `toml:"stream"`
		StreamRetryMS     int    `toml:"stream_retry_ms"`
		StreamIdleTimeout int    `toml:"stream_idle_timeout_ms"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if url := strings.TrimSpace(raw.ServerURL); url != "" {
		cfg.ServerURL = url
	}
	if raw.PollIntervalMS > 0 {
		cfg.PollInterval = time.Duration(raw.PollIntervalMS) * time.Millisecond
	}
	if raw.Stream != nil {
		cfg.StreamEnabled = *raw.Stream
	}
	if raw.StreamRetryMS > 0 {
		cfg.StreamRetry = time.Duration(raw.StreamRetryMS) * time.Millisecond
	}
	if raw.StreamIdleTimeout > 0 {
		cfg.StreamIdle = time.Duration(raw.StreamIdleTimeout) * time.Millisecond
	}

	return cfg, nil
}

func defaults() Config {
	return Config{
		ServerURL:     defaultServerURL,
		PollInterval:  defaultPollIntervalMS * time.Millisecond,
		StreamEnabled: true,
		StreamRetry:   defaultStreamRetryMS * time.Millisecond,
		StreamIdle:    defaultStreamIdleMS * time.Millisecond,
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
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
