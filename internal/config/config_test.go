package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"syncview/internal/config"
)

func TestLoadDefaultConfigUsesEnvAPIKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("SYNCVIEW_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "syncview")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Daemon.URL != "http://127.0.0.1:8384" {
		t.Fatalf("unexpected daemon url: %q", cfg.Daemon.URL)
	}
	if cfg.Daemon.APIKey != "test-key" {
		t.Fatalf("expected API key from env, got %q", cfg.Daemon.APIKey)
	}
	if cfg.Scheduler.Workers != 10 {
		t.Fatalf("unexpected worker default: %d", cfg.Scheduler.Workers)
	}
	if cfg.Events.EmptyPollsBeforeReset != 3 {
		t.Fatalf("unexpected empty poll threshold: %d", cfg.Events.EmptyPollsBeforeReset)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "cache.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
}

func TestLoadFallsBackToSyncthingAPIKey(t *testing.T) {
	t.Setenv("SYNCVIEW_API_KEY", "")
	os.Unsetenv("SYNCVIEW_API_KEY")
	t.Setenv("SYNCTHING_API_KEY", "st-key")
	t.Setenv("HOME", t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Daemon.APIKey != "st-key" {
		t.Fatalf("expected fallback API key, got %q", cfg.Daemon.APIKey)
	}
}

func TestLoadParsesFileAndNormalizesURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[daemon]
url = "localhost:8384/"
api_key = "abc"

[scheduler]
workers = 4

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q to be used, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Daemon.URL != "http://localhost:8384" {
		t.Fatalf("expected scheme and trailing slash normalization, got %q", cfg.Daemon.URL)
	}
	if cfg.Scheduler.Workers != 4 {
		t.Fatalf("unexpected workers: %d", cfg.Scheduler.Workers)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestValidateRejectsMissingAPIKey(t *testing.T) {
	os.Unsetenv("SYNCVIEW_API_KEY")
	os.Unsetenv("SYNCTHING_API_KEY")
	t.Setenv("HOME", t.TempDir())

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected error for missing api key")
	}
	if !strings.Contains(err.Error(), "daemon.api_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[daemon]
api_key = "abc"

[logging]
format = "yaml"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if err := config.CreateSample(path); err == nil {
		t.Fatal("expected error when config already exists")
	}
}
