package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("version = %d", cfg.Version)
	}
	if cfg.Cache.TTLSeconds != 300 {
		t.Errorf("cache ttl = %d, want 300", cfg.Cache.TTLSeconds)
	}
	if !cfg.Watcher.Enabled || cfg.Watcher.DebounceMs != 500 {
		t.Errorf("watcher = %+v", cfg.Watcher)
	}
	if cfg.Logging.Format != "human" || cfg.Logging.Level != "info" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".revlens")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	raw := `{
		"version": 1,
		"cache": {"ttlSeconds": 60},
		"providers": {
			"gitlab": {"baseUrl": "https://git.corp.example.com", "tokenEnv": "CORP_GITLAB_PAT"}
		},
		"logging": {"format": "json", "level": "debug"}
	}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Cache.TTLSeconds != 60 {
		t.Errorf("cache ttl = %d, want 60", cfg.Cache.TTLSeconds)
	}
	gl := cfg.Providers["gitlab"]
	if gl.BaseURL != "https://git.corp.example.com" || gl.TokenEnv != "CORP_GITLAB_PAT" {
		t.Errorf("gitlab provider = %+v", gl)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	// Untouched sections keep their defaults.
	if cfg.Watcher.DebounceMs != 500 {
		t.Errorf("watcher debounce = %d, want default 500", cfg.Watcher.DebounceMs)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.Cache.TTLSeconds = 42
	if err := cfg.Save(root); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Cache.TTLSeconds != 42 {
		t.Errorf("ttl = %d, want 42", loaded.Cache.TTLSeconds)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bad level")
	}

	cfg = DefaultConfig()
	cfg.Version = 2
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bad version")
	}
}
