package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Search.DefaultLimit != 5 {
		t.Errorf("Search.DefaultLimit = %d, want 5", cfg.Search.DefaultLimit)
	}
	if cfg.Search.MaxResults != 100 {
		t.Errorf("Search.MaxResults = %d, want 100", cfg.Search.MaxResults)
	}
	if cfg.Engine.SnippetWindow != 200 {
		t.Errorf("Engine.SnippetWindow = %d, want 200", cfg.Engine.SnippetWindow)
	}
	if len(cfg.Ingest.Extensions) == 0 {
		t.Error("Ingest.Extensions should default to a non-empty list")
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("Redis.Addr default = %q, want empty (cache disabled)", cfg.Redis.Addr)
	}
	if cfg.Postgres.Enabled {
		t.Error("Postgres should be disabled by default")
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9999
search:
  defaultLimit: 7
engine:
  indexFile: "/tmp/custom.dsix"
redis:
  addr: "cache:6379"
  cacheTTL: 90s
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Search.DefaultLimit != 7 {
		t.Errorf("DefaultLimit = %d, want 7", cfg.Search.DefaultLimit)
	}
	if cfg.Engine.IndexFile != "/tmp/custom.dsix" {
		t.Errorf("IndexFile = %q", cfg.Engine.IndexFile)
	}
	if cfg.Redis.CacheTTL != 90*time.Second {
		t.Errorf("CacheTTL = %v, want 90s", cfg.Redis.CacheTTL)
	}
	// Untouched values keep their defaults.
	if cfg.Search.MaxResults != 100 {
		t.Errorf("MaxResults = %d, want default 100", cfg.Search.MaxResults)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [not a mapping"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DS_SERVER_PORT", "7070")
	t.Setenv("DS_SEARCH_DEFAULT_LIMIT", "9")
	t.Setenv("DS_REDIS_ADDR", "envhost:6379")
	t.Setenv("DS_LOGGING_LEVEL", "debug")
	t.Setenv("DS_INGEST_EXTENSIONS", ".rst,.adoc")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Search.DefaultLimit != 9 {
		t.Errorf("DefaultLimit = %d, want 9", cfg.Search.DefaultLimit)
	}
	if cfg.Redis.Addr != "envhost:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if len(cfg.Ingest.Extensions) != 2 || cfg.Ingest.Extensions[0] != ".rst" {
		t.Errorf("Ingest.Extensions = %v", cfg.Ingest.Extensions)
	}
}

func TestEnvOverrideBadNumberIgnored(t *testing.T) {
	t.Setenv("DS_SERVER_PORT", "not-a-port")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "db", Port: 5433, User: "svc", Password: "pw",
		Database: "search", SSLMode: "disable",
	}
	want := "host=db port=5433 user=svc password=pw dbname=search sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
