package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != 5001 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Database.Name != "watts_db" || cfg.Database.SSLMode != "disable" {
		t.Fatalf("database = %+v", cfg.Database)
	}
	if cfg.Redis.TTL != 30*time.Second {
		t.Fatalf("redis ttl = %v", cfg.Redis.TTL)
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte("server:\n  port: 9000\ndatabase:\n  name: from_file\narchive:\n  enabled: true\n  bucket: bills\n")
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Database.Name != "from_file" || cfg.Database.Host != "db.internal" || cfg.Database.Port != 6543 {
		t.Fatalf("database = %+v", cfg.Database)
	}
	if !cfg.Archive.Enabled || cfg.Archive.Bucket != "bills" {
		t.Fatalf("archive = %+v", cfg.Archive)
	}
	want := "postgres://postgres:@db.internal:6543/from_file?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}
}
