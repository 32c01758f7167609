package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// t.Setenv registers the restore; the vars must be absent, not empty,
	// for envDefault to apply.
	for _, key := range []string{"BENCH_ENV", "PORT", "DB_PATH"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Env != "dev" {
		t.Fatalf("Env=%q, want dev", cfg.Env)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected IsDev")
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port=%q, want 8080", cfg.Port)
	}
	if cfg.DBPath != "./bench.db" {
		t.Fatalf("DBPath=%q, want ./bench.db", cfg.DBPath)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("BENCH_ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("ADMIN_EMAIL", "owner@bench.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.IsDev() {
		t.Fatalf("did not expect IsDev in production")
	}
	if cfg.Port != "9000" || cfg.AdminEmail != "owner@bench.test" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
