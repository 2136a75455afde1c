package config_test

import (
	"testing"
	"time"

	"github.com/clipqa/annotation-service/internal/config"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/annotations")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.SchemaVersion != "gated-likert-v2" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.StatsInterval != 30*time.Second {
		t.Fatalf("expected 30s stats interval, got %s", cfg.StatsInterval)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/annotations")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SUBMIT_RATE_PER_SEC", "0.5")
	t.Setenv("STATS_INTERVAL", "0s")
	t.Setenv("BCRYPT_COST", "not-a-number")

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPPort != "9090" || cfg.SubmitRatePerSec != 0.5 || cfg.StatsInterval != 0 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.BcryptCost != 12 {
		t.Fatalf("invalid int should fall back to default, got %d", cfg.BcryptCost)
	}
}
