package test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/config"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestConfigLoad_FromYAMLAndEnv(t *testing.T) {
	// Minimal YAML; secrets will come from ENV
	yaml := `
app:
  name: ultimate-frisbee-stats
  version: 0.1.0
  port: 18080

logger:
  level: info
  format: json
  time_format: rfc3339
  env: prod

postgres:
  host: 127.0.0.1
  port: 5432
  sslmode: disable
  max_conns: 5
  min_conns: 1
`
	path := writeTempConfig(t, yaml)

	// Provide required secrets via ENV using the canonical APP_* names
	t.Setenv("APP_POSTGRES_USER", "testuser")
	t.Setenv("APP_POSTGRES_PASSWORD", "testpass")
	t.Setenv("APP_POSTGRES_DBNAME", "testdb")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Port != 18080 {
		t.Fatalf("expected app.port 18080, got %d", cfg.App.Port)
	}
	if cfg.Postgres.User != "testuser" || cfg.Postgres.Password != "testpass" || cfg.Postgres.DBName != "testdb" {
		t.Fatalf("env overrides not applied: got user=%q pass=%q db=%q", cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.DBName)
	}
	if cfg.Postgres.Host != "127.0.0.1" || cfg.Postgres.Port != 5432 || cfg.Postgres.SSLMode != "disable" {
		t.Fatalf("yaml values not loaded as expected: host=%q port=%d sslmode=%q", cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.SSLMode)
	}
}

func TestConfigLoad_MatchDefaults(t *testing.T) {
	yaml := `
app:
  port: 18080
`
	path := writeTempConfig(t, yaml)
	t.Setenv("APP_POSTGRES_USER", "u")
	t.Setenv("APP_POSTGRES_PASSWORD", "p")
	t.Setenv("APP_POSTGRES_DBNAME", "d")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rules := cfg.Match.RuleSet()
	if rules.TargetPoints != 15 || rules.TimeLimitMinutes != 100 {
		t.Fatalf("unexpected match defaults: %+v", rules)
	}
	if rules.SoftCapMinutes != 75 || rules.HardCapMinutes != 100 {
		t.Fatalf("unexpected cap defaults: %+v", rules)
	}
	if rules.HalftimePoints != 8 || rules.HalftimeMinutes != 50 {
		t.Fatalf("unexpected halftime defaults: %+v", rules)
	}
	if rules.TimeoutDurationSeconds != 70 || rules.TimeoutsPerTeam != 2 {
		t.Fatalf("unexpected timeout defaults: %+v", rules)
	}
}

func TestConfigLoad_MissingRequiredEnvFails(t *testing.T) {
	yaml := `
app:
  port: 18080
`
	path := writeTempConfig(t, yaml)
	t.Setenv("APP_POSTGRES_USER", "")
	t.Setenv("APP_POSTGRES_PASSWORD", "")
	t.Setenv("APP_POSTGRES_DBNAME", "")

	_, err := config.Load(path)
	if err == nil {
		t.Fatalf("expected error for missing postgres secrets")
	}
	if !strings.Contains(err.Error(), "postgres.user") {
		t.Fatalf("expected missing postgres.user in error, got %v", err)
	}
}

func TestConfigLoad_MissingFileFails(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
