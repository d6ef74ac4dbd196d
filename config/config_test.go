package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/artpar/formgate/config"
)

func writeAndLoad(t *testing.T, content string) *config.Config {
	t.Helper()
	path := writeConfig(t, content)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return cfg
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "formgate.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 15s

database:
  driver: "sqlite"
  dsn: ":memory:"

admin:
  token: "super-secret-admin-token"

logging:
  level: "debug"
  format: "console"
`

	cfg := writeAndLoad(t, content)

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Host = %s, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want 15s", cfg.Server.ReadTimeout)
	}
	if cfg.Database.DSN != ":memory:" {
		t.Errorf("DSN = %s, want :memory:", cfg.Database.DSN)
	}
	if cfg.Admin.Token != "super-secret-admin-token" {
		t.Errorf("Admin.Token = %s", cfg.Admin.Token)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := writeAndLoad(t, "{}\n")

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("default Host = %s, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("default Driver = %s, want sqlite", cfg.Database.Driver)
	}
	if cfg.Database.DSN != "formgate.db" {
		t.Errorf("default DSN = %s, want formgate.db", cfg.Database.DSN)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default Logging.Level = %s, want info", cfg.Logging.Level)
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics should default to enabled")
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("default Metrics.Path = %s", cfg.Metrics.Path)
	}
	if cfg.Submissions.ListLimit != 50 {
		t.Errorf("default ListLimit = %d, want 50", cfg.Submissions.ListLimit)
	}
}

func TestLoad_MetricsCanBeDisabled(t *testing.T) {
	cfg := writeAndLoad(t, "metrics:\n  enabled: false\n")
	if cfg.Metrics.Enabled {
		t.Error("metrics.enabled: false not honored")
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 99999\n")
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for out-of-range port")
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: verbose\n")
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for unknown log level")
	}
}

func TestLoad_ShortAdminToken(t *testing.T) {
	path := writeConfig(t, "admin:\n  token: short\n")
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for short admin token")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FORMGATE_SERVER_PORT", "9191")
	t.Setenv("FORMGATE_LOG_LEVEL", "warn")
	t.Setenv("FORMGATE_ADMIN_TOKEN", "env-supplied-admin-token")

	cfg := writeAndLoad(t, "server:\n  port: 8080\n")

	if cfg.Server.Port != 9191 {
		t.Errorf("Port = %d, env override must win", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %s, want warn", cfg.Logging.Level)
	}
	if cfg.Admin.Token != "env-supplied-admin-token" {
		t.Errorf("Admin.Token = %s", cfg.Admin.Token)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FORMGATE_DATABASE_DSN", "/tmp/fg.db")
	t.Setenv("FORMGATE_METRICS_ENABLED", "false")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Database.DSN != "/tmp/fg.db" {
		t.Errorf("DSN = %s", cfg.Database.DSN)
	}
	if cfg.Metrics.Enabled {
		t.Error("FORMGATE_METRICS_ENABLED=false not honored")
	}
}

func TestLoadWithFallback_MissingFile(t *testing.T) {
	cfg, err := config.LoadWithFallback(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFallback: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want env defaults", cfg.Server.Port)
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("FG_TEST_DSN", "/data/formgate.db")
	cfg := writeAndLoad(t, "database:\n  dsn: \"${FG_TEST_DSN}\"\n")
	if cfg.Database.DSN != "/data/formgate.db" {
		t.Errorf("DSN = %s, want expanded env var", cfg.Database.DSN)
	}
}
