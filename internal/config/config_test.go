package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/reoring/reqschema/internal/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeFile(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := config.Default()
	if cfg.Server.Addr != def.Server.Addr || cfg.API.Prefix != "/api" || cfg.Admin.Prefix != "/admin" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Middlewares, def.Middlewares) {
		t.Fatalf("middlewares: %v", cfg.Middlewares)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	p := writeFile(t, `
server:
  addr: "0.0.0.0:8080"
  shutdown_timeout: 3s
logging:
  level: debug
api:
  prefix: /content
`)
	t.Setenv("REQSCHEMA_SERVER__ADDR", "127.0.0.1:9090")
	t.Setenv("REQSCHEMA_MIDDLEWARES", "host::errors, host::body ,plugin::request-schema.enforce")

	cfg, err := config.Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Fatalf("env should win over file, got %q", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second || cfg.Logging.Level != "debug" || cfg.API.Prefix != "/content" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	want := []string{"host::errors", "host::body", "plugin::request-schema.enforce"}
	if !reflect.DeepEqual(cfg.Middlewares, want) {
		t.Fatalf("middlewares = %v, want %v", cfg.Middlewares, want)
	}
}

func TestLoad_Invalid(t *testing.T) {
	p := writeFile(t, "logging:\n  level: loud\napi:\n  prefix: api\n")
	_, err := config.Load(p)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Logging.Level") || !strings.Contains(msg, "API.Prefix") {
		t.Fatalf("expected both violations, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidate_DuplicateMiddleware(t *testing.T) {
	cfg := config.Default()
	cfg.Middlewares = append(cfg.Middlewares, config.MiddlewareBody)
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected duplicate middleware to fail validation")
	}
}
