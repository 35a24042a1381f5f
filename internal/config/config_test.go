package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if errWrite := os.WriteFile(path, []byte(body), 0o600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}
	return path
}

func TestLoadParsesYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "127.0.0.1:9000"
  shutdown-timeout: 3s
database:
  dsn: "postgres://amo@localhost/amo"
redis:
  addr: "localhost:6379"
  db: 2
jwt:
  secret: "s3cret"
  expiry: 1h
log:
  level: debug
  file: /var/log/listing.log
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected server config %#v", cfg.Server)
	}
	if cfg.Database.DSN != "postgres://amo@localhost/amo" {
		t.Fatalf("unexpected dsn %s", cfg.Database.DSN)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Fatalf("unexpected redis config %#v", cfg.Redis)
	}
	if cfg.JWT.Secret != "s3cret" || cfg.JWT.Expiry != time.Hour {
		t.Fatalf("unexpected jwt config %#v", cfg.JWT)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "/var/log/listing.log" || cfg.Log.MaxSizeMB != 100 {
		t.Fatalf("unexpected log config %#v", cfg.Log)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Database.DSN != "data/listing.db" || cfg.Log.Level != "info" {
		t.Fatalf("unexpected defaults %#v", cfg)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("expected no redis by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: file.db\n")
	t.Setenv("LISTING_DATABASE_DSN", "postgres://env@localhost/amo")
	t.Setenv("LISTING_REDIS_DB", "4")
	t.Setenv("LISTING_JWT_SECRET", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.DSN != "postgres://env@localhost/amo" || cfg.Redis.DB != 4 || cfg.JWT.Secret != "from-env" {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Fatalf("expected yaml error")
	}
	t.Setenv("LISTING_REDIS_DB", "two")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for bad LISTING_REDIS_DB")
	}
}

func TestLoadJWTConfigRequiresSecret(t *testing.T) {
	if _, err := LoadJWTConfig(writeConfig(t, "jwt:\n  expiry: 1h\n")); err == nil {
		t.Fatalf("expected error without secret")
	}
	jwtCfg, err := LoadJWTConfig(writeConfig(t, "jwt:\n  secret: abc\n"))
	if err != nil || jwtCfg.Secret != "abc" || jwtCfg.Expiry != 12*time.Hour {
		t.Fatalf("unexpected jwt config %#v err=%v", jwtCfg, err)
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("LISTING_CONFIG", "")
	if got := ResolveConfigPath(""); got != DefaultConfigPath {
		t.Fatalf("default path = %s", got)
	}
	t.Setenv("LISTING_CONFIG", "/etc/listing.yaml")
	if got := ResolveConfigPath(" "); got != "/etc/listing.yaml" {
		t.Fatalf("env path = %s", got)
	}
	if got := ResolveConfigPath("local.yaml"); got != "local.yaml" {
		t.Fatalf("explicit path = %s", got)
	}
	if ConfigExists(filepath.Join(t.TempDir(), "nope.yaml")) {
		t.Fatalf("expected missing config")
	}
}
