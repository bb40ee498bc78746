package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
storage:
  driver: memory
  seed:
    users: [alice, bob]
    projects:
      - id: p1
        owner_id: bob
realtime:
  guard: redis
  guard_ttl: 720h
  conn_send_buffer: 8
limits:
  swipes_per_minute: 99
cors:
  allowed_origins:
    - https://app.example.com
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Storage.Driver != "memory" {
		t.Fatalf("unexpected storage driver: %s", cfg.Storage.Driver)
	}
	if len(cfg.Storage.Seed.Users) != 2 || cfg.Storage.Seed.Projects[0].OwnerID != "bob" {
		t.Fatalf("unexpected seed: %+v", cfg.Storage.Seed)
	}
	if cfg.Realtime.Guard != "redis" {
		t.Fatalf("unexpected guard: %s", cfg.Realtime.Guard)
	}
	if cfg.Realtime.GuardTTL != 720*time.Hour {
		t.Fatalf("unexpected guard ttl: %s", cfg.Realtime.GuardTTL)
	}
	if cfg.Realtime.ConnSendBuffer != 8 {
		t.Fatalf("unexpected conn send buffer: %d", cfg.Realtime.ConnSendBuffer)
	}
	if cfg.Limits.SwipesPerMinute != 99 {
		t.Fatalf("unexpected swipes/min: %d", cfg.Limits.SwipesPerMinute)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORS.AllowedOrigins)
	}

	if cfg.Limits.SwipesPer10Seconds != 15 {
		t.Fatalf("swipes_per_10sec default should stay 15")
	}
	if cfg.Realtime.PongWait != 60*time.Second {
		t.Fatalf("pong_wait default should stay 60s")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Storage.Driver != "postgres" || cfg.Realtime.Guard != "postgres" {
		t.Fatalf("unexpected backend defaults: %s/%s", cfg.Storage.Driver, cfg.Realtime.Guard)
	}
	if cfg.Realtime.BusQueueSize != 1024 {
		t.Fatalf("unexpected bus queue default: %d", cfg.Realtime.BusQueueSize)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected http addr default: %s", cfg.HTTP.Addr)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("REALTIME_GUARD", "memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("REALTIME_PONG_WAIT", "30s")
	t.Setenv("REALTIME_PING_PERIOD", "20s")
	t.Setenv("STORAGE_SEED_USERS", "u1,u2")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Storage.Driver != "memory" || cfg.Realtime.Guard != "memory" {
		t.Fatalf("env overrides not applied: %+v", cfg.Storage)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORS.AllowedOrigins)
	}
	if len(cfg.Storage.Seed.Users) != 2 {
		t.Fatalf("unexpected seed users: %v", cfg.Storage.Seed.Users)
	}
	if cfg.Realtime.PingPeriod != 20*time.Second {
		t.Fatalf("unexpected ping period: %s", cfg.Realtime.PingPeriod)
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_ACCESS_TTL", "soon")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadRejectsPostgresGuardWithoutPostgresStorage(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORAGE_DRIVER", "memory")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for postgres guard on memory storage")
	}
}

func TestLoadRejectsIncompleteSeedProject(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
storage:
  driver: memory
  seed:
    projects:
      - id: p1
realtime:
  guard: memory
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for seed project without owner")
	}
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "prod")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error when jwt secret is default in production")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"STORAGE_DRIVER",
		"STORAGE_SEED_USERS",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"JWT_SECRET",
		"JWT_ACCESS_TTL",
		"REALTIME_GUARD",
		"REALTIME_GUARD_TTL",
		"REALTIME_BUS_QUEUE_SIZE",
		"REALTIME_PONG_WAIT",
		"REALTIME_PING_PERIOD",
		"LIMITS_SWIPES_PER_MINUTE",
		"LIMITS_SWIPES_PER_10SEC",
		"CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}
