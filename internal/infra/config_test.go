package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "PORT", "STORE_DRIVER", "DATABASE_URL", "BADGER_PATH", "CORS_ORIGINS", "RATE_LIMIT_PER_MINUTE"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "3001" {
		t.Fatalf("Port mismatch: got %q want %q", cfg.Port, "3001")
	}
	if cfg.StoreDriver != StoreDriverBadger {
		t.Fatalf("StoreDriver mismatch: got %q want %q", cfg.StoreDriver, StoreDriverBadger)
	}
	if cfg.AppEnv != "production" || cfg.IsDevelopment() {
		t.Fatalf("expected production environment by default, got %q", cfg.AppEnv)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:5173" {
		t.Fatalf("CORSOrigins mismatch: %#v", cfg.CORSOrigins)
	}
	if cfg.HTTPIdleTimeout != 60*time.Second {
		t.Fatalf("HTTPIdleTimeout mismatch: got %s", cfg.HTTPIdleTimeout)
	}
}

func TestLoadConfigPostgresRequiresDatabaseURL(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing for postgres store")
	}

	t.Setenv("DATABASE_URL", "postgres://example")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("DatabaseURL mismatch: got %q", cfg.DatabaseURL)
	}
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported store driver")
	}
}

func TestLoadConfigParsesListsAndFlags(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CORS_ORIGINS", " https://a.example.com , ,https://b.example.com")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("APP_ENV", "development")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StoreDriver != StoreDriverRedis {
		t.Fatalf("StoreDriver mismatch: got %q", cfg.StoreDriver)
	}
	if cfg.RedisDB != 3 {
		t.Fatalf("RedisDB mismatch: got %d", cfg.RedisDB)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("CORSOrigins mismatch: %#v", cfg.CORSOrigins)
	}
	if cfg.AutoMigrate {
		t.Fatal("expected AutoMigrate to be disabled")
	}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development environment")
	}
}
