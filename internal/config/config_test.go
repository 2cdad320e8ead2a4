package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "STORE_DRIVER", "REDIS_ENABLED", "HIRING_TIMEOUT", "NOTIFY_TIMEOUT", "RATE_LIMIT_PER_MIN"} {
		t.Setenv(k, "")
	}
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DB_DSN", "host=localhost")

	cfg := Load()
	if cfg.AppPort != "8080" || cfg.StoreDriver != StorePostgres {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.HiringTimeout != 5*time.Second || cfg.NotifyTimeout != 3*time.Second {
		t.Fatalf("timeouts = %s / %s", cfg.HiringTimeout, cfg.NotifyTimeout)
	}
	if !cfg.RedisEnabled || cfg.RateLimitPerMin != 30 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("HIRING_TIMEOUT", "750ms")
	t.Setenv("REDIS_DB", "2")

	cfg := Load()
	if cfg.StoreDriver != StoreMemory || cfg.DBDSN != "" {
		t.Fatalf("driver = %q dsn = %q", cfg.StoreDriver, cfg.DBDSN)
	}
	if cfg.RedisEnabled || cfg.RedisDB != 2 || cfg.HiringTimeout != 750*time.Millisecond {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadPanics(t *testing.T) {
	cases := map[string]map[string]string{
		"no secret":        {"STORE_DRIVER": "memory"},
		"postgres no dsn":  {"JWT_SECRET": "s"},
		"bad driver":       {"JWT_SECRET": "s", "STORE_DRIVER": "mongo"},
		"bad duration":     {"JWT_SECRET": "s", "STORE_DRIVER": "memory", "NOTIFY_TIMEOUT": "soon"},
		"negative timeout": {"JWT_SECRET": "s", "STORE_DRIVER": "memory", "HIRING_TIMEOUT": "-1s"},
		"bad bool":         {"JWT_SECRET": "s", "STORE_DRIVER": "memory", "REDIS_ENABLED": "maybe"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"JWT_SECRET", "DB_DSN", "STORE_DRIVER"} {
				t.Setenv(k, "")
			}
			for k, v := range env {
				t.Setenv(k, v)
			}
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			Load()
		})
	}
}
