package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	AppPort     string
	StoreDriver string
	DBDSN       string
	JWTSecret   string

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	HiringTimeout   time.Duration
	NotifyTimeout   time.Duration
	RateLimitPerMin int
	CORSOrigins     string
}

// Load reads the environment. Missing required values panic, as a server
// without them cannot start.
func Load() Config {
	cfg := Config{
		AppPort:         get("APP_PORT", "8080"),
		StoreDriver:     strings.ToLower(get("STORE_DRIVER", StorePostgres)),
		JWTSecret:       must("JWT_SECRET"),
		RedisEnabled:    getBool("REDIS_ENABLED", true),
		RedisAddr:       get("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   get("REDIS_PASSWORD", ""),
		RedisDB:         getInt("REDIS_DB", 0),
		HiringTimeout:   getDuration("HIRING_TIMEOUT", 5*time.Second),
		NotifyTimeout:   getDuration("NOTIFY_TIMEOUT", 3*time.Second),
		RateLimitPerMin: getInt("RATE_LIMIT_PER_MIN", 30),
		CORSOrigins:     get("CORS_ORIGINS", "http://localhost:5173, http://localhost:5174"),
	}
	switch cfg.StoreDriver {
	case StorePostgres:
		cfg.DBDSN = must("DB_DSN")
	case StoreMemory:
		cfg.DBDSN = get("DB_DSN", "")
	default:
		panic(fmt.Sprintf("invalid STORE_DRIVER %q (want %s or %s)", cfg.StoreDriver, StorePostgres, StoreMemory))
	}
	return cfg
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}

func getInt(k string, def int) int {
	v, err := strconv.Atoi(get(k, strconv.Itoa(def)))
	if err != nil {
		panic(fmt.Sprintf("invalid env %s: %v", k, err))
	}
	return v
}

func getBool(k string, def bool) bool {
	v, err := strconv.ParseBool(get(k, strconv.FormatBool(def)))
	if err != nil {
		panic(fmt.Sprintf("invalid env %s: %v", k, err))
	}
	return v
}

func getDuration(k string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(get(k, def.String()))
	if err != nil || v <= 0 {
		panic(fmt.Sprintf("invalid env %s: %q", k, os.Getenv(k)))
	}
	return v
}
