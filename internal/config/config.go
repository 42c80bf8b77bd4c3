package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrSnakeDoc/bookmarks-api/internal/connect"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	StoreSQL    = "sql"
	StoreMemory = "memory"
)

type Config struct {
	Env             string        // "production" | "development" | "test"
	ListenPort      string        // ex: ":8000"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	APIToken string // static bearer token required on /api

	// Persistence
	Store             string        // "sql" | "memory"
	DBDriver          string        // "postgres" | "sqlite3"
	DatabaseURL       string        // DSN, required when Store == "sql"
	DBMaxOpenConns    int           // pool size
	DBMaxIdleConns    int           // idle connections kept
	DBConnMaxLifetime time.Duration // ex: 30m
	DBEnsureSchema    bool          // create bookmarks_data if missing
	DBConnectTimeout  time.Duration // total time to retry connecting (ex: 30s)
	DBRetryInterval   time.Duration // initial wait between retries (grows exponentially)
	DBMaxWait         time.Duration // max wait between retries
	DBPingTimeout     time.Duration // timeout for each ping attempt
	DBWarnThreshold   int           // warn after this many attempts

	// Redis cache (optional, empty address disables it)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisCacheTTL       time.Duration // lifetime of a cached bookmark
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// Seed
	SeedFile          string // optional YAML file loaded into an empty store
	SeedDefaultRating int    // rating given to Homepage-format entries

	// Edge
	AllowedCIDRS    []string // optional, restrict infra endpoints to these IPs/CIDRs
	TrustProxy      bool     // true => trust X-Forwarded-For headers
	CORSOrigins     []string // allowed CORS origins
	RateLimitBurst  int      // per-IP burst on /api, 0 disables rate limiting
	RateLimitPerMin int      // per-IP refill rate
}

// Load reads the configuration from the environment, after loading a .env file when present.
// It panics when a required value is missing or invalid.
func Load() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	env := getenv("BOOKMARKS_ENV", EnvDevelopment)
	production := env == EnvProduction

	cfg := &Config{
		// Server settings
		Env:             env,
		ListenPort:      getenv("BOOKMARKS_LISTEN_PORT", ":8000"),
		ShutdownTimeout: mustDuration("BOOKMARKS_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("BOOKMARKS_LOG_LEVEL", "info"),
		PrettyLog: mustBool("BOOKMARKS_PRETTY_LOG", !production),

		APIToken: requireEnv("BOOKMARKS_API_TOKEN"),

		// Persistence
		Store:             oneOf("BOOKMARKS_STORE", StoreSQL, StoreSQL, StoreMemory),
		DBDriver:          oneOf("BOOKMARKS_DB_DRIVER", "postgres", "postgres", "sqlite3"),
		DBMaxOpenConns:    getenvInt("BOOKMARKS_DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:    getenvInt("BOOKMARKS_DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: mustDuration("BOOKMARKS_DB_CONN_MAX_LIFETIME", 30*time.Minute),
		DBEnsureSchema:    mustBool("BOOKMARKS_DB_ENSURE_SCHEMA", false),
		DBConnectTimeout:  mustDuration("BOOKMARKS_DB_CONNECT_TIMEOUT", 30*time.Second),
		DBRetryInterval:   mustDuration("BOOKMARKS_DB_RETRY_INTERVAL", time.Second),
		DBMaxWait:         mustDuration("BOOKMARKS_DB_MAX_WAIT", 10*time.Second),
		DBPingTimeout:     mustDuration("BOOKMARKS_DB_PING_TIMEOUT", 5*time.Second),
		DBWarnThreshold:   getenvInt("BOOKMARKS_DB_WARN_THRESHOLD", 3),

		// Redis settings
		RedisAddr:           getenv("BOOKMARKS_REDIS_ADDR", ""),
		RedisUser:           getenv("BOOKMARKS_REDIS_USERNAME", ""),
		RedisPassword:       getenv("BOOKMARKS_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("BOOKMARKS_REDIS_DB", 0),
		RedisCacheTTL:       mustDuration("BOOKMARKS_REDIS_CACHE_TTL", 10*time.Minute),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Seed
		SeedFile:          getenv("BOOKMARKS_SEED_FILE", ""),
		SeedDefaultRating: getenvInt("BOOKMARKS_SEED_DEFAULT_RATING", 3),

		// Edge
		AllowedCIDRS:    parseList(getenv("BOOKMARKS_ALLOWED_CIDRS", "")),
		TrustProxy:      mustBool("BOOKMARKS_TRUST_PROXY", false),
		CORSOrigins:     parseList(getenv("BOOKMARKS_CORS_ORIGINS", "*")),
		RateLimitBurst:  getenvInt("BOOKMARKS_RATE_LIMIT_BURST", 0),
		RateLimitPerMin: getenvInt("BOOKMARKS_RATE_LIMIT_PER_MIN", 60),
	}

	if cfg.Store == StoreSQL {
		cfg.DatabaseURL = requireEnv("BOOKMARKS_DATABASE_URL")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// IsProduction reports whether internal error details must be hidden from clients.
func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// CacheEnabled reports whether a Redis cache is configured.
func (c *Config) CacheEnabled() bool { return c.RedisAddr != "" }

// DBRetry is the startup retry policy for the database.
func (c *Config) DBRetry() connect.Policy {
	return connect.Policy{
		ConnectTimeout: c.DBConnectTimeout,
		RetryInterval:  c.DBRetryInterval,
		MaxWait:        c.DBMaxWait,
		PingTimeout:    c.DBPingTimeout,
		WarnThreshold:  c.DBWarnThreshold,
	}
}

// RedisRetry is the startup retry policy for the cache.
func (c *Config) RedisRetry() connect.Policy {
	return connect.Policy{
		ConnectTimeout: c.RedisConnectTimeout,
		RetryInterval:  c.RedisRetryInterval,
		MaxWait:        c.RedisMaxWait,
		PingTimeout:    c.RedisPingTimeout,
		WarnThreshold:  c.RedisWarnThreshold,
	}
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	const mask = "***REDACTED***"
	cp.APIToken = mask
	if cp.DatabaseURL != "" {
		cp.DatabaseURL = mask
	}
	if cp.RedisPassword != "" {
		cp.RedisPassword = mask
	}
	if cp.RedisUser != "" {
		cp.RedisUser = mask
	}
	return cp
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

// oneOf returns the value of key (or def) and panics when it is not in allowed.
func oneOf(key, def string, allowed ...string) string {
	v := strings.ToLower(getenv(key, def))
	if !slices.Contains(allowed, v) {
		panic(fmt.Sprintf("❌ FATAL: Invalid value for %s: %q (allowed: %s)", key, v, strings.Join(allowed, ", ")))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// parseList splits a comma separated value, dropping empty items.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
