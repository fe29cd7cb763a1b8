package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per request, ex: 10s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Store      string // "redis" | "sqlite" | "memory"
	SQLitePath string // sqlite database file

	// Identity tokens
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	SeedFile           string        // optional YAML seed collection (empty = disabled)
	SeedReloadInterval time.Duration // interval to re-apply the seed file (default: 24h)

	GeminiAPIKey string // optional, empty = recommendations disabled
	GeminiModel  string

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedOrigins []string // CORS origins
	AllowedHosts   []string // optional, restrict access to specific Host headers
	AllowedCIDRS   []string // optional, restrict ops endpoints to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy     bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	RateLimitBurst  int // mutation requests allowed in a burst per client IP
	RateLimitPerMin int // sustained mutation requests per minute per client IP
}

// Load reads the configuration from the environment. Values from .env.local and .env are
// loaded first without overriding variables that are already set.
func Load() *Config {
	loadDotenv(".env.local", ".env")

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("ICEBREAKER_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("ICEBREAKER_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("ICEBREAKER_REQUEST_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("ICEBREAKER_LOG_LEVEL", "info"),
		PrettyLog: mustBool("ICEBREAKER_PRETTY_LOG", true),

		// Storage
		Store:      strings.ToLower(getenv("ICEBREAKER_STORE", StoreRedis)),
		SQLitePath: getenv("ICEBREAKER_SQLITE_PATH", "./data/icebreaker.db"),

		// Identity
		JWTSecret: requireEnv("ICEBREAKER_JWT_SECRET"),
		JWTIssuer: getenv("ICEBREAKER_JWT_ISSUER", "icebreaker"),
		JWTTTL:    mustDuration("ICEBREAKER_JWT_TTL", 24*time.Hour),

		// Seed collection
		SeedFile:           getenv("ICEBREAKER_SEED_FILE", ""),
		SeedReloadInterval: mustDuration("ICEBREAKER_SEED_RELOAD_INTERVAL", 24*time.Hour),

		// Recommendations
		GeminiAPIKey: getenv("ICEBREAKER_GEMINI_API_KEY", ""),
		GeminiModel:  getenv("ICEBREAKER_GEMINI_MODEL", "gemini-2.0-flash"),

		// Redis settings
		RedisAddr:             getenv("ICEBREAKER_REDIS_ADDR", ""),
		RedisUser:             getenv("ICEBREAKER_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("ICEBREAKER_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("ICEBREAKER_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("ICEBREAKER_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedOrigins: splitAndTrim(getenv("ICEBREAKER_ALLOWED_ORIGINS", "http://localhost:3000")),
		AllowedHosts:   splitAndTrim(getenv("ICEBREAKER_ALLOWED_HOSTS", "")),
		AllowedCIDRS:   parseAllowedIPs(getenv("ICEBREAKER_ALLOWED_CIDRS", "")),
		TrustProxy:     mustBool("ICEBREAKER_TRUST_PROXY", true),

		RateLimitBurst:  getenvInt("ICEBREAKER_RATE_LIMIT_BURST", 30),
		RateLimitPerMin: getenvInt("ICEBREAKER_RATE_LIMIT_PER_MIN", 120),
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Validate checks the combinations a single variable cannot express.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("ICEBREAKER_REDIS_ADDR is required when ICEBREAKER_STORE=%s", StoreRedis)
		}
		if c.RedisPasswordRequired && c.RedisPassword == "" {
			return fmt.Errorf("ICEBREAKER_REDIS_PASSWORD is required when ICEBREAKER_REDIS_PASSWORD_REQUIRED=true")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("ICEBREAKER_SQLITE_PATH is required when ICEBREAKER_STORE=%s", StoreSQLite)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown ICEBREAKER_STORE %q (want redis, sqlite or memory)", c.Store)
	}

	if c.RateLimitBurst <= 0 || c.RateLimitPerMin <= 0 {
		return fmt.Errorf("rate limits must be positive (burst=%d, per_min=%d)", c.RateLimitBurst, c.RateLimitPerMin)
	}
	if c.SeedFile != "" && c.SeedReloadInterval <= 0 {
		return fmt.Errorf("ICEBREAKER_SEED_RELOAD_INTERVAL must be positive")
	}
	return nil
}

// Redacted returns a copy that is safe to log.
func (c *Config) Redacted() Config {
	cp := *c
	const redacted = "***REDACTED***"
	cp.JWTSecret = redacted
	if cp.RedisPassword != "" {
		cp.RedisPassword = redacted
	}
	if cp.RedisUser != "" {
		cp.RedisUser = redacted
	}
	if cp.GeminiAPIKey != "" {
		cp.GeminiAPIKey = redacted
	}
	return cp
}

// loadDotenv loads the files that exist. The first file wins for a given key and the real
// environment wins over both.
func loadDotenv(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Printf("[WARN] failed to load %s: %v\n", f, err)
		}
	}
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

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
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
