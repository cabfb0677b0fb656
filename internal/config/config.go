package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	ManifestFile   string        // path to the extension manifest (optional, empty = built-in defaults)
	ManifestWatch  bool          // reload the manifest when the file changes on disk
	ReloadInterval time.Duration // periodic manifest reload (0 = only on change or manual trigger)

	TrustedImageOrigin string        // images already hosted here are not re-uploaded
	ServiceTimeout     time.Duration // timeout for document service HTTP calls
	NotifyCapacity     int           // number of notifications kept for the API
	QueueSize          int           // buffered commands per watcher

	// Browser
	BrowserEnabled  bool          // drive a real Chromium page through playwright
	BrowserHeadless bool          // run Chromium without a window
	BrowserInstall  bool          // download playwright browsers on startup
	BrowserTimeout  time.Duration // default page timeout
	BrowserWidth    int           // viewport width
	BrowserHeight   int           // viewport height

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

	AllowedHosts   []string // optional, restrict access to specific Host headers
	AllowedOrigins []string // CORS origins allowed to call the API (glob patterns)
	AllowedCIDRS   []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy     bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateBurst      int      // requests a client may burst on /api
	RateRefill     int      // tokens refilled per client per minute
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("CLIPPER_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("CLIPPER_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("CLIPPER_LOG_LEVEL", "info"),
		PrettyLog: mustBool("CLIPPER_PRETTY_LOG", true),

		// Manifest
		ManifestFile:   getenv("CLIPPER_MANIFEST_FILE", ""),
		ManifestWatch:  mustBool("CLIPPER_MANIFEST_WATCH", true),
		ReloadInterval: mustDuration("CLIPPER_RELOAD_INTERVAL", time.Hour),

		// Clipping
		TrustedImageOrigin: getenv("CLIPPER_TRUSTED_IMAGE_ORIGIN", "https://cdn-pri.nlark.com"),
		ServiceTimeout:     mustDuration("CLIPPER_SERVICE_TIMEOUT", 15*time.Second),
		NotifyCapacity:     getenvInt("CLIPPER_NOTIFY_CAPACITY", 50),
		QueueSize:          getenvInt("CLIPPER_QUEUE_SIZE", 16),

		// Browser
		BrowserEnabled:  mustBool("CLIPPER_BROWSER_ENABLED", false),
		BrowserHeadless: mustBool("CLIPPER_BROWSER_HEADLESS", true),
		BrowserInstall:  mustBool("CLIPPER_BROWSER_INSTALL", false),
		BrowserTimeout:  mustDuration("CLIPPER_BROWSER_TIMEOUT", 30*time.Second),
		BrowserWidth:    getenvInt("CLIPPER_BROWSER_WIDTH", 1280),
		BrowserHeight:   getenvInt("CLIPPER_BROWSER_HEIGHT", 800),

		// Redis settings
		RedisAddr:             requireEnv("CLIPPER_REDIS_ADDR"),
		RedisUser:             getenv("CLIPPER_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("CLIPPER_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("CLIPPER_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("CLIPPER_REDIS_DB", 0),
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
		AllowedHosts:   splitAndTrim(getenv("CLIPPER_ALLOWED_HOSTS", "")),
		AllowedOrigins: splitAndTrim(getenv("CLIPPER_ALLOWED_ORIGINS", "chrome-extension://*,moz-extension://*")),
		AllowedCIDRS:   parseAllowedIPs(getenv("CLIPPER_ALLOWED_CIDRS", "")),
		TrustProxy:     mustBool("CLIPPER_TRUST_PROXY", false),
		RateBurst:      getenvInt("CLIPPER_RATE_BURST", 30),
		RateRefill:     getenvInt("CLIPPER_RATE_REFILL_PER_MIN", 120),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: CLIPPER_REDIS_PASSWORD is required when CLIPPER_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.RedisPassword != "" {
		c.RedisPassword = "***REDACTED***"
	}
	if c.RedisUser != "" {
		c.RedisUser = "***REDACTED***"
	}
	return c
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
