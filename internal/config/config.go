package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr        string // API bind address, e.g., "127.0.0.1:8080" or ":8080" (Docker)
	LogDir      string
	LogLevel    string
	TargetsFile string
	StateFile   string
	DatabaseURL string // empty means the JSON state file is used

	CheckInterval       time.Duration
	HistoryCapacity     int
	MaxConcurrentChecks int
	DNSDiagnostics      bool

	AllowedOrigins []string
	PublicAPIKeys  []string
	PublicRPM      int
	PublicBurst    int
}

func FromEnv() Config {
	return Config{
		Addr:        str("API_ADDR", "127.0.0.1:8080"),
		LogDir:      str("LOG_DIR", "logs"),
		LogLevel:    str("LOG_LEVEL", "info"),
		TargetsFile: str("TARGETS_FILE", "targets.yaml"),
		StateFile:   str("STATE_FILE", "data/status_state.json"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		CheckInterval:       time.Duration(positive("CHECK_INTERVAL_MS", 30000)) * time.Millisecond,
		HistoryCapacity:     positive("HISTORY_CAPACITY", 100),
		MaxConcurrentChecks: positive("MAX_CONCURRENT_CHECKS", 4),
		DNSDiagnostics:      boolean("DNS_DIAGNOSTICS", true),

		AllowedOrigins: list("ALLOWED_ORIGINS"),
		PublicAPIKeys:  list("PUBLIC_API_KEYS"),
		PublicRPM:      nonNegative("PUBLIC_RPM", 120),
		PublicBurst:    positive("PUBLIC_BURST", 60),
	}
}

func str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func positive(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// nonNegative allows 0, which disables the feature it configures.
func nonNegative(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func boolean(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func list(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
