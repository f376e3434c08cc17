// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hamed0406/statusmonitor/internal/config"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg := config.FromEnv()

	targets, err := config.LoadTargets(cfg.TargetsFile)
	if err != nil {
		fail(err.Error())
	}
	ok(fmt.Sprintf("TARGETS_FILE=%s (%d targets)", cfg.TargetsFile, len(targets)))

	if strings.Contains(os.Getenv("PUBLIC_API_KEYS"), " ") {
		warn("PUBLIC_API_KEYS contains spaces; use comma-separated with no spaces, e.g. key1,key2")
	}
	if len(cfg.PublicAPIKeys) == 0 {
		warn("PUBLIC_API_KEYS is empty; the read API is open to anyone who can reach it.")
	} else {
		ok(fmt.Sprintf("PUBLIC_API_KEYS set (%d keys)", len(cfg.PublicAPIKeys)))
	}

	ok("API_ADDR=" + cfg.Addr)
	ok(fmt.Sprintf("CHECK_INTERVAL=%s HISTORY_CAPACITY=%d MAX_CONCURRENT_CHECKS=%d",
		cfg.CheckInterval, cfg.HistoryCapacity, cfg.MaxConcurrentChecks))

	if cfg.DatabaseURL == "" {
		dir := filepath.Dir(cfg.StateFile)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fail("STATE_FILE directory not writable: " + err.Error())
		}
		probe, err := os.CreateTemp(dir, ".preflight-*")
		if err != nil {
			fail("STATE_FILE directory not writable: " + err.Error())
		}
		probe.Close()
		os.Remove(probe.Name())
		ok("STATE_FILE=" + cfg.StateFile + " (directory writable)")
	} else {
		ok("DATABASE_URL present; state is kept in Postgres")
	}

	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty; any origin may read the API from a browser.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}

	if cfg.PublicRPM == 0 {
		warn("PUBLIC_RPM=0; rate limiting is disabled.")
	}

	ok("preflight passed")
}
