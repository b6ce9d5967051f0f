// cmd/preflight/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hamed0406/healthcheck/internal/config"
)

func main() {
	if !preflight(os.Stdout, os.Stderr, config.FromEnv()) {
		os.Exit(1)
	}
}

// preflight reports on the environment and the service file. It returns
// false when the server would refuse to start.
func preflight(stdout, stderr io.Writer, cfg config.Config) bool {
	passed := true
	fail := func(msg string) {
		fmt.Fprintln(stderr, "✖", msg)
		passed = false
	}
	warn := func(msg string) { fmt.Fprintln(stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(stdout, "✔", msg) }

	if len(cfg.AdminAPIKeys) == 0 {
		warn("ADMIN_API_KEYS is empty; PUT /api/config is open unless the service file sets api_bearer_token.")
	}
	if len(cfg.PublicAPIKeys) == 0 && len(cfg.AdminAPIKeys) == 0 {
		warn("PUBLIC_API_KEYS and ADMIN_API_KEYS are empty; GET /api/services is open.")
	}

	// Sanity-check lists (no spaces around commas).
	for name, v := range map[string]string{"ADMIN_API_KEYS": os.Getenv("ADMIN_API_KEYS"), "PUBLIC_API_KEYS": os.Getenv("PUBLIC_API_KEYS")} {
		if strings.Contains(strings.TrimSpace(v), " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	ok("API_ADDR=" + cfg.Addr)

	if cfg.DatabaseURL == "" {
		warn("DATABASE_URL empty; the service file stays on disk at " + cfg.ServicesFile + ".")
	} else {
		ok("DATABASE_URL present; the service file is kept in postgres")
	}

	if len(cfg.Origins) == 0 {
		warn("ALLOWED_ORIGINS empty; every origin may call the API and open /ws.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.Origins, ","))
	}

	f, err := config.Load(cfg.ServicesFile)
	if err != nil {
		fail(fmt.Sprintf("service file %s: %v", cfg.ServicesFile, err))
		return passed
	}
	enabled := 0
	for _, s := range f.Services {
		if s.Enabled {
			enabled++
		}
	}
	ok(fmt.Sprintf("service file %s: %d service(s), %d enabled", cfg.ServicesFile, len(f.Services), enabled))
	if enabled == 0 {
		warn("no enabled services; nothing will be probed.")
	}
	if f.TelegramToken == "" || f.TelegramChatID == 0 {
		if cfg.SlackWebhook == "" {
			warn("no notification transport configured; alerts are only logged.")
		}
	} else {
		ok("telegram transport configured")
	}

	if passed {
		ok("preflight passed")
	}
	return passed
}
