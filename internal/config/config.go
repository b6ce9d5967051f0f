package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr          string        // API bind address, e.g. ":8080"
	LogDir        string        // logs directory
	LogLevel      string        // debug | info | warn | error
	LogConsole    bool          // also log to stderr
	ServicesFile  string        // YAML service file
	DatabaseURL   string        // optional; keeps the service file in postgres instead of on disk
	FrontendDir   string        // static UI assets
	PublicAPIKeys []string      // read access
	AdminAPIKeys  []string      // config access
	Origins       []string      // CORS + websocket origins; empty allows all
	PublicRPM     int           // requests per minute per client on public routes
	PublicBurst   int
	AdminRPM      int
	AdminBurst    int
	SwapGrace     time.Duration // how long a hot-swap waits for old runners
	SlackWebhook  string        // optional extra alert transport
}

func FromEnv() Config {
	// Bind address
	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = os.Getenv("ADDR")
	}
	if addr == "" {
		addr = ":8080"
	}

	// Logs
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}
	logLevel := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if logLevel == "" {
		logLevel = "info"
	}

	servicesFile := os.Getenv("HEALTHCHECK_CONFIG")
	if servicesFile == "" {
		servicesFile = "healthcheck.yaml"
	}

	frontend := os.Getenv("FRONTEND_DIR")
	if frontend == "" {
		frontend = "frontend"
	}

	grace := 2 * time.Second
	if v := os.Getenv("SWAP_GRACE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			grace = time.Duration(ms) * time.Millisecond
		}
	}

	return Config{
		Addr:          addr,
		LogDir:        logDir,
		LogLevel:      logLevel,
		LogConsole:    envBool("LOG_CONSOLE"),
		ServicesFile:  servicesFile,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		FrontendDir:   frontend,
		PublicAPIKeys: splitList(os.Getenv("PUBLIC_API_KEYS")),
		AdminAPIKeys:  splitList(os.Getenv("ADMIN_API_KEYS")),
		Origins:       splitList(os.Getenv("ALLOWED_ORIGINS")),
		PublicRPM:     envInt("PUBLIC_RPM", 120),
		PublicBurst:   envInt("PUBLIC_BURST", 60),
		AdminRPM:      envInt("ADMIN_RPM", 30),
		AdminBurst:    envInt("ADMIN_BURST", 10),
		SwapGrace:     grace,
		SlackWebhook:  strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL")),
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envBool(key string) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && b
}

// splitList turns "a, b,,c" into [a b c].
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
