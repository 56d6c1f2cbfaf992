// internal/config/config.go
package config

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config holds the process configuration, read from the environment. A .env
// file is honored via godotenv autoload in main.
type Config struct {
	// Addr is the listen address, built from PORT.
	Addr string

	// OriginPatterns restricts websocket upgrade origins; "*" by default so a
	// statically hosted page can connect.
	OriginPatterns []string

	// LogLevel parses LOG_LEVEL; info when unset or invalid.
	LogLevel logrus.Level
}

// Load reads the configuration from the environment with defaults.
func Load() Config {
	cfg := Config{
		Addr:           ":8080",
		OriginPatterns: []string{"*"},
		LogLevel:       logrus.InfoLevel,
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	if origins := os.Getenv("ORIGIN_PATTERNS"); origins != "" {
		parts := strings.Split(origins, ",")
		patterns := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		if len(patterns) > 0 {
			cfg.OriginPatterns = patterns
		}
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if parsed, err := logrus.ParseLevel(lvl); err == nil {
			cfg.LogLevel = parsed
		}
	}
	return cfg
}
