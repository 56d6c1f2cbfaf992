// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ORIGIN_PATTERNS", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, []string{"*"}, cfg.OriginPatterns)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("ORIGIN_PATTERNS", "https://example.com, https://quiz.example.com")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, []string{"https://example.com", "https://quiz.example.com"}, cfg.OriginPatterns)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
}
