package config_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gotest.tools/v3/assert"

	"pkg.world.dev/world-engine/nucleus/config"
)

func TestLoadUsesDefaults(t *testing.T) {
	cfg, err := config.Load()
	assert.NilError(t, err)
	assert.Equal(t, config.DefaultWorldName, cfg.WorldName)
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
	assert.Check(t, !cfg.DebugCORS)
}

func TestLoadReadsTheEnvironment(t *testing.T) {
	t.Setenv("NUCLEUS_WORLD_NAME", "arena")
	t.Setenv("NUCLEUS_TICK_INTERVAL_MS", "16")
	t.Setenv("NUCLEUS_LOG_LEVEL", "debug")
	t.Setenv("NUCLEUS_LOG_PRETTY", "true")
	t.Setenv("STATSD_TAGS", "env:test, region:eu,,")
	t.Setenv("NUCLEUS_DEBUG_CORS", "true")

	cfg, err := config.Load()
	assert.NilError(t, err)
	assert.Equal(t, "arena", cfg.WorldName)
	assert.Equal(t, 16*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Check(t, cfg.LogPretty)
	assert.Check(t, cfg.DebugCORS)
	assert.DeepEqual(t, []string{"env:test", "region:eu"}, cfg.Tags())
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"empty world name", func(c *config.Config) { c.WorldName = "" }, "world name"},
		{"zero tick interval", func(c *config.Config) { c.TickIntervalMS = 0 }, "tick interval"},
		{"bad log level", func(c *config.Config) { c.LogLevel = "loud" }, "log level"},
		{"bad profile mode", func(c *config.Config) { c.ProfileMode = "gpu" }, "profile mode"},
	}

	for _, tc := range testCases {
		cfg := config.Default()
		tc.mutate(&cfg)
		assert.ErrorContains(t, cfg.Validate(), tc.wantErr, tc.name)
	}
	assert.NilError(t, config.Default().Validate())
}
