// Package config loads the daemon configuration from the environment.
//
// The config package matches struct fields to environment variables through the `config` field tags:
//
//	NUCLEUS_TICK_INTERVAL_MS=50
//
// loads 50 into TickIntervalMS. Variables that are not set keep the defaults from Default.
package config

import (
	"strings"
	"time"

	jlconfig "github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

const (
	DefaultWorldName      = "world"
	DefaultTickIntervalMS = 100
	DefaultDebugPort      = "4040"
	DefaultLogLevel       = "info"
)

var validProfileModes = map[string]bool{"": true, "cpu": true, "mem": true, "trace": true}

type Config struct {
	WorldName string `config:"NUCLEUS_WORLD_NAME"`

	// TickIntervalMS is the time between two ticks of the game loop, in milliseconds.
	TickIntervalMS int `config:"NUCLEUS_TICK_INTERVAL_MS"`

	LogLevel  string `config:"NUCLEUS_LOG_LEVEL"`
	LogPretty bool   `config:"NUCLEUS_LOG_PRETTY"`

	// DebugPort is the port of the debug HTTP server. The server is disabled when empty.
	DebugPort string `config:"NUCLEUS_DEBUG_PORT"`
	// DebugCORS allows cross origin requests to the debug server.
	DebugCORS bool `config:"NUCLEUS_DEBUG_CORS"`

	StatsdAddress string `config:"STATSD_ADDRESS"`
	// StatsdTags is a comma separated list of tags added to every metric.
	StatsdTags string `config:"STATSD_TAGS"`

	TraceEnabled bool `config:"NUCLEUS_TRACE_ENABLED"`
	// ProfileMode is one of "", "cpu", "mem" or "trace".
	ProfileMode string `config:"NUCLEUS_PROFILE"`
	ProfilePath string `config:"NUCLEUS_PROFILE_PATH"`
}

func Default() Config {
	return Config{
		WorldName:      DefaultWorldName,
		TickIntervalMS: DefaultTickIntervalMS,
		LogLevel:       DefaultLogLevel,
		DebugPort:      DefaultDebugPort,
		ProfilePath:    ".",
	}
}

// Load reads the configuration from the environment on top of the defaults and validates it.
func Load() (Config, error) {
	cfg := Default()
	if err := jlconfig.FromEnv().To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to load config from environment")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.WorldName == "" {
		return eris.New("world name must not be empty")
	}
	if c.TickIntervalMS <= 0 {
		return eris.Errorf("tick interval must be positive, got %dms", c.TickIntervalMS)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return eris.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	if !validProfileModes[c.ProfileMode] {
		return eris.Errorf("invalid profile mode %q", c.ProfileMode)
	}
	return nil
}

func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// Tags splits StatsdTags, dropping empty entries.
func (c Config) Tags() []string {
	tags := make([]string, 0)
	for _, t := range strings.Split(c.StatsdTags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
