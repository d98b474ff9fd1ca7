package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ZanzyTHEbar/dagscale/internal/qty"
	"github.com/ZanzyTHEbar/dagscale/internal/utils"
)

// EnvPrefix prefixes every environment override, e.g. DAGSCALE_SYSTEM_LOG_LEVEL.
const EnvPrefix = "DAGSCALE_"

// Config holds all configuration settings for dagscale.
type Config struct {
	System   SystemConfig   `json:"system" envPrefix:"SYSTEM_"`
	Block    BlockConfig    `json:"block" envPrefix:"BLOCK_"`
	Report   ReportConfig   `json:"report" envPrefix:"REPORT_"`
	EventBus EventBusConfig `json:"eventBus" envPrefix:"EVENTBUS_"`
	Watch    WatchConfig    `json:"watch" envPrefix:"WATCH_"`
}

// SystemConfig holds general system settings.
type SystemConfig struct {
	LogLevel  string `json:"logLevel" env:"LOG_LEVEL"`   // trace, debug, info, warn, error
	LogFormat string `json:"logFormat" env:"LOG_FORMAT"` // console, text or json
}

// BlockConfig controls identity generation for tasks declared without an id.
type BlockConfig struct {
	IDStrategy string `json:"idStrategy" env:"ID_STRATEGY"` // sequential or uuid
	IDPrefix   string `json:"idPrefix" env:"ID_PREFIX"`
}

// ReportConfig holds settings for analysis output.
type ReportConfig struct {
	Unit string `json:"unit" env:"UNIT"` // any registered time unit symbol
}

// EventBusConfig holds settings for the event bus.
type EventBusConfig struct {
	DefaultBufferSize int `json:"defaultBufferSize" env:"DEFAULT_BUFFER_SIZE"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	DebounceMillis int `json:"debounceMillis" env:"DEBOUNCE_MILLIS"`
}

// Debounce is DebounceMillis as a duration.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMillis) * time.Millisecond
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		System: SystemConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
		Block: BlockConfig{
			IDStrategy: "sequential",
			IDPrefix:   "task",
		},
		Report: ReportConfig{
			Unit: "s",
		},
		EventBus: EventBusConfig{
			DefaultBufferSize: 64,
		},
		Watch: WatchConfig{
			DebounceMillis: 200,
		},
	}
}

// Load builds the effective configuration: defaults, then the JSON file at
// filePath if there is one, then environment overrides. The result is
// validated.
func Load(filePath string) (*Config, error) {
	config, err := LoadFromFile(filePath)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a JSON file over the defaults. An
// empty path or a missing file yields the defaults.
func LoadFromFile(filePath string) (*Config, error) {
	config := DefaultConfig()
	if filePath == "" {
		return config, nil
	}

	data, err := os.ReadFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", filePath).Msg("config file not found, using defaults")
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := json.Unmarshal(data, config, json.RejectUnknownMembers(true)); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", filePath, err)
	}

	log.Debug().Str("path", filePath).Msg("loaded configuration")
	return config, nil
}

// ApplyEnv overrides fields from DAGSCALE_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("error reading environment: %w", err)
	}
	return nil
}

// SaveToFile saves the configuration to a JSON file, creating its directory.
func (c *Config) SaveToFile(filePath string) error {
	data, err := json.Marshal(c, jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := utils.CreateDirIfNotExists(filepath.Dir(filePath)); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	if err := os.WriteFile(filePath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	log.Debug().Str("path", filePath).Msg("saved configuration")
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.System.LogLevel); err != nil {
		return fmt.Errorf("logLevel %q is not a log level", c.System.LogLevel)
	}
	switch c.System.LogFormat {
	case "console", "text", "json":
	default:
		return fmt.Errorf("logFormat must be console, text or json, got %q", c.System.LogFormat)
	}

	switch c.Block.IDStrategy {
	case "sequential":
		if c.Block.IDPrefix == "" {
			return fmt.Errorf("idPrefix is required for sequential identities")
		}
	case "uuid":
	default:
		return fmt.Errorf("idStrategy must be sequential or uuid, got %q", c.Block.IDStrategy)
	}

	u, ok := qty.Lookup(c.Report.Unit)
	if !ok {
		return fmt.Errorf("report unit %q is not a known unit", c.Report.Unit)
	}
	if u.Dimension() != qty.Time {
		return fmt.Errorf("report unit %q is not a time unit", c.Report.Unit)
	}

	if c.EventBus.DefaultBufferSize < 1 {
		return fmt.Errorf("defaultBufferSize must be at least 1")
	}
	if c.Watch.DebounceMillis < 0 {
		return fmt.Errorf("debounceMillis cannot be negative")
	}

	return nil
}
