// Package config loads annotext settings from defaults, a YAML file,
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"annotext/internal/index"
)

// EnvPrefix prefixes environment overrides. Double underscores nest:
// ANNOTEXT__SERVER__PORT -> server.port.
const EnvPrefix = "ANNOTEXT__"

var (
	ErrInvalidPort     = errors.New("invalid server port")
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Config is the complete annotext configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Cache   CacheConfig   `koanf:"cache"`
	Metrics MetricsConfig `koanf:"metrics"`
	Index   index.Schema  `koanf:"index"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// CacheConfig sizes the markup parse cache.
type CacheConfig struct {
	Size int `koanf:"size"`
}

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// AnnotationTypes are the annotation types counted under their own
	// label value. Other types are counted as "other".
	AnnotationTypes []string `koanf:"annotation_types"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Cache: CacheConfig{
			Size: 1024,
		},
		Index: index.Schema{
			DefaultAnalyzer: index.AnalyzerStandard,
			Fields: []index.FieldDef{
				{Name: "id", Type: index.FieldTypeKeyword, Stored: true, Indexed: true},
				{Name: "body", Type: index.FieldTypeAnnotatedText, Stored: true, Indexed: true, Positions: true, MultiValued: true},
			},
		},
	}
}

// FlagMappings maps command-line flag names to configuration keys.
var FlagMappings = map[string]string{
	"port":       "server.port",
	"log-level":  "log.level",
	"log-format": "log.format",
	"cache-size": "cache.size",
	"analyzer":   "index.default_analyzer",
}

// Load builds the configuration with the following priority (highest to
// lowest): flags that were explicitly set, environment variables, the YAML
// file at configPath (skipped when empty), and Defaults.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		if err := k.Load(file.Provider(configPath), koanfyaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if flags != nil {
		var errs []error
		flags.Visit(func(f *pflag.Flag) {
			if key, ok := FlagMappings[f.Name]; ok {
				if err := k.Set(key, f.Value.String()); err != nil {
					errs = append(errs, fmt.Errorf("flag %s: %w", f.Name, err))
				}
			}
		})
		if err := errors.Join(errs...); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	return nil
}

// ParseLogLevel converts a level name to a slog.Level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, level)
	}
}

// NewLogger builds the process logger described by c.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLogLevel(c.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
