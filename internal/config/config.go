// Package config loads the settings of the conform command.
//
// Settings are read from built-in defaults, then an optional YAML file, then
// CONFORM_ environment variables, later sources overriding earlier ones.
// CONFORM_OPENAPI_LINT=true sets openapi.lint.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

const envPrefix = "CONFORM_"

type Config struct {
	Log     LogConfig     `koanf:"log"`
	Output  OutputConfig  `koanf:"output"`
	OpenAPI OpenAPIConfig `koanf:"openapi"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type OutputConfig struct {
	Indent bool `koanf:"indent"`
}

type OpenAPIConfig struct {
	Title   string   `koanf:"title"`
	Version string   `koanf:"version"`
	Lint    bool     `koanf:"lint"`
	Servers []string `koanf:"servers"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"log.level":     "info",
		"log.format":    "text",
		"output.indent": true,
		"openapi.lint":  false,
	}
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// CONFORM_LOG_LEVEL -> log.level
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, envPrefix)), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Logger builds the logger described by the log settings, writing to w.
func (c LogConfig) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}

	switch c.Format {
	case "json":
	case "text", "":
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", c.Format)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
