// Package config loads geoshow settings from defaults, an optional YAML
// file, GEOSHOW_* environment variables and command line flags, in that
// order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"geoshow/internal/mapcfg"
)

const (
	EnvPrefix      = "GEOSHOW_"
	ConfigPathEnv  = "GEOSHOW_CONFIG"
	DefaultLogFile = "geoshow.log"
)

type Config struct {
	Log    LogConfig    `koanf:"log"`
	Map    MapConfig    `koanf:"map"`
	Server ServerConfig `koanf:"server"`
	Crawl  CrawlConfig  `koanf:"crawl"`
}

type LogConfig struct {
	Level   string `koanf:"level" validate:"oneof=debug info warn error"`
	Console bool   `koanf:"console"`
	File    string `koanf:"file"`
}

// MapConfig holds the inputs for map.json. Provider is passed through
// unchecked so the viewer can report providers it cannot draw.
type MapConfig struct {
	Provider        string   `koanf:"provider" validate:"required"`
	TileURL         string   `koanf:"tile_url" validate:"required"`
	ProtomapsTheme  string   `koanf:"protomaps_theme"`
	Style           string   `koanf:"style"`
	PointStyle      string   `koanf:"point_style"`
	LabelProperties []string `koanf:"label_properties"`
}

type ServerConfig struct {
	Host        string   `koanf:"host"`
	Port        int      `koanf:"port" validate:"min=0,max=65535"`
	CORSOrigins []string `koanf:"cors_origins"`
}

type CrawlConfig struct {
	Workers int `koanf:"workers" validate:"min=1,max=256"`
}

func defaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
			File:  DefaultLogFile,
		},
		Map: MapConfig{
			Provider:       string(mapcfg.ProviderLeaflet),
			TileURL:        mapcfg.DefaultTileURL,
			ProtomapsTheme: mapcfg.DefaultProtomapsTheme,
		},
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Crawl: CrawlConfig{
			Workers: 8,
		},
	}
}

// Options selects the config file and the flag values that were set
// explicitly. Override keys use koanf paths such as "server.port".
type Options struct {
	Path      string
	Overrides map[string]any
}

func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := opts.Path
	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for key, v := range opts.Overrides {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// GEOSHOW_MAP_TILE_URL -> map.tile_url
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

var sliceConfigPaths = []string{
	"map.label_properties",
	"server.cors_origins",
}

// env values arrive as comma separated strings
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	return validate.Struct(c)
}

// MapConfig converts the settings into the map.json document. Styles are
// read from inline JSON or from files; protomaps api:// URLs are expanded.
func (c *Config) MapConfig() (*mapcfg.Config, error) {
	out := &mapcfg.Config{
		Provider:        mapcfg.Provider(c.Map.Provider),
		TileURL:         c.Map.TileURL,
		LabelProperties: c.Map.LabelProperties,
	}
	if c.Map.Style != "" {
		s, err := mapcfg.UnmarshalStyle(c.Map.Style)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal style: %w", err)
		}
		out.Style = s
	}
	if c.Map.PointStyle != "" {
		s, err := mapcfg.UnmarshalStyle(c.Map.PointStyle)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal point style: %w", err)
		}
		out.PointStyle = s
	}
	if out.Provider == mapcfg.ProviderProtomaps {
		out.Protomaps = &mapcfg.ProtomapsConfig{Theme: c.Map.ProtomapsTheme}
		// file:// archives stay as given; the server maps them onto /tiles/
		resolved, _, err := mapcfg.ResolveProtomapsURL(out.TileURL)
		if err != nil {
			return nil, err
		}
		out.TileURL = resolved
	}
	return out, nil
}

// Addr is the listen address for the server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
