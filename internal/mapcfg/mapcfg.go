// Package mapcfg describes the map provider configuration served as
// map.json and consumed by the view session.
package mapcfg

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

type Provider string

const (
	ProviderLeaflet   Provider = "leaflet"
	ProviderProtomaps Provider = "protomaps"
)

const (
	DefaultTileURL        = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultProtomapsTheme = "white"
	ProtomapsAPITileURL   = "https://api.protomaps.com/tiles/v3/{z}/{x}/{y}.mvt?key={key}"
	DefaultMaxZoom        = 19
)

// Known reports whether p is a provider the view can draw tiles for.
func (p Provider) Known() bool {
	return p == ProviderLeaflet || p == ProviderProtomaps
}

// Style is a subset of Leaflet path options. Unset fields keep the backend
// default.
type Style struct {
	Color       string   `json:"color,omitempty" yaml:"color,omitempty"`
	Weight      *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	Opacity     *float64 `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	FillColor   string   `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
	FillOpacity *float64 `json:"fillOpacity,omitempty" yaml:"fillOpacity,omitempty"`
	Radius      *float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
	DashArray   string   `json:"dashArray,omitempty" yaml:"dashArray,omitempty"`
	Fill        *bool    `json:"fill,omitempty" yaml:"fill,omitempty"`
	Stroke      *bool    `json:"stroke,omitempty" yaml:"stroke,omitempty"`
}

type ProtomapsConfig struct {
	Theme string `json:"theme" yaml:"theme"`
}

// Config is the map.json document. It is not modified after load.
type Config struct {
	Provider        Provider         `json:"provider" yaml:"provider"`
	TileURL         string           `json:"tile_url" yaml:"tile_url"`
	Protomaps       *ProtomapsConfig `json:"protomaps,omitempty" yaml:"protomaps,omitempty"`
	Style           *Style           `json:"style,omitempty" yaml:"style,omitempty"`
	PointStyle      *Style           `json:"point_style,omitempty" yaml:"point_style,omitempty"`
	LabelProperties []string         `json:"label_properties,omitempty" yaml:"label_properties,omitempty"`
}

// Default returns a leaflet config over OpenStreetMap tiles.
func Default() *Config {
	return &Config{Provider: ProviderLeaflet, TileURL: DefaultTileURL}
}

// Decode parses a map.json document.
func Decode(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode map config: %w", err)
	}
	return &cfg, nil
}

// Encode renders cfg as map.json.
func (c *Config) Encode() ([]byte, error) {
	return json.Marshal(c)
}

// Theme returns the protomaps theme, falling back to the default.
func (c *Config) Theme() string {
	if c.Protomaps == nil || c.Protomaps.Theme == "" {
		return DefaultProtomapsTheme
	}
	return c.Protomaps.Theme
}

// UnmarshalStyle reads a style given either inline as JSON or as a path to a
// YAML or JSON file.
func UnmarshalStyle(v string) (*Style, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, errors.New("empty style")
	}
	data := []byte(v)
	if !strings.HasPrefix(v, "{") {
		b, err := os.ReadFile(v)
		if err != nil {
			return nil, fmt.Errorf("read style %s: %w", v, err)
		}
		data = b
	}
	// JSON is a subset of YAML
	var s Style
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse style: %w", err)
	}
	return &s, nil
}

// ResolveProtomapsURL rewrites api://KEY into the Protomaps API tile URL.
// file:// URIs are returned unchanged with local=true so the caller can
// serve the archive itself.
func ResolveProtomapsURL(uri string) (resolved string, local bool, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", false, fmt.Errorf("parse protomaps tile url: %w", err)
	}
	switch u.Scheme {
	case "api":
		if u.Host == "" {
			return "", false, errors.New("protomaps api url is missing a key")
		}
		return strings.Replace(ProtomapsAPITileURL, "{key}", u.Host, 1), false, nil
	case "file":
		return uri, true, nil
	default:
		return uri, false, nil
	}
}
