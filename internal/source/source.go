// Package source loads the map configuration and the feature collection a
// view session draws.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"

	"geoshow/internal/geom"
	"geoshow/internal/mapcfg"
)

// ErrStatus is wrapped by HTTP loads that receive a non-2xx response.
var ErrStatus = errors.New("unexpected http status")

type ConfigSource interface {
	LoadConfig(ctx context.Context) (*mapcfg.Config, error)
}

type FeatureSource interface {
	LoadFeatures(ctx context.Context) (*geojson.FeatureCollection, error)
}

// ConfigFile reads map.json (or an equivalent YAML file) from disk.
type ConfigFile struct {
	Path string
}

func (f ConfigFile) LoadConfig(ctx context.Context) (*mapcfg.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	var cfg mapcfg.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	return &cfg, nil
}

// FeatureFile reads .geojson, .json, .csv, .kml or .wkt files.
type FeatureFile struct {
	Path string
}

func (f FeatureFile) LoadFeatures(ctx context.Context) (*geojson.FeatureCollection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fc, err := geom.LoadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", f.Path, err)
	}
	return fc, nil
}

// StaticConfig serves a config built in process.
type StaticConfig struct {
	Config *mapcfg.Config
}

func (s StaticConfig) LoadConfig(context.Context) (*mapcfg.Config, error) {
	if s.Config == nil {
		return nil, errors.New("no map config")
	}
	return s.Config, nil
}

// StaticFeatures serves a collection built in process.
type StaticFeatures struct {
	Collection *geojson.FeatureCollection
}

func (s StaticFeatures) LoadFeatures(context.Context) (*geojson.FeatureCollection, error) {
	if s.Collection == nil {
		return geojson.NewFeatureCollection(), nil
	}
	return s.Collection, nil
}
