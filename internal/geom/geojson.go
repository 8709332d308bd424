package geom

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/paulmach/orb/geojson"
)

// ErrNoFeatures is returned when a file parses but yields nothing to draw.
var ErrNoFeatures = errors.New("no features found")

// LoadFile reads a supported vector file into a FeatureCollection.
// Supported: .geojson/.json, .csv, .kml, .wkt
func LoadFile(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".geojson", ".json":
		return ParseGeoJSON(data)
	case ".csv":
		return ParseCSV(data)
	case ".kml":
		return ParseKML(data)
	case ".wkt":
		return ParseWKT(string(data))
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
}

// ParseGeoJSON accepts a FeatureCollection, a single Feature or a bare
// geometry and always returns a FeatureCollection.
func ParseGeoJSON(data []byte) (*geojson.FeatureCollection, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	switch head.Type {
	case "":
		return nil, errors.New("invalid geojson: missing type")
	case "FeatureCollection":
		return ParseFeatureCollection(data)
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(f)
		return fc, nil
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, err
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(geojson.NewFeature(g.Geometry()))
		return fc, nil
	}
}

// ParseFeatureCollection decodes the features of a FeatureCollection one at a
// time. A feature that fails to decode keeps its position with a nil geometry
// and whatever id and properties could still be read, so one bad geometry
// never drops its neighbours.
func ParseFeatureCollection(data []byte) (*geojson.FeatureCollection, error) {
	var doc struct {
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	fc := geojson.NewFeatureCollection()
	for _, raw := range doc.Features {
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			f = placeholderFeature(raw)
		}
		fc.Append(f)
	}
	return fc, nil
}

func placeholderFeature(raw []byte) *geojson.Feature {
	f := &geojson.Feature{Type: "Feature", Properties: geojson.Properties{}}
	var partial struct {
		ID         any            `json:"id"`
		Properties map[string]any `json:"properties"`
	}
	if err := json.Unmarshal(raw, &partial); err != nil {
		return f
	}
	f.ID = partial.ID
	if partial.Properties != nil {
		f.Properties = partial.Properties
	}
	return f
}
