package geom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

// ParseWKT reads one WKT geometry per non-empty line and returns a feature
// for each. Lines starting with '#' are skipped.
func ParseWKT(s string) (*geojson.FeatureCollection, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("empty wkt")
	}
	fc := geojson.NewFeatureCollection()
	for n, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		g, err := wkt.Unmarshal(line)
		if err != nil {
			return nil, fmt.Errorf("wkt line %d: %w", n+1, err)
		}
		fc.Append(geojson.NewFeature(g))
	}
	if len(fc.Features) == 0 {
		return nil, errors.New("wkt: no geometries parsed")
	}
	return fc, nil
}
