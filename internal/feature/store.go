// Package feature holds the decoded feature collection and the synthetic
// show_id assigned to each feature.
package feature

import (
	"errors"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"geoshow/internal/geom"
)

// ImagePathProperty names the property holding a photo path relative to the
// photo server prefix.
const ImagePathProperty = "image:path"

// ErrNotFeatureCollection is returned by Decode for any document whose type
// is not FeatureCollection.
var ErrNotFeatureCollection = errors.New("not a FeatureCollection")

// Record pairs a feature with its show_id.
type Record struct {
	ID      string
	Feature *geojson.Feature
}

// Geometry returns the feature geometry, nil when absent.
func (r *Record) Geometry() orb.Geometry {
	if r == nil || r.Feature == nil {
		return nil
	}
	return r.Feature.Geometry
}

// Property returns the raw property value and whether it was present.
func (r *Record) Property(name string) (any, bool) {
	if r == nil || r.Feature == nil || r.Feature.Properties == nil {
		return nil, false
	}
	v, ok := r.Feature.Properties[name]
	return v, ok
}

// ImagePath returns the image:path property, or "" when it is missing or not
// a string.
func (r *Record) ImagePath() string {
	v, ok := r.Property(ImagePathProperty)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Store is the ordered, indexed set of records. Property bags are never
// modified; ids live in the index.
type Store struct {
	records []*Record
	byID    map[string]*Record
}

// ID returns the show_id for the feature at zero-based position i.
func ID(i int) string {
	return "show-" + strconv.Itoa(i+1)
}

// NewStore assigns show-1..show-N in input order.
func NewStore(fc *geojson.FeatureCollection) *Store {
	if fc == nil {
		fc = geojson.NewFeatureCollection()
	}
	s := &Store{
		records: make([]*Record, len(fc.Features)),
		byID:    make(map[string]*Record, len(fc.Features)),
	}
	for i, f := range fc.Features {
		r := &Record{ID: ID(i), Feature: f}
		s.records[i] = r
		s.byID[r.ID] = r
	}
	return s
}

// DecodeCollection parses a GeoJSON FeatureCollection. Any other document
// type is ErrNotFeatureCollection. Features whose geometry cannot be decoded
// are kept with a nil geometry so show_ids still follow array position.
func DecodeCollection(data []byte) (*geojson.FeatureCollection, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	if head.Type != "FeatureCollection" {
		return nil, fmt.Errorf("decode features: type %q: %w", head.Type, ErrNotFeatureCollection)
	}
	fc, err := geom.ParseFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	return fc, nil
}

// Records returns the records in input order. The slice must not be modified.
func (s *Store) Records() []*Record { return s.records }

func (s *Store) Len() int { return len(s.records) }

// Get looks up a record by show_id.
func (s *Store) Get(id string) (*Record, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// Bounds derives the bounding box over every feature geometry. Features
// without a geometry are skipped; geometries that cannot be walked are left
// out and reported in the error.
func (s *Store) Bounds() (geom.Bounds, error) {
	gs := make([]orb.Geometry, 0, len(s.records))
	for _, r := range s.records {
		if g := r.Geometry(); g != nil {
			gs = append(gs, g)
		}
	}
	return geom.DeriveBounds(gs...)
}
