package view

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"

	"geoshow/internal/geom"
	"geoshow/internal/mapcfg"
	"geoshow/internal/source"
)

// recorder is a Backend and Highlighter that keeps every call.
type recorder struct {
	tiles     []TileLayer
	layers    []*Layer
	popups    []string
	closes    int
	views     []geom.LatLng
	zooms     []int
	fits      []geom.Bounds
	tileErr   error
	failIDs   map[string]bool
	panicIDs  map[string]bool
	elements  map[string]bool
	lit       map[string]bool
	scrolled  []string
	highlight []string
}

func newRecorder() *recorder {
	return &recorder{
		failIDs:  map[string]bool{},
		panicIDs: map[string]bool{},
		elements: map[string]bool{},
		lit:      map[string]bool{},
	}
}

func (r *recorder) AddTileLayer(tl TileLayer) error {
	if r.tileErr != nil {
		return r.tileErr
	}
	r.tiles = append(r.tiles, tl)
	return nil
}

func (r *recorder) AddFeatureLayer(l *Layer) error {
	if r.panicIDs[l.ID] {
		panic("boom")
	}
	if r.failIDs[l.ID] {
		return errors.New("cannot draw")
	}
	r.layers = append(r.layers, l)
	r.elements[l.ID] = true
	return nil
}

func (r *recorder) OpenPopup(id string, _ *Popup) { r.popups = append(r.popups, id) }
func (r *recorder) ClosePopup()                   { r.closes++ }

func (r *recorder) SetView(c geom.LatLng, z int) {
	r.views = append(r.views, c)
	r.zooms = append(r.zooms, z)
}

func (r *recorder) FitBounds(b geom.Bounds) { r.fits = append(r.fits, b) }

func (r *recorder) HasElement(id string) bool { return r.elements[id] }

func (r *recorder) SetHighlighted(id string, on bool) {
	r.lit[id] = on
	if on {
		r.highlight = append(r.highlight, id)
	}
}

func (r *recorder) ScrollIntoView(id string) { r.scrolled = append(r.scrolled, id) }

func (r *recorder) litIDs() []string {
	var out []string
	for id, on := range r.lit {
		if on {
			out = append(out, id)
		}
	}
	return out
}

// countingFeatures records whether LoadFeatures was reached.
type countingFeatures struct {
	calls int
	fc    *geojson.FeatureCollection
	err   error
}

func (c *countingFeatures) LoadFeatures(context.Context) (*geojson.FeatureCollection, error) {
	c.calls++
	return c.fc, c.err
}

func photo(lon, lat float64, path string, props map[string]any) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{lon, lat})
	if path != "" {
		f.Properties["image:path"] = path
	}
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}

func collection(fs ...*geojson.Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range fs {
		fc.Append(f)
	}
	return fc
}

func testLogger(buf *bytes.Buffer) zerolog.Logger {
	return zerolog.New(buf).Level(zerolog.DebugLevel)
}

func newTestSession(t *testing.T, cfg *mapcfg.Config, fc *geojson.FeatureCollection) (*Session, *recorder, *bytes.Buffer) {
	t.Helper()
	rec := newRecorder()
	var buf bytes.Buffer
	s := NewSession(rec, rec, testLogger(&buf))
	if err := s.Init(context.Background(), source.StaticConfig{Config: cfg}, source.StaticFeatures{Collection: fc}); err != nil {
		t.Fatalf("init: %v", err)
	}
	return s, rec, &buf
}

func countLines(buf *bytes.Buffer, level string) int {
	n := 0
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, `"level":"`+level+`"`) {
			n++
		}
	}
	return n
}
