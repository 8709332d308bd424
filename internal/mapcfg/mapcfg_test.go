package mapcfg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDecode(t *testing.T) {
	cfg, err := Decode([]byte(`{
		"provider":"protomaps",
		"tile_url":"/tiles/{z}/{x}/{y}.mvt",
		"protomaps":{"theme":"black"},
		"style":{"color":"#ff0000","weight":2},
		"point_style":{"radius":6,"fillColor":"#00ff00"},
		"label_properties":["name","date"]
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Provider != ProviderProtomaps || !cfg.Provider.Known() {
		t.Fatalf("provider=%q", cfg.Provider)
	}
	if cfg.Theme() != "black" {
		t.Fatalf("theme=%q", cfg.Theme())
	}
	if cfg.Style == nil || cfg.Style.Color != "#ff0000" || cfg.Style.Weight == nil || *cfg.Style.Weight != 2 {
		t.Fatalf("style=%+v", cfg.Style)
	}
	if cfg.PointStyle == nil || cfg.PointStyle.Radius == nil || *cfg.PointStyle.Radius != 6 {
		t.Fatalf("point style=%+v", cfg.PointStyle)
	}
	if len(cfg.LabelProperties) != 2 || cfg.LabelProperties[1] != "date" {
		t.Fatalf("labels=%v", cfg.LabelProperties)
	}
}

func TestProviderKnown(t *testing.T) {
	for _, p := range []Provider{"osm-custom", "", "Leaflet"} {
		if p.Known() {
			t.Fatalf("%q should be unknown", p)
		}
	}
}

func TestDefaultTheme(t *testing.T) {
	if got := Default().Theme(); got != DefaultProtomapsTheme {
		t.Fatalf("theme=%q", got)
	}
}

func TestUnmarshalStyle(t *testing.T) {
	s, err := UnmarshalStyle(`{"color":"red","fill":false}`)
	if err != nil {
		t.Fatalf("inline: %v", err)
	}
	if s.Color != "red" || s.Fill == nil || *s.Fill {
		t.Fatalf("inline style=%+v", s)
	}

	path := filepath.Join(t.TempDir(), "style.yaml")
	if err := os.WriteFile(path, []byte("color: blue\nweight: 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err = UnmarshalStyle(path)
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if s.Color != "blue" || s.Weight == nil || *s.Weight != 3 {
		t.Fatalf("file style=%+v", s)
	}

	if _, err := UnmarshalStyle(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestResolveProtomapsURL(t *testing.T) {
	got, local, err := ResolveProtomapsURL("api://abc123")
	if err != nil || local {
		t.Fatalf("api: %v local=%v", err, local)
	}
	if got != "https://api.protomaps.com/tiles/v3/{z}/{x}/{y}.mvt?key=abc123" {
		t.Fatalf("api url=%q", got)
	}
	if _, local, err := ResolveProtomapsURL("file:///data/world.pmtiles"); err != nil || !local {
		t.Fatalf("file: %v local=%v", err, local)
	}
	if _, _, err := ResolveProtomapsURL("api://"); err == nil {
		t.Fatalf("expected error for missing key")
	}
}
