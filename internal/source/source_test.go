package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"geoshow/internal/feature"
	"geoshow/internal/mapcfg"
)

func newServer(t *testing.T, mapJSON, features string, status int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(MapConfigPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(mapJSON))
	})
	mux.HandleFunc(FeaturesPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(features))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTP_Loads(t *testing.T) {
	srv := newServer(t,
		`{"provider":"leaflet","tile_url":"https://tile.openstreetmap.org/{z}/{x}/{y}.png","label_properties":["name"]}`,
		`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}}]}`,
		http.StatusOK)
	src := NewHTTP(srv.URL + "/")

	cfg, err := src.LoadConfig(context.Background())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Provider != mapcfg.ProviderLeaflet || len(cfg.LabelProperties) != 1 {
		t.Fatalf("cfg=%+v", cfg)
	}
	fc, err := src.LoadFeatures(context.Background())
	if err != nil {
		t.Fatalf("features: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("features=%d", len(fc.Features))
	}
}

func TestHTTP_BadGeometryIsolated(t *testing.T) {
	srv := newServer(t, `{"provider":"leaflet"}`,
		`{"type":"FeatureCollection","features":[
			{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"image:path":"a.jpg"}},
			{"type":"Feature","geometry":{"type":"Circle","coordinates":[0,0]},"properties":{"image:path":"b.jpg"}},
			{"type":"Feature","geometry":{"type":"Point","coordinates":[3,4]},"properties":{"image:path":"c.jpg"}}
		]}`,
		http.StatusOK)
	fc, err := NewHTTP(srv.URL).LoadFeatures(context.Background())
	if err != nil {
		t.Fatalf("features: %v", err)
	}
	if len(fc.Features) != 3 {
		t.Fatalf("features=%d want 3", len(fc.Features))
	}
	if fc.Features[1].Geometry != nil || fc.Features[1].Properties["image:path"] != "b.jpg" {
		t.Fatalf("bad feature=%+v", fc.Features[1])
	}
	if fc.Features[0].Geometry == nil || fc.Features[2].Geometry == nil {
		t.Fatalf("good features lost their geometry")
	}
}

func TestHTTP_Status(t *testing.T) {
	srv := newServer(t, `oops`, `{}`, http.StatusInternalServerError)
	_, err := NewHTTP(srv.URL).LoadConfig(context.Background())
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("err=%v want ErrStatus", err)
	}
}

func TestHTTP_NotFeatureCollection(t *testing.T) {
	srv := newServer(t, `{}`, `{"type":"Feature","geometry":null,"properties":{}}`, http.StatusOK)
	_, err := NewHTTP(srv.URL).LoadFeatures(context.Background())
	if !errors.Is(err, feature.ErrNotFeatureCollection) {
		t.Fatalf("err=%v want ErrNotFeatureCollection", err)
	}
}

func TestHTTP_InvalidJSON(t *testing.T) {
	srv := newServer(t, `{"provider":`, `{}`, http.StatusOK)
	if _, err := NewHTTP(srv.URL).LoadConfig(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "map.yaml")
	if err := os.WriteFile(cfgPath, []byte("provider: protomaps\ntile_url: api://key\nprotomaps:\n  theme: dark\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := ConfigFile{Path: cfgPath}.LoadConfig(context.Background())
	if err != nil {
		t.Fatalf("config file: %v", err)
	}
	if cfg.Provider != mapcfg.ProviderProtomaps || cfg.Theme() != "dark" {
		t.Fatalf("cfg=%+v", cfg)
	}

	csvPath := filepath.Join(dir, "points.csv")
	if err := os.WriteFile(csvPath, []byte("lat,lon,name\n1,2,a\n3,4,b\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fc, err := FeatureFile{Path: csvPath}.LoadFeatures(context.Background())
	if err != nil {
		t.Fatalf("feature file: %v", err)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("features=%d", len(fc.Features))
	}

	if _, err := (FeatureFile{Path: filepath.Join(dir, "x.shp")}).LoadFeatures(context.Background()); err == nil {
		t.Fatalf("expected unsupported type error")
	}
}
