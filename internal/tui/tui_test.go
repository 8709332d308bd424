package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"

	"geoshow/internal/geom"
	"geoshow/internal/mapcfg"
	"geoshow/internal/source"
)

func photoFC() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, p := range []orb.Point{{-122.4, 37.7}, {-122.5, 37.8}, {-122.3, 37.6}} {
		f := geojson.NewFeature(p)
		f.Properties["image:path"] = []string{"a.jpg", "b.jpg", "c.jpg"}[i]
		f.Properties["name"] = []string{"one", "two", "three"}[i]
		fc.Append(f)
	}
	return fc
}

// run drives the model through its load commands.
func run(t *testing.T, cfg *mapcfg.Config, fc *geojson.FeatureCollection) Model {
	t.Helper()
	m := New(Options{
		Context:  context.Background(),
		Log:      zerolog.Nop(),
		Config:   source.StaticConfig{Config: cfg},
		Features: source.StaticFeatures{Collection: fc},
	})
	tm, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = tm.(Model)
	cmd := m.Init()
	for cmd != nil {
		tm, cmd = m.Update(cmd())
		m = tm.(Model)
	}
	return m
}

func key(m Model, k string) Model {
	var msg tea.KeyMsg
	switch k {
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	tm, _ := m.Update(msg)
	return tm.(Model)
}

func TestModel_LoadsAndFits(t *testing.T) {
	m := run(t, mapcfg.Default(), photoFC())
	if !m.loaded || m.failed {
		t.Fatalf("loaded=%v failed=%v status=%q", m.loaded, m.failed, m.status)
	}
	if len(m.c.layers) != 3 || len(m.c.list.Items()) != 3 {
		t.Fatalf("layers=%d items=%d", len(m.c.layers), len(m.c.list.Items()))
	}
	if m.c.tile == nil || m.c.tile.MaxZoom != 19 {
		t.Fatalf("tile=%+v", m.c.tile)
	}
	for _, dr := range m.c.layers {
		p := dr.data.Points[0]
		x, y := m.c.cam.toScreen(geom.LatLng{Lat: p[1], Lng: p[0]})
		if x < 0 || y < 0 || x >= m.c.cam.w || y >= m.c.cam.h {
			t.Fatalf("%s off screen at %d,%d (%dx%d)", dr.layer.ID, x, y, m.c.cam.w, m.c.cam.h)
		}
	}
	if out := m.View(); !strings.Contains(out, "geoshow") {
		t.Fatalf("view missing header")
	}
}

func TestModel_UnknownProvider(t *testing.T) {
	m := run(t, &mapcfg.Config{Provider: "osm-custom"}, photoFC())
	if !m.failed || m.loaded {
		t.Fatalf("failed=%v loaded=%v", m.failed, m.loaded)
	}
	if m.c.tile != nil || len(m.c.layers) != 0 {
		t.Fatalf("tile=%v layers=%d", m.c.tile, len(m.c.layers))
	}
	if !strings.Contains(m.status, "unknown map provider") {
		t.Fatalf("status=%q", m.status)
	}
}

func TestModel_SelectionHighlightsListAndOpensPopup(t *testing.T) {
	m := run(t, mapcfg.Default(), photoFC())

	m = key(m, "n")
	m = key(m, "n")
	if id, ok := m.session.Selection().Current(); !ok || id != "show-2" {
		t.Fatalf("current=%q,%v", id, ok)
	}
	lit := 0
	for _, it := range m.c.list.Items() {
		if it.(featureItem).lit {
			lit++
		}
	}
	if lit != 1 || !m.c.list.Items()[1].(featureItem).lit {
		t.Fatalf("lit items=%d", lit)
	}
	if m.c.list.Index() != 1 {
		t.Fatalf("list index=%d", m.c.list.Index())
	}
	if m.c.popupID != "show-2" || m.c.popup == nil {
		t.Fatalf("popup=%q", m.c.popupID)
	}
	if !strings.Contains(m.View(), "/photos/b.jpg") {
		t.Fatalf("popup not rendered")
	}

	m = key(m, "esc")
	if _, ok := m.session.Selection().Current(); ok {
		t.Fatalf("selection survived esc")
	}
	if m.c.popup != nil || m.c.selected != "" {
		t.Fatalf("popup=%v selected=%q", m.c.popup, m.c.selected)
	}
}

func TestModel_Goto(t *testing.T) {
	m := run(t, mapcfg.Default(), photoFC())
	m = key(m, "g")
	if !m.gotoMode {
		t.Fatalf("goto mode not entered")
	}
	m = key(m, "3")
	m = key(m, "enter")
	if id, _ := m.session.Selection().Current(); id != "show-3" {
		t.Fatalf("current=%q status=%q", id, m.status)
	}
}

func TestModel_ClickHitsFeature(t *testing.T) {
	m := run(t, mapcfg.Default(), photoFC())
	lay := m.layout()
	p := m.c.layers[0].data.Points[0]
	mx, my := m.c.cam.toScreen(geom.LatLng{Lat: p[1], Lng: p[0]})
	tm, _ := m.Update(tea.MouseMsg{X: lay.mapX + mx/2, Y: lay.mapY + my/4, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = tm.(Model)
	if id, _ := m.session.Selection().Current(); id != "show-1" {
		t.Fatalf("current=%q status=%q", id, m.status)
	}
}

func TestModel_Attrs(t *testing.T) {
	m := run(t, mapcfg.Default(), photoFC())
	m = key(m, "n")
	m = key(m, "a")
	if !m.showAttrs {
		t.Fatalf("attrs hidden: %q", m.status)
	}
	cols := m.tbl.Columns()
	if len(cols) != 3 || cols[1].Title != "image:path" || cols[2].Title != "name" {
		t.Fatalf("columns=%v", cols)
	}
	if m.tbl.Cursor() != 0 {
		t.Fatalf("cursor=%d", m.tbl.Cursor())
	}
}

func TestCamera_SinglePointView(t *testing.T) {
	c := newCanvas()
	c.SetView(geom.LatLng{Lat: 48.85, Lng: 2.35}, 12)
	if c.pendingView == nil {
		t.Fatalf("view not deferred before resize")
	}
	c.resize(80, 20)
	if c.cam.zoom != 12 {
		t.Fatalf("zoom=%d", c.cam.zoom)
	}
	x, y := c.cam.toScreen(geom.LatLng{Lat: 48.85, Lng: 2.35})
	if abs(x-80) > 1 || abs(y-40) > 1 {
		t.Fatalf("center at %d,%d", x, y)
	}
	got := c.cam.center()
	if d := got.Lat - 48.85; d > 1e-6 || d < -1e-6 {
		t.Fatalf("center=%v", got)
	}
}

func TestCamera_TileURL(t *testing.T) {
	c := newCamera()
	c.resize(100, 100)
	c.setView(geom.LatLng{Lat: 10, Lng: 10}, 1)
	if got := c.tileURL(mapcfg.DefaultTileURL); got != "https://tile.openstreetmap.org/1/1/0.png" {
		t.Fatalf("tile url=%q", got)
	}
}

func TestBraille(t *testing.T) {
	b := newBrailleBuf(2, 1)
	b.setPixel(0, 0)
	b.setPixel(1, 3)
	b.setPixel(-1, 0)
	b.setPixel(4, 0)
	if b.m[0][0] != 0x81 {
		t.Fatalf("mask=%x", b.m[0][0])
	}
	if got := b.toLines()[0]; got != "⢁ " {
		t.Fatalf("line=%q", got)
	}
}
