package tui

import (
	"fmt"
	"path"

	list "github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"geoshow/internal/geom"
	"geoshow/internal/view"
)

// drawable is a feature layer prepared for the braille renderer.
type drawable struct {
	layer *view.Layer
	data  geom.Data
	index int // position in the sidebar list
}

// canvas is the terminal map. It implements view.Backend and
// view.Highlighter; the Model holds it by pointer so session callbacks made
// during Update land in the same state the next View reads.
type canvas struct {
	cam      camera
	tile     *view.TileLayer
	layers   []*drawable
	byID     map[string]*drawable
	popupID  string
	popup    *view.Popup
	selected string

	// fit requested before the first window size arrived
	pendingFit  *geom.Bounds
	pendingView *geom.LatLng
	pendingZoom int
	home        func()

	showPoints bool
	showLines  bool
	showPolys  bool

	list list.Model
}

func newCanvas() *canvas {
	d := list.NewDefaultDelegate()
	d.ShowDescription = true
	d.SetSpacing(0)
	l := list.New(nil, d, 0, 0)
	l.Title = "Photos"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	return &canvas{
		cam:        newCamera(),
		byID:       map[string]*drawable{},
		showPoints: true,
		showLines:  true,
		showPolys:  true,
		list:       l,
	}
}

func (c *canvas) AddTileLayer(tl view.TileLayer) error {
	if tl.URL == "" {
		return fmt.Errorf("tile layer for %s has no url", tl.Provider)
	}
	if tl.MaxZoom > 0 {
		c.cam.maxZoom = tl.MaxZoom
	}
	c.tile = &tl
	return nil
}

func (c *canvas) AddFeatureLayer(l *view.Layer) error {
	if _, dup := c.byID[l.ID]; dup {
		return fmt.Errorf("duplicate layer %s", l.ID)
	}
	d, err := geom.Flatten(l.Record.Geometry())
	if err != nil {
		return err
	}
	if d.Empty() {
		return fmt.Errorf("geometry has no coordinates")
	}
	dr := &drawable{layer: l, data: d, index: len(c.list.Items())}
	c.layers = append(c.layers, dr)
	c.byID[l.ID] = dr
	c.list.InsertItem(dr.index, newFeatureItem(l))
	return nil
}

func (c *canvas) OpenPopup(id string, p *view.Popup) {
	c.popupID, c.popup = id, p
}

func (c *canvas) ClosePopup() {
	c.popupID, c.popup = "", nil
}

func (c *canvas) SetView(center geom.LatLng, zoom int) {
	if !c.cam.ready() {
		c.pendingView, c.pendingZoom, c.pendingFit = &center, zoom, nil
		return
	}
	c.cam.setView(center, zoom)
	c.home = func() { c.cam.setView(center, zoom) }
}

func (c *canvas) FitBounds(b geom.Bounds) {
	if !c.cam.ready() {
		c.pendingFit, c.pendingView = &b, nil
		return
	}
	c.cam.fit(b)
	c.home = func() { c.cam.fit(b) }
}

func (c *canvas) HasElement(id string) bool {
	_, ok := c.byID[id]
	return ok
}

func (c *canvas) SetHighlighted(id string, on bool) {
	dr, ok := c.byID[id]
	if !ok {
		return
	}
	if on {
		c.selected = id
	} else if c.selected == id {
		c.selected = ""
	}
	if it, ok := c.list.Items()[dr.index].(featureItem); ok {
		it.lit = on
		c.list.SetItem(dr.index, it)
	}
}

func (c *canvas) ScrollIntoView(id string) {
	if dr, ok := c.byID[id]; ok && c.list.FilterState() == list.Unfiltered {
		c.list.Select(dr.index)
	}
}

// resize applies the map area in cells and replays a fit requested before
// the size was known.
func (c *canvas) resize(wCells, hCells int) {
	c.cam.resize(wCells*2, hCells*4)
	switch {
	case c.pendingFit != nil:
		c.FitBounds(*c.pendingFit)
		c.pendingFit = nil
	case c.pendingView != nil:
		c.SetView(*c.pendingView, c.pendingZoom)
		c.pendingView = nil
	}
}

func (c *canvas) resetView() bool {
	if c.home == nil {
		return false
	}
	c.home()
	return true
}

// hit returns the topmost visible layer within reach of micro pixel mx,my.
func (c *canvas) hit(mx, my int) *view.Layer {
	const reach2 = 9
	at := c.cam.fromScreen(mx, my)
	for i := len(c.layers) - 1; i >= 0; i-- {
		dr := c.layers[i]
		if c.showPoints {
			for _, p := range dr.data.Points {
				sx, sy := c.cam.toScreen(geom.LatLng{Lat: p[1], Lng: p[0]})
				dx, dy := sx-mx, sy-my
				if dx*dx+dy*dy <= reach2+markerRadius(dr.layer)*markerRadius(dr.layer) {
					return dr.layer
				}
			}
		}
		if c.showLines {
			for _, ls := range dr.data.Lines {
				if c.nearPath(ls, mx, my, reach2, false) {
					return dr.layer
				}
			}
		}
		if c.showPolys {
			for _, poly := range dr.data.Polygons {
				if len(poly) == 0 {
					continue
				}
				op := make(orb.Polygon, 0, len(poly))
				for _, r := range poly {
					op = append(op, toRing(r))
				}
				if planar.PolygonContains(op, orb.Point{at.Lng, at.Lat}) || c.nearPath(poly[0], mx, my, reach2, true) {
					return dr.layer
				}
			}
		}
	}
	return nil
}

func (c *canvas) nearPath(pts [][2]float64, mx, my int, reach2 float64, closed bool) bool {
	if len(pts) == 0 {
		return false
	}
	prevX, prevY := c.cam.toScreen(geom.LatLng{Lat: pts[0][1], Lng: pts[0][0]})
	if len(pts) == 1 {
		return segDist2(mx, my, prevX, prevY, prevX, prevY) <= reach2
	}
	n := len(pts)
	if closed {
		n++
	}
	for i := 1; i < n; i++ {
		p := pts[i%len(pts)]
		x, y := c.cam.toScreen(geom.LatLng{Lat: p[1], Lng: p[0]})
		if segDist2(mx, my, prevX, prevY, x, y) <= reach2 {
			return true
		}
		prevX, prevY = x, y
	}
	return false
}

// featureItem is one sidebar row. lit marks the selected feature.
type featureItem struct {
	id    string
	title string
	kind  string
	lit   bool
}

func newFeatureItem(l *view.Layer) featureItem {
	title := l.ID
	if p := l.Record.ImagePath(); p != "" {
		title = path.Base(p)
	} else if v, ok := l.Record.Property("name"); ok {
		if s := view.FormatValue(v); s != "" {
			title = s
		}
	}
	return featureItem{id: l.ID, title: title, kind: l.Kind().String()}
}

func (f featureItem) Title() string {
	if f.lit {
		return selectedStyle.Render("● " + f.title)
	}
	return "  " + f.title
}
func (f featureItem) Description() string { return "  " + f.id + " · " + f.kind }
func (f featureItem) FilterValue() string { return f.id + " " + f.title }

func markerRadius(l *view.Layer) int {
	if l.Marker != nil && l.Marker.Radius != nil {
		// leaflet radius is in screen pixels; a micro pixel is about two
		return max(1, int(*l.Marker.Radius/2))
	}
	return 1
}

func layerColor(l *view.Layer, fallback lipgloss.TerminalColor) lipgloss.TerminalColor {
	st := l.Style
	if l.Kind() == view.KindPoint {
		st = l.Marker
	}
	if st == nil {
		return fallback
	}
	if st.Color != "" {
		return lipgloss.Color(st.Color)
	}
	if st.FillColor != "" {
		return lipgloss.Color(st.FillColor)
	}
	return fallback
}
