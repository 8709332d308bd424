package view

import (
	"geoshow/internal/feature"
	"geoshow/internal/geom"
	"geoshow/internal/mapcfg"
)

type LayerKind int

const (
	KindPath LayerKind = iota
	KindPoint
)

func (k LayerKind) String() string {
	if k == KindPoint {
		return "point"
	}
	return "path"
}

// Layer is the interactive rendering of one feature.
type Layer struct {
	ID     string
	Record *feature.Record
	// Style applies to non-point geometries, Marker to points drawn as
	// circle markers. Nil keeps the backend default.
	Style  *mapcfg.Style
	Marker *mapcfg.Style
	// Popup is nil when the feature has no image:path.
	Popup *Popup

	bounds   geom.Bounds
	handlers []ClickHandler
}

func (l *Layer) Kind() LayerKind {
	if geom.IsPoint(l.Record.Geometry()) {
		return KindPoint
	}
	return KindPath
}

// OnClick subscribes h to clicks on this layer.
func (l *Layer) OnClick(h ClickHandler) {
	l.handlers = append(l.handlers, h)
}

func (l *Layer) fire(ev *ClickEvent) {
	for _, h := range l.handlers {
		h(ev)
	}
}

// Bounds is the extent of the layer geometry.
func (l *Layer) Bounds() geom.Bounds { return l.bounds }
