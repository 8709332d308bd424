// Package view turns a feature collection and a map configuration into
// interactive layers with single selection, popups and an initial viewport.
//
// A Session is driven by exactly one goroutine: the backend event loop or a
// headless caller. Nothing in this package locks.
package view

import (
	"errors"

	"geoshow/internal/geom"
	"geoshow/internal/mapcfg"
)

// PhotoPrefix is the URL prefix the photo server mounts images under.
const PhotoPrefix = "/photos/"

// DefaultZoom is used when the feature bounds collapse to a single point.
const DefaultZoom = 12

// ErrUnknownProvider is returned when map.json names a provider with no tile
// backend.
var ErrUnknownProvider = errors.New("unknown map provider")

// ErrNoTileURL is returned for a protomaps config without a tile URL.
var ErrNoTileURL = errors.New("protomaps tile url is required")

// TileLayer describes the base map.
type TileLayer struct {
	Provider mapcfg.Provider
	URL      string
	Theme    string
	MaxZoom  int
}

// Backend is the map renderer a Session draws into.
type Backend interface {
	AddTileLayer(TileLayer) error
	AddFeatureLayer(*Layer) error
	OpenPopup(id string, p *Popup)
	ClosePopup()
	SetView(center geom.LatLng, zoom int)
	FitBounds(geom.Bounds)
}

// Highlighter marks list entries for the selected feature. Ids without an
// element are skipped.
type Highlighter interface {
	HasElement(id string) bool
	SetHighlighted(id string, on bool)
	ScrollIntoView(id string)
}

// ClickEvent is one pointer gesture. Feature handlers run before surface
// handlers; once MarkHandled is called surface handlers are skipped.
type ClickEvent struct {
	At      geom.LatLng
	Layer   *Layer
	handled bool
}

func (e *ClickEvent) MarkHandled()  { e.handled = true }
func (e *ClickEvent) Handled() bool { return e.handled }

type ClickHandler func(*ClickEvent)
