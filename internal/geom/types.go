package geom

import "fmt"

// LatLng is a WGS84 coordinate in latitude/longitude order.
type LatLng struct {
	Lat float64
	Lng float64
}

func (ll LatLng) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", ll.Lat, ll.Lng)
}

// NullIsland is the fallback center used when there is nothing to frame.
var NullIsland = LatLng{Lat: 0, Lng: 0}

// Bounds is an axis-aligned lat/lng box.
type Bounds struct {
	SouthWest LatLng
	NorthEast LatLng
}

// IsDegenerate reports whether the box collapses to a single point.
func (b Bounds) IsDegenerate() bool {
	return b.SouthWest == b.NorthEast
}

// Center returns the midpoint of the box.
func (b Bounds) Center() LatLng {
	return LatLng{
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
		Lng: (b.SouthWest.Lng + b.NorthEast.Lng) / 2,
	}
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%s, %s]", b.SouthWest, b.NorthEast)
}

// Data is a minimal geometry container for rendering
type Data struct {
	Points   [][2]float64
	Lines    [][][2]float64
	Polygons [][][][2]float64 // polygons with rings (first outer, following holes)
}

// Empty reports whether nothing drawable was collected.
func (d Data) Empty() bool {
	return len(d.Points) == 0 && len(d.Lines) == 0 && len(d.Polygons) == 0
}
