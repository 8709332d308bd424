package geom

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// EachPoint calls fn for every constituent coordinate of g, descending into
// multi-geometries and collections. Unknown geometry types return an error.
func EachPoint(g orb.Geometry, fn func(orb.Point)) error {
	switch t := g.(type) {
	case nil:
		return fmt.Errorf("nil geometry")
	case orb.Point:
		fn(t)
	case orb.MultiPoint:
		for _, p := range t {
			fn(p)
		}
	case orb.LineString:
		for _, p := range t {
			fn(p)
		}
	case orb.Ring:
		for _, p := range t {
			fn(p)
		}
	case orb.MultiLineString:
		for _, ls := range t {
			for _, p := range ls {
				fn(p)
			}
		}
	case orb.Polygon:
		for _, ring := range t {
			for _, p := range ring {
				fn(p)
			}
		}
	case orb.MultiPolygon:
		for _, poly := range t {
			for _, ring := range poly {
				for _, p := range ring {
					fn(p)
				}
			}
		}
	case orb.Collection:
		for _, c := range t {
			if err := EachPoint(c, fn); err != nil {
				return err
			}
		}
	case orb.Bound:
		fn(t.Min)
		fn(t.Max)
	default:
		return fmt.Errorf("unsupported geometry type %T", g)
	}
	return nil
}

// DeriveBounds returns the smallest box containing every coordinate of geoms.
// Geometries that cannot be walked are left out of the box and reported in
// the joined error. With no coordinates at all the result is a degenerate box
// on NullIsland.
func DeriveBounds(geoms ...orb.Geometry) (Bounds, error) {
	var b Bounds
	seen := false
	add := func(p orb.Point) {
		ll := LatLng{Lat: p.Lat(), Lng: p.Lon()}
		if !seen {
			b = Bounds{SouthWest: ll, NorthEast: ll}
			seen = true
			return
		}
		if ll.Lat < b.SouthWest.Lat {
			b.SouthWest.Lat = ll.Lat
		}
		if ll.Lng < b.SouthWest.Lng {
			b.SouthWest.Lng = ll.Lng
		}
		if ll.Lat > b.NorthEast.Lat {
			b.NorthEast.Lat = ll.Lat
		}
		if ll.Lng > b.NorthEast.Lng {
			b.NorthEast.Lng = ll.Lng
		}
	}
	var errs []error
	for i, g := range geoms {
		if err := EachPoint(g, add); err != nil {
			errs = append(errs, fmt.Errorf("geometry %d: %w", i, err))
		}
	}
	if !seen {
		b = Bounds{SouthWest: NullIsland, NorthEast: NullIsland}
	}
	return b, errors.Join(errs...)
}

// IsPoint reports whether g is rendered as point markers.
func IsPoint(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Point, orb.MultiPoint:
		return true
	}
	return false
}

// Flatten splits g into the point, line and polygon buckets used for drawing.
func Flatten(g orb.Geometry) (Data, error) {
	var d Data
	toPts := func(ls []orb.Point) [][2]float64 {
		out := make([][2]float64, len(ls))
		for i, p := range ls {
			out[i] = [2]float64(p)
		}
		return out
	}
	addPoly := func(poly orb.Polygon) {
		rings := make([][][2]float64, 0, len(poly))
		for _, r := range poly {
			rings = append(rings, toPts(r))
		}
		d.Polygons = append(d.Polygons, rings)
	}
	var walk func(g orb.Geometry) error
	walk = func(g orb.Geometry) error {
		switch t := g.(type) {
		case nil:
			return fmt.Errorf("nil geometry")
		case orb.Point:
			d.Points = append(d.Points, [2]float64(t))
		case orb.MultiPoint:
			d.Points = append(d.Points, toPts(t)...)
		case orb.LineString:
			d.Lines = append(d.Lines, toPts(t))
		case orb.MultiLineString:
			for _, ls := range t {
				d.Lines = append(d.Lines, toPts(ls))
			}
		case orb.Ring:
			addPoly(orb.Polygon{t})
		case orb.Polygon:
			addPoly(t)
		case orb.MultiPolygon:
			for _, poly := range t {
				addPoly(poly)
			}
		case orb.Bound:
			addPoly(t.ToPolygon())
		case orb.Collection:
			for _, c := range t {
				if err := walk(c); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("unsupported geometry type %T", g)
		}
		return nil
	}
	if err := walk(g); err != nil {
		return Data{}, err
	}
	return d, nil
}
