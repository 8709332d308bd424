package geom

import (
	"encoding/xml"
	"errors"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

type kmlLineString struct {
	Coordinates string `xml:"coordinates"`
}

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type kmlPlacemark struct {
	Name        string         `xml:"name"`
	Description string         `xml:"description"`
	Point       *kmlPoint      `xml:"Point"`
	LineString  *kmlLineString `xml:"LineString"`
	Data        []kmlData      `xml:"ExtendedData>Data"`
}

type kmlDoc struct {
	Placemarks []kmlPlacemark `xml:"Document>Placemark"`
	Loose      []kmlPlacemark `xml:"Placemark"`
}

// ParseKML extracts Placemark points and line strings from a KML document.
// KML coordinates are "lon,lat[,alt]"; we ignore altitude. Placemark name,
// description and ExtendedData values become feature properties.
func ParseKML(data []byte) (*geojson.FeatureCollection, error) {
	var doc kmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	fc := geojson.NewFeatureCollection()
	for _, pm := range append(doc.Placemarks, doc.Loose...) {
		var g orb.Geometry
		switch {
		case pm.Point != nil:
			pts := kmlCoords(pm.Point.Coordinates)
			if len(pts) == 0 {
				continue
			}
			g = pts[0]
		case pm.LineString != nil:
			pts := kmlCoords(pm.LineString.Coordinates)
			if len(pts) < 2 {
				continue
			}
			g = orb.LineString(pts)
		default:
			continue
		}
		f := geojson.NewFeature(g)
		if pm.Name != "" {
			f.Properties["name"] = pm.Name
		}
		if pm.Description != "" {
			f.Properties["description"] = strings.TrimSpace(pm.Description)
		}
		for _, d := range pm.Data {
			f.Properties[d.Name] = d.Value
		}
		fc.Append(f)
	}
	if len(fc.Features) == 0 {
		return nil, errors.New("kml: no placemarks found")
	}
	return fc, nil
}

// coordinates may contain multiple tuples separated by whitespace
func kmlCoords(s string) []orb.Point {
	var out []orb.Point
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, orb.Point{lon, lat})
	}
	return out
}
