package tui

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/project"

	"geoshow/internal/geom"
)

const (
	tileSize = 256 // micro pixels per tile edge
	minZoom  = 0
	maxLat   = 85.05112878
	fitPad   = 8 // micro pixels kept free around fitted bounds
)

// camera is a web mercator viewport measured in braille micro pixels.
// x and y are the view center in normalized world coordinates [0,1].
type camera struct {
	x, y    float64
	zoom    int
	maxZoom int
	w, h    int // micro pixels
}

func newCamera() camera {
	return camera{x: 0.5, y: 0.5, zoom: 1, maxZoom: 19}
}

// normalize projects ll into [0,1] world coordinates, y growing south.
func normalize(ll geom.LatLng) (float64, float64) {
	lat := math.Max(-maxLat, math.Min(maxLat, ll.Lat))
	p := project.WGS84.ToMercator(orb.Point{ll.Lng, lat})
	half := math.Pi * orb.EarthRadius
	return (p[0]/half + 1) / 2, (1 - p[1]/half) / 2
}

func denormalize(x, y float64) geom.LatLng {
	half := math.Pi * orb.EarthRadius
	p := project.Mercator.ToWGS84(orb.Point{(2*x - 1) * half, (1 - 2*y) * half})
	return geom.LatLng{Lat: p.Lat(), Lng: p.Lon()}
}

func (c *camera) world() float64 {
	return float64(tileSize) * math.Exp2(float64(c.zoom))
}

func (c *camera) ready() bool { return c.w > 0 && c.h > 0 }

func (c *camera) resize(wMic, hMic int) {
	c.w, c.h = wMic, hMic
}

func (c *camera) clampZoom(z int) int {
	if z < minZoom {
		return minZoom
	}
	if z > c.maxZoom {
		return c.maxZoom
	}
	return z
}

func (c *camera) setView(center geom.LatLng, zoom int) {
	c.x, c.y = normalize(center)
	c.zoom = c.clampZoom(zoom)
}

// fit picks the deepest zoom at which b fits inside the viewport.
func (c *camera) fit(b geom.Bounds) {
	x0, y1 := normalize(b.SouthWest)
	x1, y0 := normalize(b.NorthEast)
	c.x, c.y = (x0+x1)/2, (y0+y1)/2
	availW := float64(c.w - 2*fitPad)
	availH := float64(c.h - 2*fitPad)
	z := c.maxZoom
	for ; z > minZoom; z-- {
		world := float64(tileSize) * math.Exp2(float64(z))
		if (x1-x0)*world <= availW && (y1-y0)*world <= availH {
			break
		}
	}
	c.zoom = c.clampZoom(z)
}

func (c *camera) zoomBy(d int) {
	c.zoom = c.clampZoom(c.zoom + d)
}

// pan moves the center by dx, dy micro pixels.
func (c *camera) pan(dx, dy int) {
	world := c.world()
	c.x += float64(dx) / world
	c.y += float64(dy) / world
	c.x = math.Max(0, math.Min(1, c.x))
	c.y = math.Max(0, math.Min(1, c.y))
}

// toScreen maps ll onto viewport micro pixels.
func (c *camera) toScreen(ll geom.LatLng) (int, int) {
	x, y := normalize(ll)
	world := c.world()
	sx := (x-c.x)*world + float64(c.w)/2
	sy := (y-c.y)*world + float64(c.h)/2
	return int(math.Round(sx)), int(math.Round(sy))
}

func (c *camera) fromScreen(mx, my int) geom.LatLng {
	world := c.world()
	x := c.x + (float64(mx)-float64(c.w)/2)/world
	y := c.y + (float64(my)-float64(c.h)/2)/world
	return denormalize(x, y)
}

func (c *camera) center() geom.LatLng {
	return denormalize(c.x, c.y)
}

// tileURL expands a {z}/{x}/{y} template for the tile under the view center.
func (c *camera) tileURL(template string) string {
	if template == "" {
		return ""
	}
	ll := c.center()
	t := maptile.At(orb.Point{ll.Lng, ll.Lat}, maptile.Zoom(c.zoom))
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(int(t.Z)),
		"{x}", strconv.FormatUint(uint64(t.X), 10),
		"{y}", strconv.FormatUint(uint64(t.Y), 10),
	)
	return r.Replace(template)
}
