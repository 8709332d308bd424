package photos

import (
	"context"
	"io/fs"
	"math"
	"os"
	"testing"
	"testing/fstest"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"geoshow/internal/feature"
)

func TestCrawl_SkipsFilesWithoutExif(t *testing.T) {
	fsys := fstest.MapFS{
		"a.jpg":         {Data: []byte("not a jpeg")},
		"notes/b.txt":   {Data: []byte("hello")},
		".hidden/c.jpg": {Data: []byte("x")},
	}
	c := &Crawler{Workers: 2, Log: zerolog.Nop()}
	photos, err := c.Crawl(context.Background(), fsys)
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}
	if len(photos) != 0 {
		t.Fatalf("photos=%v", photos)
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestCrawl_ReadsGPS(t *testing.T) {
	c := &Crawler{Workers: 4, Log: zerolog.Nop()}
	photos, err := c.Crawl(context.Background(), os.DirFS("testdata/root1"))
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}
	if len(photos) != 2 {
		t.Fatalf("photos=%+v", photos)
	}
	paris, sf := photos[0], photos[1]
	if paris.Path != "paris.jpg" || !near(paris.Lat, 48.85) || !near(paris.Lon, 2.35) {
		t.Fatalf("paris=%+v", paris)
	}
	if sf.Path != "sub/sf.jpg" || !near(sf.Lat, 37.775) || !near(sf.Lon, -122.418333) {
		t.Fatalf("sf=%+v", sf)
	}

	f := Collection(photos).Features[1]
	pt, ok := f.Geometry.(orb.Point)
	if !ok || !near(pt.Lon(), -122.418333) || !near(pt.Lat(), 37.775) {
		t.Fatalf("geometry=%v", f.Geometry)
	}
	if f.Properties[feature.ImagePathProperty] != "sub/sf.jpg" {
		t.Fatalf("props=%v", f.Properties)
	}
}

func TestCrawl_DuplicatePathFirstRootWins(t *testing.T) {
	root1, root2 := os.DirFS("testdata/root1"), os.DirFS("testdata/root2")
	cases := []struct {
		name  string
		roots []fs.FS
		lat   float64
		lon   float64
	}{
		{"root1 first", []fs.FS{root1, root2}, 48.85, 2.35},
		{"root2 first", []fs.FS{root2, root1}, 37.775, -122.418333},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// repeat so a scheduling dependent winner would show up
			for n := 0; n < 20; n++ {
				c := &Crawler{Workers: 8, Log: zerolog.Nop()}
				photos, err := c.Crawl(context.Background(), tc.roots...)
				if err != nil {
					t.Fatalf("crawl: %v", err)
				}
				if len(photos) != 2 || photos[0].Path != "paris.jpg" {
					t.Fatalf("photos=%+v", photos)
				}
				if !near(photos[0].Lat, tc.lat) || !near(photos[0].Lon, tc.lon) {
					t.Fatalf("paris.jpg at %v,%v want %v,%v", photos[0].Lat, photos[0].Lon, tc.lat, tc.lon)
				}
			}
		})
	}
}

func TestCrawl_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Crawler{Log: zerolog.Nop()}
	if _, err := c.Crawl(ctx, fstest.MapFS{"a.jpg": {Data: []byte("x")}}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestCollection(t *testing.T) {
	fc := Collection([]Photo{{Path: "a.jpg", Lat: 1, Lon: 2}, {Path: "b/c.jpg", Lat: 3, Lon: 4}})
	if len(fc.Features) != 2 {
		t.Fatalf("features=%d", len(fc.Features))
	}
	f := fc.Features[1]
	if f.Properties[feature.ImagePathProperty] != "b/c.jpg" {
		t.Fatalf("props=%v", f.Properties)
	}
	if p, ok := f.Geometry.(orb.Point); !ok || p.Lon() != 4 || p.Lat() != 3 {
		t.Fatalf("geometry=%v", f.Geometry)
	}
}
