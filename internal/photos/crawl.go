// Package photos finds geotagged images and turns each into a point feature.
package photos

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"golang.org/x/sync/errgroup"

	"geoshow/internal/feature"
)

var registerOnce sync.Once

// Photo is one image with a GPS position.
type Photo struct {
	Path string
	Lat  float64
	Lon  float64

	root int // position of the file system the photo was read from
}

// Feature returns the point feature for p, with image:path set.
func (p Photo) Feature() *geojson.Feature {
	f := geojson.NewFeature(orb.Point{p.Lon, p.Lat})
	f.Properties[feature.ImagePathProperty] = p.Path
	return f
}

// Crawler walks file systems and decodes EXIF GPS tags.
type Crawler struct {
	Workers int
	Log     zerolog.Logger
}

// Crawl walks every root and returns one photo per image with a readable
// GPS position, sorted by path. Files that cannot be decoded are skipped.
func (c *Crawler) Crawl(ctx context.Context, roots ...fs.FS) ([]Photo, error) {
	registerOnce.Do(func() { exif.RegisterParsers(mknote.All...) })

	g, ctx := errgroup.WithContext(ctx)
	workers := c.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)

	var (
		mu    sync.Mutex
		found []Photo
	)
	for i, root := range roots {
		err := fs.WalkDir(root, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != "." && strings.HasPrefix(d.Name(), ".") {
					return fs.SkipDir
				}
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			g.Go(func() error {
				ph, ok := c.decode(root, p)
				if !ok {
					return nil
				}
				ph.root = i
				mu.Lock()
				found = append(found, ph)
				mu.Unlock()
				return nil
			})
			return nil
		})
		if err != nil {
			_ = g.Wait()
			return nil, fmt.Errorf("walk photos: %w", err)
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	photos := firstRootWins(found)
	c.Log.Info().Int("photos", len(photos)).Int("roots", len(roots)).Msg("crawl finished")
	return photos, nil
}

// firstRootWins sorts by path and keeps, for each path, the photo from the
// earliest root. The merged photo file system resolves paths the same way.
func firstRootWins(found []Photo) []Photo {
	sort.Slice(found, func(i, j int) bool {
		if found[i].Path != found[j].Path {
			return found[i].Path < found[j].Path
		}
		return found[i].root < found[j].root
	})
	out := found[:0]
	for _, ph := range found {
		if len(out) > 0 && out[len(out)-1].Path == ph.Path {
			continue
		}
		out = append(out, ph)
	}
	return out
}

func (c *Crawler) decode(root fs.FS, p string) (Photo, bool) {
	log := c.Log.With().Str("path", p).Logger()
	r, err := root.Open(p)
	if err != nil {
		log.Debug().Err(err).Msg("failed to open image, skipping")
		return Photo{}, false
	}
	defer func() { _ = r.Close() }()

	x, err := exif.Decode(r)
	if err != nil {
		log.Debug().Err(err).Msg("failed to decode exif, skipping")
		return Photo{}, false
	}
	lat, lon, err := x.LatLong()
	if err != nil {
		log.Debug().Err(err).Msg("no gps position, skipping")
		return Photo{}, false
	}
	log.Debug().Float64("lat", lat).Float64("lon", lon).Msg("add photo")
	return Photo{Path: path.Clean(p), Lat: lat, Lon: lon}, true
}

// Collection turns photos into a FeatureCollection in the given order.
func Collection(photos []Photo) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range photos {
		fc.Append(p.Feature())
	}
	return fc
}
