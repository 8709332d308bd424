package view

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"geoshow/internal/feature"
	"geoshow/internal/geom"
	"geoshow/internal/mapcfg"
)

var errNilGeometry = errors.New("feature has no geometry")

// builder turns records into layers and hands them to the backend.
type builder struct {
	cfg     *mapcfg.Config
	backend Backend
	sel     *Selection
	log     zerolog.Logger
}

// build adds one layer per record. A record whose layer cannot be added is
// logged and left out; the rest continue.
func (b *builder) build(store *feature.Store) []*Layer {
	layers := make([]*Layer, 0, store.Len())
	for _, r := range store.Records() {
		l := b.newLayer(r)
		if err := b.add(l); err != nil {
			b.log.Error().Err(err).Str("show_id", r.ID).Msg("failed to add feature layer")
			continue
		}
		layers = append(layers, l)
	}
	return layers
}

func (b *builder) newLayer(r *feature.Record) *Layer {
	l := &Layer{ID: r.ID, Record: r}

	if p := r.ImagePath(); p == "" {
		b.log.Warn().Str("show_id", r.ID).Msg("feature is missing image:path, no popup bound")
	} else {
		l.Popup = b.popup(r, p)
	}

	if r.Geometry() != nil {
		if l.Kind() == KindPoint {
			l.Marker = b.cfg.PointStyle
		} else {
			l.Style = b.cfg.Style
		}
	}

	id := r.ID
	l.OnClick(func(ev *ClickEvent) {
		b.sel.Select(id)
		ev.MarkHandled()
	})
	if l.Popup != nil {
		popup := l.Popup
		l.OnClick(func(*ClickEvent) {
			b.backend.OpenPopup(id, popup)
		})
	} else {
		l.OnClick(func(*ClickEvent) {
			b.backend.ClosePopup()
		})
	}
	return l
}

func (b *builder) popup(r *feature.Record, path string) *Popup {
	p := &Popup{ImageURL: PhotoURL(path)}
	for _, name := range b.cfg.LabelProperties {
		v, _ := r.Property(name)
		p.Labels = append(p.Labels, Label{Name: name, Value: v})
	}
	return p
}

func (b *builder) add(l *Layer) (err error) {
	g := l.Record.Geometry()
	if g == nil {
		return errNilGeometry
	}
	if l.bounds, err = geom.DeriveBounds(g); err != nil {
		return err
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("backend panic: %v", rec)
		}
	}()
	return b.backend.AddFeatureLayer(l)
}
