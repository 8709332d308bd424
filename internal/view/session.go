package view

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"

	"geoshow/internal/feature"
	"geoshow/internal/mapcfg"
	"geoshow/internal/source"
)

var (
	errClosed        = errors.New("session closed")
	errNoConfig      = errors.New("map config not applied")
	errFeaturesTwice = errors.New("features already applied")
	errNoFeatures    = errors.New("features not loaded")
)

// Session is one map view: the tile layer, the feature layers, the selection
// and the click wiring between them.
type Session struct {
	ID string

	log     zerolog.Logger
	backend Backend
	sel     *Selection

	cfg     *mapcfg.Config
	store   *feature.Store
	layers  []*Layer
	byID    map[string]*Layer
	surface []ClickHandler

	fitted bool
	closed bool
}

// NewSession binds a session to backend. hl may be nil when there is no
// feature list to highlight.
func NewSession(backend Backend, hl Highlighter, log zerolog.Logger) *Session {
	id := uuid.NewString()
	log = log.With().Str("session", id).Str("component", "view").Logger()
	s := &Session{
		ID:      id,
		log:     log,
		backend: backend,
		sel:     NewSelection(hl, log),
		byID:    map[string]*Layer{},
	}
	s.OnSurfaceClick(func(*ClickEvent) {
		s.sel.Unselect()
		s.backend.ClosePopup()
	})
	return s
}

// Init loads the map config then the features, in that order. A failure at
// any stage is logged and stops the later stages.
func (s *Session) Init(ctx context.Context, cs source.ConfigSource, fs source.FeatureSource) error {
	if s.closed {
		return errClosed
	}
	cfg, err := cs.LoadConfig(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load map config")
		return fmt.Errorf("load map config: %w", err)
	}
	if err := s.ApplyConfig(cfg); err != nil {
		return err
	}
	fc, err := fs.LoadFeatures(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load features")
		return fmt.Errorf("load features: %w", err)
	}
	return s.ApplyFeatures(fc)
}

// ApplyConfig installs the base tile layer. Unknown providers are logged and
// returned as ErrUnknownProvider; features must not be loaded afterwards.
func (s *Session) ApplyConfig(cfg *mapcfg.Config) error {
	if s.closed {
		return errClosed
	}
	if cfg == nil {
		return errNoConfig
	}
	if !cfg.Provider.Known() {
		s.log.Error().Str("provider", string(cfg.Provider)).Msg("unknown map provider")
		return fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	tl := TileLayer{Provider: cfg.Provider, URL: cfg.TileURL, MaxZoom: mapcfg.DefaultMaxZoom}
	switch cfg.Provider {
	case mapcfg.ProviderLeaflet:
		if tl.URL == "" {
			tl.URL = mapcfg.DefaultTileURL
		}
	case mapcfg.ProviderProtomaps:
		if tl.URL == "" {
			s.log.Error().Str("provider", string(cfg.Provider)).Msg("protomaps config has no tile url")
			return ErrNoTileURL
		}
		tl.Theme = cfg.Theme()
	}
	if err := s.backend.AddTileLayer(tl); err != nil {
		s.log.Error().Err(err).Str("provider", string(cfg.Provider)).Msg("failed to add tile layer")
		return fmt.Errorf("add tile layer: %w", err)
	}
	s.cfg = cfg
	s.log.Debug().Str("provider", string(cfg.Provider)).Str("tile_url", tl.URL).Msg("tile layer added")
	return nil
}

// ApplyFeatures assigns ids, builds layers and fits the viewport.
func (s *Session) ApplyFeatures(fc *geojson.FeatureCollection) error {
	if s.closed {
		return errClosed
	}
	if s.cfg == nil {
		return errNoConfig
	}
	if s.store != nil {
		return errFeaturesTwice
	}
	s.store = feature.NewStore(fc)
	b := &builder{cfg: s.cfg, backend: s.backend, sel: s.sel, log: s.log}
	s.layers = b.build(s.store)
	for _, l := range s.layers {
		s.byID[l.ID] = l
	}
	s.log.Info().Int("features", s.store.Len()).Int("layers", len(s.layers)).Msg("feature layers built")
	s.Fit()
	return nil
}

// Fit frames every feature. It acts once per session.
func (s *Session) Fit() {
	if s.store == nil {
		return
	}
	if s.fitted {
		s.log.Debug().Msg("viewport already fitted")
		return
	}
	s.fitted = true
	b, err := s.store.Bounds()
	if err != nil {
		s.log.Warn().Err(err).Msg("geometries left out of the fitted bounds")
	}
	if b.IsDegenerate() {
		s.backend.SetView(b.SouthWest, DefaultZoom)
		return
	}
	s.backend.FitBounds(b)
}

// OnSurfaceClick subscribes h to clicks no feature handled.
func (s *Session) OnSurfaceClick(h ClickHandler) {
	s.surface = append(s.surface, h)
}

// Click dispatches ev to the layer under the pointer, then to the surface
// handlers unless a layer marked it handled.
func (s *Session) Click(ev *ClickEvent) {
	if s.closed || ev == nil {
		return
	}
	if ev.Layer != nil {
		ev.Layer.fire(ev)
	}
	if ev.Handled() {
		return
	}
	for _, h := range s.surface {
		h(ev)
	}
}

// Activate clicks the layer for id as if the user had clicked its center.
func (s *Session) Activate(id string) error {
	if s.store == nil {
		return errNoFeatures
	}
	r, ok := s.store.Get(id)
	if !ok {
		return fmt.Errorf("no feature %q", id)
	}
	l, ok := s.byID[r.ID]
	if !ok {
		return fmt.Errorf("feature %s was not drawn", r.ID)
	}
	s.Click(&ClickEvent{At: l.Bounds().Center(), Layer: l})
	return nil
}

// Layers returns the layers that were added, in feature order.
func (s *Session) Layers() []*Layer { return s.layers }

func (s *Session) Layer(id string) (*Layer, bool) {
	l, ok := s.byID[id]
	return l, ok
}

func (s *Session) Selection() *Selection { return s.sel }
func (s *Session) Store() *feature.Store { return s.store }

// Close drops the selection and all subscriptions. Further calls are no-ops.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.sel.Unselect()
	s.surface = nil
	for _, l := range s.layers {
		l.handlers = nil
	}
	s.closed = true
}
