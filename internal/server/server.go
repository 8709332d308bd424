// Package server serves map.json, the photo feature collection, the photos
// themselves and an optional local PMTiles archive.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/yalue/merged_fs"

	"geoshow/internal/mapcfg"
	"geoshow/internal/source"
	"geoshow/internal/view"
)

const TilesPrefix = "/tiles/"

type Options struct {
	Map         *mapcfg.Config
	Features    *geojson.FeatureCollection
	Photos      []fs.FS
	CORSOrigins []string
	Log         zerolog.Logger
	// Registerer receives the request metrics. Nil uses a private registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

type Server struct {
	log      zerolog.Logger
	router   chi.Router
	mapCfg   *mapcfg.Config
	mapJSON  document
	features document
	photos   fs.FS
	tilePath string
	metrics  *metrics
}

// New prepares the handlers. The map config is copied; a protomaps file://
// tile URL is rewritten to the local /tiles/ route and api:// to the
// Protomaps API.
func New(opts Options) (*Server, error) {
	if opts.Map == nil {
		return nil, errors.New("server: map config is required")
	}
	if len(opts.Photos) == 0 {
		return nil, errors.New("server: no photo sources")
	}
	s := &Server{log: opts.Log.With().Str("component", "server").Logger()}

	cfg := *opts.Map
	if cfg.Provider == mapcfg.ProviderProtomaps {
		resolved, local, err := mapcfg.ResolveProtomapsURL(cfg.TileURL)
		if err != nil {
			return nil, err
		}
		if local {
			u, _ := url.Parse(cfg.TileURL)
			if _, err := os.Stat(u.Path); err != nil {
				return nil, fmt.Errorf("server: tiles archive: %w", err)
			}
			s.tilePath = u.Path
			resolved = TilesPrefix + filepath.Base(u.Path)
		}
		cfg.TileURL = resolved
		if cfg.Protomaps == nil {
			cfg.Protomaps = &mapcfg.ProtomapsConfig{Theme: mapcfg.DefaultProtomapsTheme}
		}
	}
	s.mapCfg = &cfg

	body, err := cfg.Encode()
	if err != nil {
		return nil, fmt.Errorf("server: encode map config: %w", err)
	}
	s.mapJSON = newDocument(body, "application/json")
	fc := opts.Features
	if fc == nil {
		fc = geojson.NewFeatureCollection()
	}
	if body, err = fc.MarshalJSON(); err != nil {
		return nil, fmt.Errorf("server: encode features: %w", err)
	}
	s.features = newDocument(body, "application/geo+json")

	s.photos = opts.Photos[0]
	for _, p := range opts.Photos[1:] {
		s.photos = merged_fs.NewMergedFS(s.photos, p)
	}

	reg, gat := opts.Registerer, opts.Gatherer
	if reg == nil {
		r := prometheus.NewRegistry()
		reg, gat = r, r
	}
	s.metrics = newMetrics(reg, gat)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.routes(origins)
	return s, nil
}

func (s *Server) routes(origins []string) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Range", "Content-Type"},
		ExposedHeaders: []string{"Content-Length", "Content-Range", "ETag"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.handler())
	r.Get(source.MapConfigPath, s.handleMapConfig)
	r.Get(source.FeaturesPath, s.handleFeatures)
	r.Handle(view.PhotoPrefix+"*", http.StripPrefix(view.PhotoPrefix, http.FileServer(http.FS(s.photos))))
	if s.tilePath != "" {
		r.Get(TilesPrefix+"*", s.handleTiles)
	}
	s.router = r
}

func (s *Server) Handler() http.Handler { return s.router }

// MapConfig returns the config as served, with tile URLs rewritten.
func (s *Server) MapConfig() *mapcfg.Config { return s.mapCfg }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// document is a response body fixed at startup.
type document struct {
	body        []byte
	contentType string
	etag        string
}

func newDocument(body []byte, contentType string) document {
	return document{
		body:        body,
		contentType: contentType,
		etag:        `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`,
	}
}

func (d document) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("ETag", d.etag)
	if r.Header.Get("If-None-Match") == d.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", d.contentType)
	_, _ = w.Write(d.body)
}

func (s *Server) handleMapConfig(w http.ResponseWriter, r *http.Request) {
	s.mapJSON.serve(w, r)
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	s.features.serve(w, r)
}

// handleTiles serves the archive with range support for PMTiles readers.
func (s *Server) handleTiles(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "*") != filepath.Base(s.tilePath) {
		http.NotFound(w, r)
		return
	}
	f, err := os.Open(s.tilePath)
	if err != nil {
		s.log.Error().Err(err).Str("path", s.tilePath).Msg("failed to open tiles archive")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()
	st, err := f.Stat()
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, st.Name(), st.ModTime(), f)
}

// Run serves h on addr until ctx is done.
func Run(ctx context.Context, addr string, h http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http listen")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
