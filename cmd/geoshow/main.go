package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"geoshow/internal/config"
	"geoshow/internal/logging"
	"geoshow/internal/photos"
	"geoshow/internal/server"
	"geoshow/internal/source"
	"geoshow/internal/tui"
)

var version = "dev"

// flagKeys maps command line flags onto koanf paths. Only flags the user
// set explicitly override the file and environment.
var flagKeys = map[string]string{
	"log-level": "log.level",
	"log-file":  "log.file",
	"provider":  "map.provider",
	"tile-url":  "map.tile_url",
	"host":      "server.host",
	"port":      "server.port",
	"workers":   "crawl.workers",
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	overrides := map[string]any{}
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		overrides[key] = f.Value.String()
	}
	return config.Load(config.Options{Path: path, Overrides: overrides})
}

func dirs(args []string) []fs.FS {
	if len(args) == 0 {
		args = []string{"."}
	}
	out := make([]fs.FS, 0, len(args))
	for _, a := range args {
		out = append(out, os.DirFS(a))
	}
	return out
}

func crawl(ctx context.Context, cfg *config.Config, log zerolog.Logger, args []string) (*geojson.FeatureCollection, error) {
	c := &photos.Crawler{Workers: cfg.Crawl.Workers, Log: log}
	ps, err := c.Crawl(ctx, dirs(args)...)
	if err != nil {
		return nil, fmt.Errorf("crawl photos: %w", err)
	}
	return photos.Collection(ps), nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "geoshow",
		Short:         "Show geotagged photos on a map",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.String("config", "", "YAML config file (also "+config.ConfigPathEnv+")")
	pf.String("log-level", "info", "debug, info, warn or error")
	pf.String("provider", "", "map provider: leaflet or protomaps")
	pf.String("tile-url", "", "tile URL template or protomaps archive")
	pf.Int("workers", 8, "concurrent EXIF decoders")

	root.AddCommand(newViewCmd(), newServeCmd(), newFeaturesCmd())
	return root
}

func newViewCmd() *cobra.Command {
	var baseURL, mapPath, featuresPath string
	cmd := &cobra.Command{
		Use:   "view [photo dirs...]",
		Short: "Open the terminal map",
		Long: "Open the terminal map. With --url the map config and features come\n" +
			"from a running geoshow server; otherwise photo directories are crawled\n" +
			"locally unless --features names a GeoJSON, CSV, KML or WKT file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log, closer, err := logging.OpenFile(logging.Config{Level: cfg.Log.Level, Component: "view"}, cfg.Log.File)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer closer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var (
				configs  source.ConfigSource
				features source.FeatureSource
			)
			switch {
			case baseURL != "":
				h := source.NewHTTP(baseURL)
				configs, features = h, h
			default:
				if mapPath != "" {
					configs = source.ConfigFile{Path: mapPath}
				} else {
					mc, err := cfg.MapConfig()
					if err != nil {
						return err
					}
					configs = source.StaticConfig{Config: mc}
				}
				if featuresPath != "" {
					features = source.FeatureFile{Path: featuresPath}
				} else {
					fc, err := crawl(ctx, cfg, log, args)
					if err != nil {
						return err
					}
					features = source.StaticFeatures{Collection: fc}
				}
			}

			m := tui.New(tui.Options{Context: ctx, Log: log, Config: configs, Features: features})
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "", "geoshow server base URL")
	cmd.Flags().StringVar(&mapPath, "map", "", "map.json or map.yaml file")
	cmd.Flags().StringVar(&featuresPath, "features", "", "feature file")
	cmd.Flags().String("log-file", config.DefaultLogFile, "log file")
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [photo dirs...]",
		Short: "Serve map.json, features and photos over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := logging.Build(logging.Config{Level: cfg.Log.Level, Console: cfg.Log.Console, Component: "server"}, os.Stderr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mc, err := cfg.MapConfig()
			if err != nil {
				return err
			}
			fc, err := crawl(ctx, cfg, log, args)
			if err != nil {
				return err
			}
			srv, err := server.New(server.Options{
				Map:         mc,
				Features:    fc,
				Photos:      dirs(args),
				CORSOrigins: cfg.Server.CORSOrigins,
				Log:         log,
				Registerer:  prometheus.DefaultRegisterer,
				Gatherer:    prometheus.DefaultGatherer,
			})
			if err != nil {
				return err
			}
			return server.Run(ctx, cfg.Addr(), srv.Handler(), log)
		},
	}
	cmd.Flags().String("host", "127.0.0.1", "listen host")
	cmd.Flags().Int("port", 8080, "listen port")
	return cmd
}

func newFeaturesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "features [photo dirs...]",
		Short: "Crawl photo directories and print the GeoJSON feature collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := logging.Build(logging.Config{Level: cfg.Log.Level, Console: true, Component: "crawl"}, os.Stderr)
			fc, err := crawl(cmd.Context(), cfg, log, args)
			if err != nil {
				return err
			}
			data, err := fc.MarshalJSON()
			if err != nil {
				return fmt.Errorf("encode features: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "geoshow:", err)
		os.Exit(1)
	}
}
