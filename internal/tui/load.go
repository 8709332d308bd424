package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb/geojson"

	"geoshow/internal/mapcfg"
	"geoshow/internal/source"
)

type configLoadedMsg struct {
	cfg *mapcfg.Config
	err error
}

type featuresLoadedMsg struct {
	fc  *geojson.FeatureCollection
	err error
}

func loadConfig(ctx context.Context, src source.ConfigSource) tea.Cmd {
	return func() tea.Msg {
		cfg, err := src.LoadConfig(ctx)
		return configLoadedMsg{cfg: cfg, err: err}
	}
}

func loadFeatures(ctx context.Context, src source.FeatureSource) tea.Cmd {
	return func() tea.Msg {
		fc, err := src.LoadFeatures(ctx)
		return featuresLoadedMsg{fc: fc, err: err}
	}
}

// onConfig applies the map config and only then asks for features.
func (m Model) onConfig(msg configLoadedMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Error().Err(msg.err).Msg("failed to load map config")
		return m.fail(fmt.Errorf("load map config: %w", msg.err)), nil
	}
	// unknown providers are logged by the session; features are never requested
	if err := m.session.ApplyConfig(msg.cfg); err != nil {
		return m.fail(err), nil
	}
	m.status = "loading features"
	return m, loadFeatures(m.ctx, m.features)
}

func (m Model) onFeatures(msg featuresLoadedMsg) Model {
	if msg.err != nil {
		m.log.Error().Err(msg.err).Msg("failed to load features")
		return m.fail(fmt.Errorf("load features: %w", msg.err))
	}
	if err := m.session.ApplyFeatures(msg.fc); err != nil {
		return m.fail(err)
	}
	m.loaded = true
	n := m.session.Store().Len()
	m.status = fmt.Sprintf("loaded %d features  %d drawn", n, len(m.c.layers))
	if m.showAttrs {
		m.refreshAttrs()
	}
	return m
}

func (m Model) fail(err error) Model {
	m.status = err.Error()
	m.failed = true
	return m
}
