// Package tui is the terminal map backend for a view session. It draws
// feature layers with braille characters, lists features in a sidebar and
// shows popups in a side panel.
package tui

import (
	"context"

	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"geoshow/internal/source"
	"geoshow/internal/view"
)

const (
	sidebarWidth = 30
	popupWidth   = 38
	headerHeight = 1
	footerHeight = 2
)

type hoverState struct {
	active bool
	cx, cy int // cell within the map
	at     string
}

type Model struct {
	ctx      context.Context
	log      zerolog.Logger
	configs  source.ConfigSource
	features source.FeatureSource

	session *view.Session
	c       *canvas

	width  int
	height int

	showSidebar bool
	helpVisible bool
	loaded      bool

	status string
	failed bool

	hover hoverState

	// goto prompt
	gotoMode bool
	ta       textarea.Model

	// attributes table
	showAttrs bool
	tbl       table.Model
	attrIDs   []string
}

type Options struct {
	Context  context.Context
	Log      zerolog.Logger
	Config   source.ConfigSource
	Features source.FeatureSource
}

func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	c := newCanvas()
	m := Model{
		ctx:         ctx,
		log:         opts.Log,
		configs:     opts.Config,
		features:    opts.Features,
		c:           c,
		session:     view.NewSession(c, c, opts.Log),
		showSidebar: true,
		helpVisible: true,
		status:      "loading map config",
	}
	// goto prompt: a single line
	m.ta = textarea.New()
	m.ta.Placeholder = "feature id, e.g. show-3 or 3"
	m.ta.ShowLineNumbers = false
	m.ta.CharLimit = 32
	m.ta.SetHeight(1)
	m.ta.SetWidth(30)
	// attributes table setup (columns follow the loaded properties)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	return m
}

// Session exposes the view session, mainly for tests.
func (m Model) Session() *view.Session { return m.session }

func (m Model) Init() tea.Cmd {
	return loadConfig(m.ctx, m.configs)
}
