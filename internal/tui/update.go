package tui

import (
	"fmt"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"geoshow/internal/view"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case configLoadedMsg:
		m, cmd = m.onConfig(msg)
	case featuresLoadedMsg:
		m = m.onFeatures(msg)
	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)
	case tea.MouseMsg:
		m = m.handleMouse(msg)
	}
	m.syncLayout()
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	// If list is visible and filtering, send keys to list and ignore global commands
	if m.showSidebar && m.c.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.c.list, cmd = m.c.list.Update(msg)
		return m, cmd
	}
	if m.gotoMode {
		switch msg.String() {
		case "esc":
			m.gotoMode = false
			m.ta.Blur()
			return m, nil
		case "enter":
			id := normalizeID(m.ta.Value())
			m.gotoMode = false
			m.ta.Blur()
			if id == "" {
				m.status = "goto: empty"
				return m, nil
			}
			m.activate(id)
			return m, nil
		}
		var cmd tea.Cmd
		m.ta, cmd = m.ta.Update(msg)
		return m, cmd
	}
	if m.showAttrs {
		switch msg.String() {
		case "up", "down", "k", "j", "pgup", "pgdown", "home", "end":
			var cmd tea.Cmd
			m.tbl, cmd = m.tbl.Update(msg)
			return m, cmd
		case "enter":
			if i := m.tbl.Cursor(); i >= 0 && i < len(m.attrIDs) {
				m.activate(m.attrIDs[i])
			}
			return m, nil
		}
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.session.Close()
		return m, tea.Quit
	case "1":
		m.c.showPoints = !m.c.showPoints
		m.status = fmt.Sprintf("points: %v", m.c.showPoints)
	case "2":
		m.c.showLines = !m.c.showLines
		m.status = fmt.Sprintf("lines: %v", m.c.showLines)
	case "3":
		m.c.showPolys = !m.c.showPolys
		m.status = fmt.Sprintf("polys: %v", m.c.showPolys)
	case "+", "=":
		m.c.cam.zoomBy(1)
		m.status = fmt.Sprintf("zoom: %d", m.c.cam.zoom)
	case "-", "_":
		m.c.cam.zoomBy(-1)
		m.status = fmt.Sprintf("zoom: %d", m.c.cam.zoom)
	case "f", "0":
		if m.c.resetView() {
			m.status = "view reset"
		}
	case "tab":
		m.showSidebar = !m.showSidebar
	case "g":
		m.gotoMode = true
		m.ta.SetValue("")
		m.status = "goto feature"
		cmd := m.ta.Focus()
		return m, cmd
	case "h":
		m.helpVisible = !m.helpVisible
	case "a":
		m.showAttrs = !m.showAttrs
		if m.showAttrs {
			m.refreshAttrs()
		}
	case "n":
		m.step(1)
	case "N":
		m.step(-1)
	case "esc":
		// same as clicking empty map
		m.session.Click(&view.ClickEvent{At: m.c.cam.center()})
		m.status = "selection cleared"
	case "enter":
		if m.showSidebar {
			if it, ok := m.c.list.SelectedItem().(featureItem); ok {
				m.activate(it.id)
			}
		}
	case "up", "down", "pgup", "pgdown":
		if m.showSidebar {
			var cmd tea.Cmd
			m.c.list, cmd = m.c.list.Update(msg)
			return m, cmd
		}
		if msg.String() == "up" {
			m.c.cam.pan(0, -4)
		} else if msg.String() == "down" {
			m.c.cam.pan(0, 4)
		}
	case "shift+up", "ctrl+up":
		m.c.cam.pan(0, -4)
	case "shift+down", "ctrl+down":
		m.c.cam.pan(0, 4)
	case "left":
		m.c.cam.pan(-4, 0)
	case "right":
		m.c.cam.pan(4, 0)
	default:
		if m.showSidebar {
			var cmd tea.Cmd
			m.c.list, cmd = m.c.list.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// activate clicks the feature with id as if the user had clicked it.
func (m *Model) activate(id string) {
	if err := m.session.Activate(id); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "selected " + id
	if l, ok := m.session.Layer(id); ok {
		// keep the feature on screen
		c := l.Bounds().Center()
		if sx, sy := m.c.cam.toScreen(c); sx < 0 || sy < 0 || sx >= m.c.cam.w || sy >= m.c.cam.h {
			m.c.cam.setView(c, m.c.cam.zoom)
		}
	}
	if m.showAttrs {
		m.syncAttrCursor()
	}
}

// step activates the next or previous drawn feature.
func (m *Model) step(d int) {
	n := len(m.c.layers)
	if n == 0 {
		return
	}
	i := -1
	if id, ok := m.session.Selection().Current(); ok {
		if dr, ok := m.c.byID[id]; ok {
			i = dr.index
		}
	}
	i = ((i+d)%n + n) % n
	m.activate(m.c.layers[i].layer.ID)
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	lay := m.layout()
	cx, cy := msg.X-lay.mapX, msg.Y-lay.mapY
	inside := cx >= 0 && cx < lay.mapW && cy >= 0 && cy < lay.mapH
	if !inside {
		m.hover.active = false
		return m
	}
	mx, my := cx*2+1, cy*4+2
	at := m.c.cam.fromScreen(mx, my)
	m.hover = hoverState{active: true, cx: cx, cy: cy, at: fmt.Sprintf("lat=%.5f lng=%.5f", at.Lat, at.Lng)}

	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		ev := &view.ClickEvent{At: at, Layer: m.c.hit(mx, my)}
		m.session.Click(ev)
		if ev.Layer != nil {
			m.status = "selected " + ev.Layer.ID
			if m.showAttrs {
				m.syncAttrCursor()
			}
		} else {
			m.status = "selection cleared"
		}
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelUp:
		m.c.cam.zoomBy(1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelDown:
		m.c.cam.zoomBy(-1)
	}
	return m
}

type layout struct {
	contentW, contentH int
	sideW              int
	popupW             int
	mapX, mapY         int
	mapW, mapH         int
}

// layout must match what View draws.
func (m Model) layout() layout {
	var l layout
	l.contentW = max(10, m.width)
	l.contentH = max(4, m.height-headerHeight-footerHeight)
	if m.showSidebar {
		l.sideW = sidebarWidth
	}
	if m.c.popup != nil && !m.showAttrs {
		l.popupW = popupWidth
	}
	l.mapX = l.sideW
	if m.showSidebar {
		l.mapX++
	}
	l.mapY = headerHeight
	l.mapW = max(10, l.contentW-l.mapX-l.popupW)
	l.mapH = l.contentH
	return l
}

func (m *Model) syncLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	lay := m.layout()
	if m.showSidebar {
		m.c.list.SetSize(sidebarWidth, lay.contentH)
	}
	m.c.resize(lay.mapW, lay.mapH)
}

func (m Model) footerText() string {
	var parts []string
	if m.c.tile != nil {
		parts = append(parts, fmt.Sprintf("%s z%d", m.c.tile.Provider, m.c.cam.zoom))
		if u := m.c.cam.tileURL(m.c.tile.URL); u != "" {
			parts = append(parts, u)
		}
	}
	if m.hover.active {
		parts = append(parts, m.hover.at)
	}
	return strings.Join(parts, "  ")
}
