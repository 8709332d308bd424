package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	lay := m.layout()

	// Header
	title := " geoshow ─ geotagged photo map "
	if m.c.tile != nil {
		title += "─ " + string(m.c.tile.Provider) + " "
		if m.c.tile.Theme != "" {
			title += "(" + m.c.tile.Theme + ") "
		}
	}
	header := lipgloss.NewStyle().Width(lay.contentW).Render(titleStyle.Render(title))

	// Map viewport
	var mapView string
	if m.showAttrs {
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 3
		}
		maxW := min(lay.mapW, max(32, colW))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(lay.mapH-2, 20))
		attrsBox := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(lay.mapW, lay.mapH, lipgloss.Center, lipgloss.Center, attrsBox)
	} else {
		var drawn string
		if !m.loaded && m.failed {
			drawn = lipgloss.Place(lay.mapW, lay.mapH, lipgloss.Center, lipgloss.Center, errorStyle.Render(m.status))
		} else {
			drawn = m.c.render(lay.mapW, lay.mapH, &m.hover)
		}
		mapView = lipgloss.NewStyle().Width(lay.mapW).Height(lay.mapH).Render(drawn)
	}

	cols := []string{}
	if m.showSidebar {
		cols = append(cols, lipgloss.NewStyle().Width(lay.sideW).Height(lay.contentH).Render(m.c.list.View()), " ")
	}
	cols = append(cols, mapView)
	if lay.popupW > 0 {
		cols = append(cols, m.renderPopup(lay.popupW, lay.contentH))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	// Footer / help
	statusStyle := dimStyle
	if m.failed {
		statusStyle = errorStyle
	}
	status := statusStyle.Render(" " + m.status + " ")
	if m.gotoMode {
		status = " goto: " + m.ta.View()
	}
	info := dimStyle.Render(truncate(m.footerText(), lay.contentW))
	footer := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Width(lay.contentW).MaxHeight(1).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, status, m.renderHelp())),
		lipgloss.NewStyle().Width(lay.contentW).MaxHeight(1).Render(info),
	)

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(lay.contentW).Height(m.height).MaxHeight(m.height).Render(ui)
}

func (m Model) renderPopup(w, h int) string {
	p := m.c.popup
	lines := []string{titleStyle.Render(m.c.popupID)}
	for i, s := range p.Text() {
		if i == 0 {
			s = "▣ " + s
		}
		lines = append(lines, truncate(s, w-4))
	}
	box := boxStyle.Width(w - 2).MaxHeight(h).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, box)
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"←→ pan",
		"+/- zoom",
		"f fit",
		"Tab list",
		"Enter select",
		"n/N next",
		"g goto",
		"Esc clear",
		"a attrs",
		"1/2/3 layers",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
