package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"geoshow/internal/geom"
	"geoshow/internal/view"
)

var (
	pathColor     lipgloss.TerminalColor = accentFg
	pointColor    lipgloss.TerminalColor = baseFg
	selectedColor lipgloss.TerminalColor = lipgloss.Color("#FFA500")
)

// render draws every visible layer into a w x h cell map. The selected
// feature is drawn last so it sits on top.
func (c *canvas) render(w, h int, hover *hoverState) string {
	br := newBrailleBuf(w, h)
	var sel *drawable
	for _, dr := range c.layers {
		if dr.layer.ID == c.selected {
			sel = dr
			continue
		}
		c.draw(br, dr, false)
	}
	if sel != nil {
		c.draw(br, sel, true)
	}
	lines := br.toLines()

	// Hover highlight: draw an orange circle at the hovered cell
	if hover != nil && hover.active && hover.cy >= 0 && hover.cy < len(lines) && hover.cx >= 0 && hover.cx < w {
		lines[hover.cy] = overlayCell(lines[hover.cy], hover.cx, lipgloss.NewStyle().Foreground(selectedColor).Render("◯"))
	}
	return strings.Join(lines, "\n")
}

func (c *canvas) draw(br *brailleBuf, dr *drawable, selected bool) {
	l := dr.layer
	switch {
	case selected:
		br.pen = selectedColor
	case l.Kind() == view.KindPoint:
		br.pen = layerColor(l, pointColor)
	default:
		br.pen = layerColor(l, pathColor)
	}

	if c.showPolys {
		for _, poly := range dr.data.Polygons {
			var rings [][][2]int
			for _, ring := range poly {
				rings = append(rings, c.project(ring))
			}
			if len(rings) == 0 {
				continue
			}
			if fill := l.Style == nil || l.Style.Fill == nil || *l.Style.Fill; fill {
				// holes ignored
				br.fillRing(rings[0])
			}
			for _, r := range rings {
				for i := range r {
					a, b := r[i], r[(i+1)%len(r)]
					br.drawLineMicro(a[0], a[1], b[0], b[1])
				}
			}
		}
	}
	if c.showLines {
		for _, ls := range dr.data.Lines {
			pts := c.project(ls)
			for i := 1; i < len(pts); i++ {
				br.drawLineMicro(pts[i-1][0], pts[i-1][1], pts[i][0], pts[i][1])
			}
		}
	}
	if c.showPoints {
		r := markerRadius(l)
		if selected {
			r++
		}
		for _, p := range c.project(dr.data.Points) {
			br.disc(p[0], p[1], r)
		}
	}
}

func (c *canvas) project(pts [][2]float64) [][2]int {
	out := make([][2]int, len(pts))
	for i, p := range pts {
		x, y := c.cam.toScreen(geom.LatLng{Lat: p[1], Lng: p[0]})
		out[i] = [2]int{x, y}
	}
	return out
}

// overlayCell replaces the visible cell at x of a styled line.
func overlayCell(line string, x int, cell string) string {
	return ansi.Truncate(line, x, "") + cell + ansi.TruncateLeft(line, x+1, "")
}
