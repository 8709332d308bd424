package tui

import (
	"strings"

	"github.com/paulmach/orb"
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// segDist2 is the squared distance from p to the segment a-b.
func segDist2(px, py, ax, ay, bx, by int) float64 {
	dx, dy := float64(bx-ax), float64(by-ay)
	fx, fy := float64(px-ax), float64(py-ay)
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return fx*fx + fy*fy
	}
	t := (fx*dx + fy*dy) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	ex, ey := fx-t*dx, fy-t*dy
	return ex*ex + ey*ey
}

func toRing(pts [][2]float64) orb.Ring {
	r := make(orb.Ring, len(pts))
	for i, p := range pts {
		r[i] = orb.Point(p)
	}
	return r
}

func normalizeID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if s[0] >= '0' && s[0] <= '9' {
		return "show-" + s
	}
	return s
}
