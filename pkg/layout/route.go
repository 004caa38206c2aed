package layout

import (
	"github.com/matzehuels/procsheet/pkg/diagram"
)

// route replaces the waypoints of every edge whose endpoints both exist with
// an orthogonal path. Other edges keep the waypoints they had.
func route(d *diagram.Diagram, opts Options) {
	rects := make(map[string]diagram.PixelRect, len(d.Nodes))
	for _, n := range d.Nodes {
		rects[n.ID] = n.PixelRect
	}
	for i, e := range d.Edges {
		s, okS := rects[e.Source]
		t, okT := rects[e.Target]
		if !okS || !okT || e.Source == e.Target {
			continue
		}
		d.Edges[i].Waypoints = orthogonal(s, t, opts.LanePadding/2)
	}
}

// orthogonal connects s to t with horizontal and vertical segments.
//
// Forward edges leave the right side of s and enter the left side of t.
// Edges between horizontally overlapping nodes run vertically between the
// facing top and bottom sides. Backward edges leave the bottom of s, pass
// below both nodes and enter t from below.
func orthogonal(s, t diagram.PixelRect, gap float64) []diagram.Point {
	sc, tc := s.Center(), t.Center()

	switch {
	case t.X >= s.Right():
		start := diagram.Point{X: s.Right(), Y: sc.Y}
		end := diagram.Point{X: t.X, Y: tc.Y}
		if start.Y == end.Y {
			return []diagram.Point{start, end}
		}
		midX := (start.X + end.X) / 2
		return []diagram.Point{start, {X: midX, Y: start.Y}, {X: midX, Y: end.Y}, end}

	case t.Right() > s.X:
		start, end := diagram.Point{X: sc.X, Y: s.Bottom()}, diagram.Point{X: tc.X, Y: t.Y}
		if t.Y < s.Y {
			start, end = diagram.Point{X: sc.X, Y: s.Y}, diagram.Point{X: tc.X, Y: t.Bottom()}
		}
		if start.X == end.X {
			return []diagram.Point{start, end}
		}
		midY := (start.Y + end.Y) / 2
		return []diagram.Point{start, {X: start.X, Y: midY}, {X: end.X, Y: midY}, end}

	default:
		below := max(s.Bottom(), t.Bottom()) + gap
		return []diagram.Point{
			{X: sc.X, Y: s.Bottom()},
			{X: sc.X, Y: below},
			{X: tc.X, Y: below},
			{X: tc.X, Y: t.Bottom()},
		}
	}
}
