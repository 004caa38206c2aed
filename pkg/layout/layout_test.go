package layout

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/procsheet/pkg/diagram"
	"github.com/matzehuels/procsheet/pkg/errors"
)

const sampleOutput = `digraph G {
	graph [bb="0,0,318,104",
		nodesep=0.4167,
		rankdir=LR,
		ranksep=0.8333
	];
	node [fixedsize=true,
		label="",
		shape=box
	];
	n0	[height=0.6944,
		pos="60,52",
		width=1.6667];
	n1	[height=0.6944,
		pos="258,27",
		width=1.6667];
	n0 -> n1	[pos="e,197.8,52 120.2,52 142.7,52 163.5,52 187.6,52"];
}
`

func flow() *diagram.Diagram {
	return &diagram.Diagram{
		Name: "flow",
		Lanes: []diagram.LaneBand{
			{ID: "sales", Name: "Sales"},
			{ID: "ops", Name: "Ops"},
		},
		Nodes: []diagram.ProcessNode{
			{ID: "start", Kind: diagram.KindEvent, Lane: "sales"},
			{ID: "review", Kind: diagram.KindTask, Lane: "sales", Label: "Review"},
			{ID: "ship", Kind: diagram.KindTask, Lane: "ops", Label: "Ship"},
		},
		Edges: []diagram.Edge{
			{ID: "e1", Source: "start", Target: "review"},
			{ID: "e2", Source: "review", Target: "ship"},
			{ID: "e3", Source: "ship", Target: "nowhere"},
		},
	}
}

func TestToDOT(t *testing.T) {
	d := flow()
	dot := ToDOT(d, nodeSizes(d, DefaultOptions()), DefaultOptions())

	for _, want := range []string{
		"rankdir=LR;",
		"n0 [width=0.5000, height=0.5000];",
		"n1 [width=1.6667, height=0.6944];",
		"n0 -> n1;",
		"n1 -> n2;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "nowhere") || strings.Count(dot, "->") != 2 {
		t.Errorf("dangling edge written:\n%s", dot)
	}
}

func TestParsePositions(t *testing.T) {
	pts, err := ParsePositions([]byte(sampleOutput), 2)
	if err != nil {
		t.Fatalf("ParsePositions: %v", err)
	}
	if pts[0] != (diagram.Point{X: 60, Y: 52}) {
		t.Errorf("n0 = %v", pts[0])
	}
	if pts[1] != (diagram.Point{X: 258, Y: 77}) {
		t.Errorf("n1 = %v, want y flipped to 77", pts[1])
	}
}

func TestParsePositionsErrors(t *testing.T) {
	if _, err := ParsePositions([]byte("digraph G {}"), 1); err == nil {
		t.Error("expected error without bounding box")
	}
	if _, err := ParsePositions([]byte(sampleOutput), 3); err == nil {
		t.Error("expected error for missing node")
	}
}

func TestPlace(t *testing.T) {
	d := flow()
	opts := DefaultOptions()
	for i, r := range nodeSizes(d, opts) {
		d.Nodes[i].PixelRect = r
	}
	Place(d, []diagram.Point{{X: 18, Y: 40}, {X: 200, Y: 40}, {X: 380, Y: 40}}, opts)

	if d.Lanes[0].StartY != 0 || d.Lanes[1].StartY != d.Lanes[0].Height {
		t.Errorf("lanes not stacked: %+v", d.Lanes)
	}
	for _, n := range d.Nodes {
		lane, _ := d.Lane(n.Lane)
		if n.Y < lane.StartY || n.Bottom() > lane.StartY+lane.Height {
			t.Errorf("node %s (%v..%v) outside lane %s (%v..%v)",
				n.ID, n.Y, n.Bottom(), lane.ID, lane.StartY, lane.StartY+lane.Height)
		}
	}
	if d.Nodes[0].X != opts.Margin {
		t.Errorf("leftmost node x = %v, want margin %v", d.Nodes[0].X, opts.Margin)
	}
	if !(d.Nodes[0].Right() <= d.Nodes[1].X && d.Nodes[1].Right() <= d.Nodes[2].X) {
		t.Errorf("flow order lost: %+v", d.Nodes)
	}
	if d.Height != d.Lanes[0].Height+d.Lanes[1].Height {
		t.Errorf("Height = %v", d.Height)
	}
	if d.Width < d.Nodes[2].Right() {
		t.Errorf("Width = %v does not cover nodes", d.Width)
	}

	for _, e := range d.Edges[:2] {
		if len(e.Waypoints) < 2 {
			t.Errorf("edge %s not routed", e.ID)
		}
	}
	if len(d.Edges[2].Waypoints) != 0 {
		t.Errorf("dangling edge routed: %v", d.Edges[2].Waypoints)
	}
}

func TestPlaceStacksOverlaps(t *testing.T) {
	d := &diagram.Diagram{
		Lanes: []diagram.LaneBand{{ID: "l"}},
		Nodes: []diagram.ProcessNode{
			{ID: "a", Lane: "l", PixelRect: diagram.PixelRect{Width: 120, Height: 50}},
			{ID: "b", Lane: "l", PixelRect: diagram.PixelRect{Width: 120, Height: 50}},
		},
	}
	opts := DefaultOptions()
	Place(d, []diagram.Point{{X: 60, Y: 20}, {X: 60, Y: 100}}, opts)

	a, b := d.Nodes[0], d.Nodes[1]
	if a.Bottom() > b.Y {
		t.Errorf("overlapping nodes not stacked: a %v..%v, b %v..%v", a.Y, a.Bottom(), b.Y, b.Bottom())
	}
	if d.Lanes[0].Height < 2*50+opts.LanePadding {
		t.Errorf("lane height %v too small for two rows", d.Lanes[0].Height)
	}
}

func TestPlaceUnassignedNodes(t *testing.T) {
	d := &diagram.Diagram{
		Lanes: []diagram.LaneBand{{ID: "l"}},
		Nodes: []diagram.ProcessNode{
			{ID: "a", PixelRect: diagram.PixelRect{Width: 40, Height: 40}},
		},
	}
	Place(d, []diagram.Point{{X: 20, Y: 20}}, DefaultOptions())

	if d.Nodes[0].Y < d.Lanes[0].Height {
		t.Errorf("unassigned node placed inside lane: y = %v", d.Nodes[0].Y)
	}
	if len(d.Lanes) != 1 {
		t.Errorf("lanes = %d, want the trailing band not emitted", len(d.Lanes))
	}
}

func TestOrthogonal(t *testing.T) {
	rect := func(x, y float64) diagram.PixelRect {
		return diagram.PixelRect{X: x, Y: y, Width: 100, Height: 40}
	}
	tests := []struct {
		name  string
		s, t  diagram.PixelRect
		count int
		first diagram.Point
		last  diagram.Point
	}{
		{"straight", rect(0, 0), rect(200, 0), 2, diagram.Point{X: 100, Y: 20}, diagram.Point{X: 200, Y: 20}},
		{"elbow", rect(0, 0), rect(200, 100), 4, diagram.Point{X: 100, Y: 20}, diagram.Point{X: 200, Y: 120}},
		{"down", rect(0, 0), rect(0, 100), 2, diagram.Point{X: 50, Y: 40}, diagram.Point{X: 50, Y: 100}},
		{"up", rect(0, 100), rect(20, 0), 4, diagram.Point{X: 50, Y: 100}, diagram.Point{X: 70, Y: 40}},
		{"back", rect(300, 0), rect(0, 0), 4, diagram.Point{X: 350, Y: 40}, diagram.Point{X: 50, Y: 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts := orthogonal(tt.s, tt.t, 10)
			if len(pts) != tt.count {
				t.Fatalf("len = %d, want %d: %v", len(pts), tt.count, pts)
			}
			if pts[0] != tt.first || pts[len(pts)-1] != tt.last {
				t.Errorf("ends = %v, %v; want %v, %v", pts[0], pts[len(pts)-1], tt.first, tt.last)
			}
			for i := 1; i < len(pts); i++ {
				if pts[i].X != pts[i-1].X && pts[i].Y != pts[i-1].Y {
					t.Errorf("segment %d is diagonal: %v -> %v", i, pts[i-1], pts[i])
				}
			}
		})
	}
}

func TestOptions(t *testing.T) {
	var o Options
	o.SetDefaults()
	if o != DefaultOptions() {
		t.Errorf("SetDefaults = %+v", o)
	}
	if err := o.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	o.TaskWidth = -1
	if err := o.Validate(); err == nil {
		t.Error("negative task width accepted")
	}
}

func TestLayoutInvalidOptions(t *testing.T) {
	_, err := Layout(context.Background(), flow(), Options{NodeSep: -5})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestLayoutEmpty(t *testing.T) {
	d := &diagram.Diagram{Lanes: []diagram.LaneBand{{ID: "a"}, {ID: "b"}}}
	out, err := Layout(context.Background(), d, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if out.Lanes[1].StartY != DefaultOptions().LaneMinHeight {
		t.Errorf("empty lanes not stacked: %+v", out.Lanes)
	}
}

func TestLayoutGraphviz(t *testing.T) {
	if testing.Short() {
		t.Skip("runs graphviz")
	}
	d := flow()
	out, err := Layout(context.Background(), d, DefaultOptions())
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if !out.Positioned() {
		t.Error("layout left nodes without geometry")
	}
	if d.Positioned() {
		t.Error("input diagram modified")
	}
	byID := map[string]diagram.ProcessNode{}
	for _, n := range out.Nodes {
		byID[n.ID] = n
	}
	if !(byID["start"].Right() <= byID["review"].X && byID["review"].Right() <= byID["ship"].X) {
		t.Errorf("nodes not ordered along the flow: %+v", out.Nodes)
	}
	if len(out.Edges[0].Waypoints) < 2 || len(out.Edges[1].Waypoints) < 2 {
		t.Error("edges not routed")
	}
}
