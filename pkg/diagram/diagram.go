package diagram

import "math"

// NodeKind selects the geometry and fill of a node's shape.
type NodeKind string

// Node kinds understood by the exporter.
const (
	KindTask    NodeKind = "task"
	KindGateway NodeKind = "gateway"
	KindEvent   NodeKind = "event"
)

// Known reports whether k is one of the supported node kinds.
func (k NodeKind) Known() bool {
	switch k {
	case KindTask, KindGateway, KindEvent:
		return true
	}
	return false
}

// Point is a position in diagram pixel space.
type Point struct {
	X float64 `json:"x" yaml:"x" bson:"x"`
	Y float64 `json:"y" yaml:"y" bson:"y"`
}

// PixelRect is a node's position and size in diagram pixel space.
type PixelRect struct {
	X      float64 `json:"x" yaml:"x" bson:"x"`
	Y      float64 `json:"y" yaml:"y" bson:"y"`
	Width  float64 `json:"width" yaml:"width" bson:"width"`
	Height float64 `json:"height" yaml:"height" bson:"height"`
}

// Right returns the x coordinate of the right edge.
func (r PixelRect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r PixelRect) Bottom() float64 { return r.Y + r.Height }

// Center returns the center point of the rectangle.
func (r PixelRect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Empty reports whether the rectangle has no area.
func (r PixelRect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// LaneBand is a horizontal swimlane region.
type LaneBand struct {
	ID        string  `json:"id" yaml:"id" bson:"id"`
	Name      string  `json:"name" yaml:"name" bson:"name"`
	StartY    float64 `json:"start_y" yaml:"start_y" bson:"start_y"`
	Height    float64 `json:"height" yaml:"height" bson:"height"`
	FillColor string  `json:"fill_color,omitempty" yaml:"fill_color,omitempty" bson:"fill_color,omitempty"`
}

// ProcessNode is one BPMN-like element. It maps to exactly one shape.
type ProcessNode struct {
	ID    string   `json:"id" yaml:"id" bson:"id"`
	Kind  NodeKind `json:"kind" yaml:"kind" bson:"kind"`
	Label string   `json:"label,omitempty" yaml:"label,omitempty" bson:"label,omitempty"`
	// Lane is only consulted by automatic layout; positioned diagrams carry
	// lane membership implicitly through geometry.
	Lane string `json:"lane,omitempty" yaml:"lane,omitempty" bson:"lane,omitempty"`

	PixelRect `yaml:",inline" bson:",inline"`
}

// Edge is a routed connector between two nodes.
type Edge struct {
	ID        string  `json:"id" yaml:"id" bson:"id"`
	Source    string  `json:"source,omitempty" yaml:"source,omitempty" bson:"source,omitempty"`
	Target    string  `json:"target,omitempty" yaml:"target,omitempty" bson:"target,omitempty"`
	Waypoints []Point `json:"waypoints,omitempty" yaml:"waypoints,omitempty" bson:"waypoints,omitempty"`
}

// Drawable reports whether the edge has enough waypoints to be drawn.
func (e Edge) Drawable() bool { return len(e.Waypoints) >= 2 }

// Diagram is a complete laid-out process graph plus its record metadata.
type Diagram struct {
	ID      string `json:"id,omitempty" yaml:"id,omitempty" bson:"_id,omitempty"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty" bson:"name,omitempty"`
	Project string `json:"project,omitempty" yaml:"project,omitempty" bson:"project,omitempty"`
	// Hierarchy is the path of parent processes, outermost first.
	Hierarchy []string `json:"hierarchy,omitempty" yaml:"hierarchy,omitempty" bson:"hierarchy,omitempty"`

	Width  float64 `json:"width" yaml:"width" bson:"width"`
	Height float64 `json:"height" yaml:"height" bson:"height"`

	Lanes []LaneBand    `json:"lanes" yaml:"lanes" bson:"lanes"`
	Nodes []ProcessNode `json:"nodes" yaml:"nodes" bson:"nodes"`
	Edges []Edge        `json:"edges" yaml:"edges" bson:"edges"`
}

// Node returns the node with the given id.
func (d *Diagram) Node(id string) (ProcessNode, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return ProcessNode{}, false
}

// Lane returns the lane with the given id.
func (d *Diagram) Lane(id string) (LaneBand, bool) {
	for _, l := range d.Lanes {
		if l.ID == id {
			return l, true
		}
	}
	return LaneBand{}, false
}

// Positioned reports whether every node carries non-empty geometry.
// Diagrams without geometry need automatic layout before export.
func (d *Diagram) Positioned() bool {
	for _, n := range d.Nodes {
		if n.Empty() {
			return false
		}
	}
	return true
}

// Extent returns the diagram size, growing the declared Width/Height to cover
// every node, lane and waypoint.
func (d *Diagram) Extent() (width, height float64) {
	width, height = math.Max(d.Width, 0), math.Max(d.Height, 0)
	for _, n := range d.Nodes {
		width = math.Max(width, n.Right())
		height = math.Max(height, n.Bottom())
	}
	for _, l := range d.Lanes {
		height = math.Max(height, l.StartY+l.Height)
	}
	for _, e := range d.Edges {
		for _, p := range e.Waypoints {
			width = math.Max(width, p.X)
			height = math.Max(height, p.Y)
		}
	}
	return width, height
}

// Clone returns a deep copy of the diagram.
func (d *Diagram) Clone() *Diagram {
	out := *d
	out.Hierarchy = append([]string(nil), d.Hierarchy...)
	out.Lanes = append([]LaneBand(nil), d.Lanes...)
	out.Nodes = append([]ProcessNode(nil), d.Nodes...)
	out.Edges = make([]Edge, len(d.Edges))
	for i, e := range d.Edges {
		e.Waypoints = append([]Point(nil), e.Waypoints...)
		out.Edges[i] = e
	}
	return &out
}
