package drawing

import (
	"math"

	"github.com/matzehuels/procsheet/pkg/diagram"
)

// Side is the side of a shape a connector end attaches to.
type Side int

// Shape sides.
const (
	SideTop Side = iota
	SideLeft
	SideBottom
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideLeft:
		return "left"
	case SideBottom:
		return "bottom"
	case SideRight:
		return "right"
	}
	return "unknown"
}

// Opposite returns the facing side.
func (s Side) Opposite() Side {
	return (s + 2) % 4
}

// SelectSide picks the side a connector leaves its source from, using the
// dominant axis of the displacement between first and last. Ties go to the
// horizontal axis.
func SelectSide(first, last diagram.Point) Side {
	dx, dy := last.X-first.X, last.Y-first.Y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx >= 0 {
			return SideRight
		}
		return SideLeft
	}
	if dy >= 0 {
		return SideBottom
	}
	return SideTop
}

// Preset is a DrawingML preset geometry.
type Preset string

// Presets used for process nodes.
const (
	PresetRoundRect Preset = "roundRect"
	PresetDiamond   Preset = "diamond"
	PresetEllipse   Preset = "ellipse"
)

// SiteIndex returns the connection-site index of side s. Rectangles and
// diamonds number their sites top, left, bottom, right; ellipses have eight
// sites starting at the top and running counter-clockwise.
func (p Preset) SiteIndex(s Side) int {
	if p == PresetEllipse {
		return int(s) * 2
	}
	return int(s)
}

// style is the fixed look of one node kind.
type style struct {
	preset Preset
	fill   string
	title  string
}

var kindStyles = map[diagram.NodeKind]style{
	diagram.KindTask:    {preset: PresetRoundRect, fill: "FFFFFF", title: "Task"},
	diagram.KindGateway: {preset: PresetDiamond, fill: "DCE9F7", title: "Gateway"},
	diagram.KindEvent:   {preset: PresetEllipse, fill: "F8D7DA", title: "Event"},
}

// styleFor returns the style of kind. Unknown kinds get the task style and
// ok is false.
func styleFor(kind diagram.NodeKind) (s style, ok bool) {
	s, ok = kindStyles[kind]
	if !ok {
		return kindStyles[diagram.KindTask], false
	}
	return s, true
}
