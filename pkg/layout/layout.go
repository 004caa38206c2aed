package layout

import (
	"context"
	"math"
	"sort"

	"github.com/matzehuels/procsheet/pkg/diagram"
	"github.com/matzehuels/procsheet/pkg/errors"
)

// Layout returns a copy of d with node geometry, lane bands, edge waypoints
// and the diagram size filled in. d itself is not modified.
func Layout(ctx context.Context, d *diagram.Diagram, opts Options) (*diagram.Diagram, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "layout options")
	}

	out := d.Clone()
	if len(out.Nodes) == 0 {
		Place(out, nil, opts)
		return out, nil
	}

	sizes := nodeSizes(out, opts)
	raw, err := RenderDOT(ctx, ToDOT(out, sizes, opts))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "layout engine")
	}
	centers, err := ParsePositions(raw, len(out.Nodes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "layout engine output")
	}

	for i := range out.Nodes {
		out.Nodes[i].PixelRect = diagram.PixelRect{
			X:      centers[i].X - sizes[i].Width/2,
			Y:      centers[i].Y - sizes[i].Height/2,
			Width:  sizes[i].Width,
			Height: sizes[i].Height,
		}
	}
	Place(out, centers, opts)
	return out, nil
}

// nodeSizes keeps the size of nodes that already have one and assigns the
// kind's default size to the rest.
func nodeSizes(d *diagram.Diagram, opts Options) []diagram.PixelRect {
	sizes := make([]diagram.PixelRect, len(d.Nodes))
	for i, n := range d.Nodes {
		w, h := n.Width, n.Height
		if n.Empty() {
			w, h = opts.size(n.Kind)
		}
		sizes[i] = diagram.PixelRect{Width: w, Height: h}
	}
	return sizes
}

// Place fits engine positions to lanes. Node widths and heights must be set;
// centers order nodes along the flow (x) and across it (y). Lanes are
// restacked from y=0 in caller order and resized to fit their nodes. Nodes
// without a known lane go to a trailing band that is not emitted as a lane.
func Place(d *diagram.Diagram, centers []diagram.Point, opts Options) {
	minLeft := math.Inf(1)
	for i, c := range centers {
		minLeft = math.Min(minLeft, c.X-d.Nodes[i].Width/2)
	}
	for i := range centers {
		d.Nodes[i].X = centers[i].X - d.Nodes[i].Width/2 - minLeft + opts.Margin
	}

	laneIndex := make(map[string]int, len(d.Lanes))
	for i, l := range d.Lanes {
		if _, dup := laneIndex[l.ID]; !dup {
			laneIndex[l.ID] = i
		}
	}
	groups := make([][]int, len(d.Lanes)+1)
	for i, n := range d.Nodes {
		g, ok := laneIndex[n.Lane]
		if !ok {
			g = len(d.Lanes)
		}
		groups[g] = append(groups[g], i)
	}

	y, width := 0.0, 0.0
	for g, members := range groups {
		if g == len(d.Lanes) && len(members) == 0 {
			break
		}
		sort.SliceStable(members, func(a, b int) bool {
			ca, cb := centers[members[a]], centers[members[b]]
			if ca.X != cb.X {
				return ca.X < cb.X
			}
			return ca.Y < cb.Y
		})

		slots, rowHeight := pack(d.Nodes, members, opts.NodeSep)
		for _, i := range members {
			width = math.Max(width, d.Nodes[i].Right())
		}

		height := opts.LaneMinHeight
		if n := slotCount(slots); n > 0 {
			height = math.Max(height, float64(n)*(rowHeight+opts.LanePadding)+opts.LanePadding)
		}
		slotHeight := (height - opts.LanePadding) / math.Max(float64(slotCount(slots)), 1)
		for _, i := range members {
			n := &d.Nodes[i]
			n.Y = y + opts.LanePadding/2 + float64(slots[i])*slotHeight + (slotHeight-n.Height)/2
		}

		if g < len(d.Lanes) {
			d.Lanes[g].StartY = y
			d.Lanes[g].Height = height
		}
		y += height
	}

	d.Width = width + opts.Margin
	d.Height = y
	route(d, opts)
}

// pack assigns each member, taken in order, to the first slot row whose last
// node ends at least sep to its left. It returns the slot of every member and
// the tallest member height.
func pack(nodes []diagram.ProcessNode, members []int, sep float64) (map[int]int, float64) {
	slots := make(map[int]int, len(members))
	var ends []float64
	tallest := 0.0
	for _, i := range members {
		n := nodes[i]
		slot := len(ends)
		for s, end := range ends {
			if end+sep <= n.X {
				slot = s
				break
			}
		}
		if slot == len(ends) {
			ends = append(ends, 0)
		}
		ends[slot] = n.Right()
		slots[i] = slot
		tallest = math.Max(tallest, n.Height)
	}
	return slots, tallest
}

func slotCount(slots map[int]int) int {
	n := 0
	for _, s := range slots {
		n = max(n, s+1)
	}
	return n
}
