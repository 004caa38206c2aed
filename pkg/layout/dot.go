package layout

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/procsheet/pkg/diagram"
)

// pointsPerInch converts between Graphviz inches and points. Pixels are
// treated as points.
const pointsPerInch = 72

// ToDOT converts d to a DOT graph. Node i is named "n<i>" so that diagram
// ids never need quoting; sizes are fixed so dot places boxes of exactly the
// size the exporter will draw.
func ToDOT(d *diagram.Diagram, sizes []diagram.PixelRect, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(opts.RankSep))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(opts.NodeSep))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("\n")

	index := make(map[string]int, len(d.Nodes))
	for i, n := range d.Nodes {
		index[n.ID] = i
		fmt.Fprintf(&buf, "  n%d [width=%s, height=%s];\n", i, inches(sizes[i].Width), inches(sizes[i].Height))
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		s, okS := index[e.Source]
		t, okT := index[e.Target]
		if !okS || !okT || s == t {
			continue
		}
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", s, t)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func inches(px float64) string {
	return strconv.FormatFloat(px/pointsPerInch, 'f', 4, 64)
}

// RenderDOT runs dot on src and returns the annotated DOT output.
func RenderDOT(ctx context.Context, src string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	nodeStmtRe = regexp.MustCompile(`(?m)^\s*n(\d+)\s*\[([^\]]*)\]`)
	posRe      = regexp.MustCompile(`\bpos="(-?[0-9.e+]+),(-?[0-9.e+]+)!?"`)
	bbRe       = regexp.MustCompile(`\bbb="(-?[0-9.]+),(-?[0-9.]+),(-?[0-9.]+),(-?[0-9.]+)"`)
)

// ParsePositions extracts node centers from dot output, indexed like the
// nodes passed to [ToDOT]. The y axis is flipped so that it grows downward.
func ParsePositions(out []byte, n int) ([]diagram.Point, error) {
	bb := bbRe.FindSubmatch(out)
	if bb == nil {
		return nil, fmt.Errorf("no bounding box in layout output")
	}
	top, err := strconv.ParseFloat(string(bb[4]), 64)
	if err != nil {
		return nil, fmt.Errorf("bounding box: %w", err)
	}

	pts := make([]diagram.Point, n)
	seen := make([]bool, n)
	for _, m := range nodeStmtRe.FindAllSubmatch(out, -1) {
		i, err := strconv.Atoi(string(m[1]))
		if err != nil || i >= n {
			continue
		}
		attrs := strings.ReplaceAll(string(m[2]), "\\\n", "")
		pos := posRe.FindStringSubmatch(attrs)
		if pos == nil {
			continue
		}
		x, errX := strconv.ParseFloat(pos[1], 64)
		y, errY := strconv.ParseFloat(pos[2], 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("node n%d: bad position %q", i, pos[0])
		}
		pts[i] = diagram.Point{X: x, Y: top - y}
		seen[i] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("node n%d: no position in layout output", i)
		}
	}
	return pts, nil
}
