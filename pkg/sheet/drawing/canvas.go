// Package drawing emits the drawing part that carries one native shape per
// process node and one connector per routed edge.
//
// A [Canvas] is created per export. It hands out object ids from a single
// counter starting at 2 (id 1 belongs to the drawing itself), so shapes and
// connectors never collide, and it remembers which shape each node became so
// that connectors added later can be glued to them.
package drawing

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"github.com/matzehuels/procsheet/pkg/diagram"
	"github.com/matzehuels/procsheet/pkg/sheet/grid"
	"github.com/matzehuels/procsheet/pkg/sheet/opc"
)

// Fixed line and text styling.
const (
	LineWidthEMU = 12700 // 1pt
	LineColor    = "333333"
	TextColor    = "000000"
	TextSize     = 1000 // hundredths of a point
)

// firstID is the first object id handed out; id 1 is reserved.
const firstID = 2

type placed struct {
	id     int
	preset Preset
}

// Canvas accumulates drawing objects. It is not safe for concurrent use.
type Canvas struct {
	// Warnings collects tolerated data problems met while drawing.
	Warnings []string

	cfg    grid.Config
	doc    *etree.Document
	root   *etree.Element
	nextID int
	shapes map[string]placed

	shapeCount     int
	connectorCount int
}

// NewCanvas returns an empty canvas using cfg for all placement.
func NewCanvas(cfg grid.Config) *Canvas {
	doc, root := opc.NewDocument("xdr:wsDr", "")
	root.CreateAttr("xmlns:xdr", opc.NSSheetDrawing)
	root.CreateAttr("xmlns:a", opc.NSDrawing)
	return &Canvas{
		cfg:    cfg,
		doc:    doc,
		root:   root,
		nextID: firstID,
		shapes: make(map[string]placed),
	}
}

// Shapes returns the number of shapes drawn.
func (c *Canvas) Shapes() int { return c.shapeCount }

// Connectors returns the number of connectors drawn.
func (c *Canvas) Connectors() int { return c.connectorCount }

// ShapeID returns the id of the shape drawn for node id. When several nodes
// share an id the last one drawn wins.
func (c *Canvas) ShapeID(nodeID string) (int, bool) {
	p, ok := c.shapes[nodeID]
	return p.id, ok
}

func (c *Canvas) allocID() int {
	id := c.nextID
	c.nextID++
	return id
}

func (c *Canvas) warnf(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// AddShape draws n and returns its object id.
func (c *Canvas) AddShape(n diagram.ProcessNode) int {
	st, known := styleFor(n.Kind)
	if !known {
		c.warnf("node %s: unknown kind %q, drawn as task", n.ID, n.Kind)
	}

	id := c.allocID()
	a := c.cfg.CellAnchor(n.X, n.Y, n.Width, n.Height)
	anchor := c.anchor(a)

	sp := opc.Leaf(anchor, "xdr:sp", "macro", "", "textlink", "")
	nv := sp.CreateElement("xdr:nvSpPr")
	opc.Leaf(nv, "xdr:cNvPr", "id", strconv.Itoa(id), "name", st.title+" "+strconv.Itoa(id), "descr", n.ID)
	nv.CreateElement("xdr:cNvSpPr")

	spPr := sp.CreateElement("xdr:spPr")
	xfrm(spPr, a)
	opc.Leaf(spPr, "a:prstGeom", "prst", string(st.preset)).CreateElement("a:avLst")
	solidFill(spPr, st.fill)
	outline(spPr)

	body := sp.CreateElement("xdr:txBody")
	opc.Leaf(body, "a:bodyPr", "vertOverflow", "clip", "wrap", "square", "rtlCol", "0", "anchor", "ctr")
	body.CreateElement("a:lstStyle")
	p := body.CreateElement("a:p")
	opc.Leaf(p, "a:pPr", "algn", "ctr")
	run := p.CreateElement("a:r")
	solidFill(opc.Leaf(run, "a:rPr", "lang", "en-US", "sz", strconv.Itoa(TextSize)), TextColor)
	run.CreateElement("a:t").SetText(n.Label)

	anchor.CreateElement("xdr:clientData")

	c.shapes[n.ID] = placed{id: id, preset: st.preset}
	c.shapeCount++
	return id
}

// AddConnector draws e as a polyline connector through its waypoints. Edges
// with fewer than two waypoints are skipped and false is returned. Ends
// whose node was drawn are glued to it; other ends are left free.
func (c *Canvas) AddConnector(e diagram.Edge) bool {
	if !e.Drawable() {
		return false
	}

	id := c.allocID()
	a, local := c.cfg.ConnectorAnchor(e.Waypoints)
	side := SelectSide(e.Waypoints[0], e.Waypoints[len(e.Waypoints)-1])
	anchor := c.anchor(a)

	cxn := opc.Leaf(anchor, "xdr:cxnSp", "macro", "")
	nv := cxn.CreateElement("xdr:nvCxnSpPr")
	opc.Leaf(nv, "xdr:cNvPr", "id", strconv.Itoa(id), "name", "Connector "+strconv.Itoa(id), "descr", e.ID)
	glue := nv.CreateElement("xdr:cNvCxnSpPr")
	c.glue(glue, "a:stCxn", e.ID, "source", e.Source, side)
	// The line enters the target from the far side of the dominant axis.
	c.glue(glue, "a:endCxn", e.ID, "target", e.Target, side.Opposite())

	spPr := cxn.CreateElement("xdr:spPr")
	xfrm(spPr, a)
	path(spPr, a, local)
	ln := outline(spPr)
	opc.Leaf(ln, "a:tailEnd", "type", "triangle")

	anchor.CreateElement("xdr:clientData")

	c.connectorCount++
	return true
}

func (c *Canvas) glue(parent *etree.Element, tag, edgeID, end, nodeID string, side Side) {
	if nodeID == "" {
		return
	}
	p, ok := c.shapes[nodeID]
	if !ok {
		c.warnf("edge %s: %s %q not drawn, end left free", edgeID, end, nodeID)
		return
	}
	opc.Leaf(parent, tag, "id", strconv.Itoa(p.id), "idx", strconv.Itoa(p.preset.SiteIndex(side)))
}

// XML renders the drawing part.
func (c *Canvas) XML() ([]byte, error) {
	return c.doc.WriteToBytes()
}

func (c *Canvas) anchor(a grid.Anchor) *etree.Element {
	el := c.root.CreateElement("xdr:twoCellAnchor")
	marker(el.CreateElement("xdr:from"), a.From)
	marker(el.CreateElement("xdr:to"), a.To)
	return el
}
