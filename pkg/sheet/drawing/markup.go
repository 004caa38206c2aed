package drawing

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/matzehuels/procsheet/pkg/sheet/grid"
	"github.com/matzehuels/procsheet/pkg/sheet/opc"
)

func marker(el *etree.Element, m grid.Marker) {
	el.CreateElement("xdr:col").SetText(strconv.Itoa(m.Col))
	el.CreateElement("xdr:colOff").SetText(itoa(m.ColOff))
	el.CreateElement("xdr:row").SetText(strconv.Itoa(m.Row))
	el.CreateElement("xdr:rowOff").SetText(itoa(m.RowOff))
}

func xfrm(spPr *etree.Element, a grid.Anchor) {
	x := spPr.CreateElement("a:xfrm")
	opc.Leaf(x, "a:off", "x", itoa(a.X), "y", itoa(a.Y))
	opc.Leaf(x, "a:ext", "cx", itoa(a.Width), "cy", itoa(a.Height))
}

func solidFill(parent *etree.Element, rgb string) {
	opc.Leaf(parent.CreateElement("a:solidFill"), "a:srgbClr", "val", rgb)
}

func outline(spPr *etree.Element) *etree.Element {
	ln := opc.Leaf(spPr, "a:ln", "w", strconv.Itoa(LineWidthEMU))
	solidFill(ln, LineColor)
	return ln
}

// path writes a custom geometry through pts, which are local to the anchor.
func path(spPr *etree.Element, a grid.Anchor, pts []grid.EMUPoint) {
	geom := spPr.CreateElement("a:custGeom")
	for _, tag := range []string{"a:avLst", "a:gdLst", "a:ahLst", "a:cxnLst"} {
		geom.CreateElement(tag)
	}
	opc.Leaf(geom, "a:rect", "l", "0", "t", "0", "r", "r", "b", "b")

	p := opc.Leaf(geom.CreateElement("a:pathLst"), "a:path", "w", itoa(a.Width), "h", itoa(a.Height))
	for i, pt := range pts {
		tag := "a:lnTo"
		if i == 0 {
			tag = "a:moveTo"
		}
		opc.Leaf(p.CreateElement(tag), "a:pt", "x", itoa(pt.X), "y", itoa(pt.Y))
	}
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
