package styles

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/matzehuels/procsheet/pkg/sheet/opc"
)

func counted(parent *etree.Element, tag string, n int) *etree.Element {
	return opc.Leaf(parent, tag, "count", strconv.Itoa(n))
}

func font(parent *etree.Element, bold bool) {
	f := parent.CreateElement("font")
	if bold {
		f.CreateElement("b")
	}
	opc.Leaf(f, "sz", "val", "11")
	opc.Leaf(f, "color", "theme", "1")
	opc.Leaf(f, "name", "val", "Calibri")
	opc.Leaf(f, "family", "val", "2")
}
