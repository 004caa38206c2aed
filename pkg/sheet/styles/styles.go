// Package styles builds the workbook style table for lane backgrounds.
//
// Style id 0 is the workbook default and means "no fill". Each distinct lane
// color gets one solid fill and one cell format, allocated in input order,
// so input color i always maps to style id i+1.
package styles

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/procsheet/pkg/sheet/color"
	"github.com/matzehuels/procsheet/pkg/sheet/opc"
)

// NoFill is the style id of unpainted cells.
const NoFill = 0

// builtinFills are the two fills every style table must start with.
const builtinFills = 2

// Table is an immutable style table.
type Table struct {
	colors []string
}

// Build allocates one style per color. Colors must be normalized 6-digit hex
// values without duplicates; see [Distinct] and color.NormalizeHex.
func Build(colors []string) (*Table, error) {
	seen := make(map[string]bool, len(colors))
	for i, c := range colors {
		if color.NormalizeHex(c, "") != c {
			return nil, fmt.Errorf("color %d: %q is not a normalized hex color", i, c)
		}
		if seen[c] {
			return nil, fmt.Errorf("color %d: duplicate %s", i, c)
		}
		seen[c] = true
	}
	return &Table{colors: append([]string(nil), colors...)}, nil
}

// Len returns the number of allocated fill styles.
func (t *Table) Len() int { return len(t.colors) }

// StyleID returns the style id for input color i.
func (t *Table) StyleID(i int) int {
	if i < 0 || i >= len(t.colors) {
		return NoFill
	}
	return i + 1
}

// Lookup returns the style id for a normalized color, or NoFill.
func (t *Table) Lookup(hex string) int {
	for i, c := range t.colors {
		if c == hex {
			return t.StyleID(i)
		}
	}
	return NoFill
}

// XML renders the styles part.
func (t *Table) XML() ([]byte, error) {
	doc, root := opc.NewDocument("styleSheet", opc.NSSpreadsheet)

	fonts := counted(root, "fonts", 2)
	font(fonts, false)
	font(fonts, true)

	fills := counted(root, "fills", builtinFills+len(t.colors))
	opc.Leaf(fills.CreateElement("fill"), "patternFill", "patternType", "none")
	opc.Leaf(fills.CreateElement("fill"), "patternFill", "patternType", "gray125")
	for _, c := range t.colors {
		pf := opc.Leaf(fills.CreateElement("fill"), "patternFill", "patternType", "solid")
		opc.Leaf(pf, "fgColor", "rgb", "FF"+c)
		opc.Leaf(pf, "bgColor", "indexed", "64")
	}

	borders := counted(root, "borders", 1)
	border := borders.CreateElement("border")
	for _, side := range []string{"left", "right", "top", "bottom", "diagonal"} {
		border.CreateElement(side)
	}

	styleXfs := counted(root, "cellStyleXfs", 1)
	opc.Leaf(styleXfs, "xf", "numFmtId", "0", "fontId", "0", "fillId", "0", "borderId", "0")

	cellXfs := counted(root, "cellXfs", 1+len(t.colors))
	opc.Leaf(cellXfs, "xf", "numFmtId", "0", "fontId", "0", "fillId", "0", "borderId", "0", "xfId", "0")
	for i := range t.colors {
		xf := opc.Leaf(cellXfs, "xf",
			"numFmtId", "0",
			"fontId", "1",
			"fillId", strconv.Itoa(builtinFills+i),
			"borderId", "0",
			"xfId", "0",
			"applyFont", "1",
			"applyFill", "1",
			"applyAlignment", "1")
		opc.Leaf(xf, "alignment", "vertical", "center")
	}

	cellStyles := counted(root, "cellStyles", 1)
	opc.Leaf(cellStyles, "cellStyle", "name", "Normal", "xfId", "0", "builtinId", "0")

	return doc.WriteToBytes()
}

// Distinct returns colors without duplicates, in order of first appearance.
func Distinct(colors []string) []string {
	seen := make(map[string]bool, len(colors))
	out := make([]string, 0, len(colors))
	for _, c := range colors {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
