// Package worksheet emits the workbook and worksheet parts.
//
// The worksheet paints lane bands as runs of styled rows and writes each
// lane's name once, in the reserved label column, at the band's middle row.
// Rows outside any band are emitted empty, so the part grows with the lanes
// rather than with the full grid.
package worksheet

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/matzehuels/procsheet/pkg/sheet/grid"
	"github.com/matzehuels/procsheet/pkg/sheet/opc"
)

// Band is a lane converted to worksheet rows.
type Band struct {
	Name     string
	FirstRow int // 1-based, inclusive
	LastRow  int // 1-based, inclusive
	StyleID  int
}

// LabelRow returns the row that carries the lane name.
func (b Band) LabelRow() int {
	return (b.FirstRow + b.LastRow) / 2
}

// Sheet describes the worksheet to emit.
type Sheet struct {
	Cols, Rows   int
	Bands        []Band
	DrawingRelID string // omitted when empty
	Config       grid.Config
}

// owner returns the first band in caller order that contains row.
func (s Sheet) owner(row int) (Band, bool) {
	for _, b := range s.Bands {
		if row >= b.FirstRow && row <= b.LastRow {
			return b, true
		}
	}
	return Band{}, false
}

// Build renders the worksheet part.
func Build(s Sheet) ([]byte, error) {
	cols, rows := max(s.Cols, 1), max(s.Rows, 1)

	doc, root := opc.NewDocument("worksheet", opc.NSSpreadsheet)
	root.CreateAttr("xmlns:r", opc.NSOfficeRels)

	opc.Leaf(root, "dimension", "ref", "A1:"+grid.CellRef(cols, rows))
	opc.Leaf(root.CreateElement("sheetViews"), "sheetView", "workbookViewId", "0")
	opc.Leaf(root, "sheetFormatPr",
		"defaultRowHeight", formatFloat(s.Config.RowHeightPt()),
		"customHeight", "1")
	opc.Leaf(root.CreateElement("cols"), "col",
		"min", "1",
		"max", strconv.Itoa(cols),
		"width", formatFloat(s.Config.ColumnWidthChars()),
		"customWidth", "1")

	data := root.CreateElement("sheetData")
	for r := 1; r <= rows; r++ {
		row := opc.Leaf(data, "row", "r", strconv.Itoa(r))
		band, ok := s.owner(r)
		if !ok {
			continue
		}
		style := strconv.Itoa(band.StyleID)
		for c := 1; c <= cols; c++ {
			cell := opc.Leaf(row, "c", "r", grid.CellRef(c, r), "s", style)
			if c == 1 && r == band.LabelRow() && band.Name != "" {
				inlineString(cell, band.Name)
			}
		}
	}

	if s.DrawingRelID != "" {
		opc.Leaf(root, "drawing", "r:id", s.DrawingRelID)
	}
	return doc.WriteToBytes()
}

func inlineString(cell *etree.Element, text string) {
	cell.CreateAttr("t", "inlineStr")
	cell.CreateElement("is").CreateElement("t").SetText(text)
}

// Workbook renders a single-sheet workbook part whose sheet is related by
// sheetRelID.
func Workbook(sheetName, sheetRelID string) ([]byte, error) {
	doc, root := opc.NewDocument("workbook", opc.NSSpreadsheet)
	root.CreateAttr("xmlns:r", opc.NSOfficeRels)

	opc.Leaf(root.CreateElement("bookViews"), "workbookView")
	opc.Leaf(root.CreateElement("sheets"), "sheet",
		"name", SheetName(sheetName),
		"sheetId", "1",
		"r:id", sheetRelID)
	return doc.WriteToBytes()
}

// DefaultSheetName is used when a diagram name yields no legal sheet name.
const DefaultSheetName = "Process"

const maxSheetName = 31

// SheetName turns name into a legal sheet name: the characters : \ / ? * [ ]
// are replaced by spaces, leading and trailing apostrophes and spaces are
// removed and the result is cut to 31 characters.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return ' '
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	name = strings.Trim(name, "' ")
	if runes := []rune(name); len(runes) > maxSheetName {
		name = strings.TrimRight(string(runes[:maxSheetName]), "' ")
	}
	if name == "" {
		return DefaultSheetName
	}
	return name
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
