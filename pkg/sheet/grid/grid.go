// Package grid maps diagram pixel space onto the worksheet cell grid.
//
// A drawing object in a spreadsheet is placed by two cell markers (the cell
// that holds its top-left corner and the cell that holds its bottom-right
// corner) plus sub-cell offsets in EMU. [Config] carries the four constants
// that every stage of an export must agree on: column width, row height,
// padding and the pixel-to-EMU multiplier. Lane backgrounds painted by the
// worksheet builder only line up with shapes when both are computed from the
// same Config.
//
// Column 0 and row 0 are reserved for lane labels and headers, so pixel (0, 0)
// lands in cell B2.
package grid

import (
	"math"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/procsheet/pkg/diagram"
)

// Default grid constants. The column width matches a stock spreadsheet column
// (8.43 characters) and the row height a stock 15pt row.
const (
	DefaultColumnWidthPx = 64
	DefaultRowHeightPx   = 20
	DefaultPaddingPx     = 10
	EMUPerPixel          = 9525
)

// Worksheet size limits. Column XFD is the last addressable column.
const (
	MaxColumns = 16384
	MaxRows    = 1048576
)

// Config is the immutable set of grid constants shared by every export stage.
type Config struct {
	ColumnWidthPx float64 `toml:"column_width_px" json:"column_width_px"`
	RowHeightPx   float64 `toml:"row_height_px" json:"row_height_px"`
	PaddingPx     float64 `toml:"padding_px" json:"padding_px"`
	EMUPerPixel   int64   `toml:"emu_per_pixel" json:"emu_per_pixel"`
}

// Default returns the stock grid configuration.
func Default() Config {
	return Config{
		ColumnWidthPx: DefaultColumnWidthPx,
		RowHeightPx:   DefaultRowHeightPx,
		PaddingPx:     DefaultPaddingPx,
		EMUPerPixel:   EMUPerPixel,
	}
}

// Validate implements validation.Validatable.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ColumnWidthPx, validation.Required, validation.Min(6.0)),
		validation.Field(&c.RowHeightPx, validation.Required, validation.Min(1.0)),
		validation.Field(&c.PaddingPx, validation.Min(0.0)),
		validation.Field(&c.EMUPerPixel, validation.Required, validation.Min(int64(1))),
	)
}

// EMU converts a pixel length to EMU.
func (c Config) EMU(px float64) int64 {
	return int64(math.Round(px * float64(c.EMUPerPixel)))
}

// ColumnWidthChars returns the column width in the character units used by
// the worksheet <col> element.
func (c Config) ColumnWidthChars() float64 {
	return math.Trunc((c.ColumnWidthPx-5)/7*100+0.5) / 100
}

// RowHeightPt returns the row height in points.
func (c Config) RowHeightPt() float64 {
	return c.RowHeightPx * 0.75
}

// Marker is a cell position plus an EMU offset into that cell. Col and Row are
// zero-based, as written in drawing markup.
type Marker struct {
	Col    int
	ColOff int64
	Row    int
	RowOff int64
}

// Anchor is the placement of a drawable element on the grid.
type Anchor struct {
	// FromCol/FromRow are the first covered cells; ToCol/ToRow are the
	// ceiling bound of the far edge. Both use the reserved-column numbering,
	// so no element is ever anchored into column 0.
	FromCol, FromRow int
	ToCol, ToRow     int

	From, To Marker

	// X and Y are the absolute EMU position of the top-left corner.
	X, Y int64
	// Width and Height are in EMU and never below 1.
	Width, Height int64
}

// EMUPoint is a point in EMU.
type EMUPoint struct {
	X, Y int64
}

// CellAnchor anchors the pixel rectangle (x, y, w, h). Padding is applied to
// the origin; negative sizes are treated as zero.
func (c Config) CellAnchor(x, y, w, h float64) Anchor {
	w, h = math.Max(w, 0), math.Max(h, 0)
	px, py := x+c.PaddingPx, y+c.PaddingPx

	a := Anchor{
		FromCol: int(math.Floor(px/c.ColumnWidthPx)) + 1,
		FromRow: int(math.Floor(py/c.RowHeightPx)) + 1,
		ToCol:   int(math.Ceil((px+w)/c.ColumnWidthPx)) + 1,
		ToRow:   int(math.Ceil((py+h)/c.RowHeightPx)) + 1,
		X:       c.EMU(px + c.ColumnWidthPx),
		Y:       c.EMU(py + c.RowHeightPx),
		Width:   max(1, c.EMU(w)),
		Height:  max(1, c.EMU(h)),
	}
	if a.ToCol < a.FromCol {
		a.ToCol = a.FromCol
	}
	if a.ToRow < a.FromRow {
		a.ToRow = a.FromRow
	}

	a.From = Marker{
		Col:    a.FromCol,
		ColOff: c.EMU(px - float64(a.FromCol-1)*c.ColumnWidthPx),
		Row:    a.FromRow,
		RowOff: c.EMU(py - float64(a.FromRow-1)*c.RowHeightPx),
	}
	// The far edge sits in the cell before the ceiling bound. When it falls
	// exactly on a boundary the offset equals the full cell size.
	toCol := max(a.ToCol-1, a.FromCol)
	toRow := max(a.ToRow-1, a.FromRow)
	a.To = Marker{
		Col:    toCol,
		ColOff: c.EMU(px + w - float64(toCol-1)*c.ColumnWidthPx),
		Row:    toRow,
		RowOff: c.EMU(py + h - float64(toRow-1)*c.RowHeightPx),
	}
	return a
}

// ConnectorAnchor anchors the bounding box of points and returns the points
// translated to EMU relative to the box origin.
func (c Config) ConnectorAnchor(points []diagram.Point) (Anchor, []EMUPoint) {
	if len(points) == 0 {
		return c.CellAnchor(0, 0, 0, 0), nil
	}

	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	local := make([]EMUPoint, len(points))
	for i, p := range points {
		local[i] = EMUPoint{X: c.EMU(p.X - minX), Y: c.EMU(p.Y - minY)}
	}
	return c.CellAnchor(minX, minY, maxX-minX, maxY-minY), local
}

// LaneRows returns the 1-based worksheet rows covered by a lane band starting
// at startY with the given height. At least one row is always returned.
func (c Config) LaneRows(startY, height float64) (first, last int) {
	top := startY + c.PaddingPx
	bottom := top + math.Max(height, 0)

	// Row index i (0-based, as in markers) is worksheet row i+1.
	first = int(math.Floor(top/c.RowHeightPx)) + 2
	last = int(math.Floor(bottom/c.RowHeightPx)) + 1
	if last < first {
		last = first
	}
	return first, last
}

// GridExtent returns the number of columns and rows needed to cover a diagram
// of the given pixel size, including the reserved label column and header row
// and padding on both sides. The result is capped at [MaxColumns] and
// [MaxRows]; use [Config.ExceedsLimits] to detect truncation.
func (c Config) GridExtent(width, height float64) (cols, rows int) {
	w, h := c.extent(width, height)
	return int(math.Min(w, MaxColumns)), int(math.Min(h, MaxRows))
}

// ExceedsLimits reports whether a diagram of the given pixel size needs more
// columns or rows than a worksheet can hold.
func (c Config) ExceedsLimits(width, height float64) bool {
	w, h := c.extent(width, height)
	return w > MaxColumns || h > MaxRows
}

// extent is the uncapped grid size. It stays in float64 so huge diagrams
// cannot overflow int.
func (c Config) extent(width, height float64) (cols, rows float64) {
	cols = math.Ceil((math.Max(width, 0)+2*c.PaddingPx)/c.ColumnWidthPx) + 1
	rows = math.Ceil((math.Max(height, 0)+2*c.PaddingPx)/c.RowHeightPx) + 1
	return math.Max(cols, 2), math.Max(rows, 2)
}

// ColumnLabel converts a 1-based column index to its letter label:
// 1 is "A", 26 is "Z", 27 is "AA". Indices below 1 yield "".
func ColumnLabel(n int) string {
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		n--
		i--
		buf[i] = byte('A' + n%26)
		n /= 26
	}
	return string(buf[i:])
}

// CellRef returns the A1-style reference for a 1-based column and row.
func CellRef(col, row int) string {
	return ColumnLabel(col) + strconv.Itoa(row)
}
