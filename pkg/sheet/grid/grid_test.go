package grid

import (
	"testing"

	"github.com/matzehuels/procsheet/pkg/diagram"
)

func TestColumnLabel(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "A"},
		{2, "B"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
		{53, "BA"},
		{702, "ZZ"},
		{703, "AAA"},
		{16384, "XFD"},
		{0, ""},
		{-3, ""},
	}
	for _, tt := range tests {
		if got := ColumnLabel(tt.n); got != tt.want {
			t.Errorf("ColumnLabel(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestCellRef(t *testing.T) {
	if got := CellRef(28, 7); got != "AB7" {
		t.Errorf("CellRef(28, 7) = %q, want AB7", got)
	}
}

func TestCellAnchor(t *testing.T) {
	c := Default()

	// Padded origin (50, 40): column 0 + reserved = 1, row 2 + reserved = 3.
	a := c.CellAnchor(40, 30, 120, 50)
	if a.FromCol != 1 || a.FromRow != 3 {
		t.Errorf("from = (%d, %d), want (1, 3)", a.FromCol, a.FromRow)
	}
	// Far edge (170, 90): ceil(170/64)+1 = 4, ceil(90/20)+1 = 6.
	if a.ToCol != 4 || a.ToRow != 6 {
		t.Errorf("to = (%d, %d), want (4, 6)", a.ToCol, a.ToRow)
	}
	if a.From != (Marker{Col: 1, ColOff: 50 * EMUPerPixel, Row: 3, RowOff: 0}) {
		t.Errorf("From marker = %+v", a.From)
	}
	if a.To != (Marker{Col: 3, ColOff: 42 * EMUPerPixel, Row: 5, RowOff: 10 * EMUPerPixel}) {
		t.Errorf("To marker = %+v", a.To)
	}
	if a.Width != 120*EMUPerPixel || a.Height != 50*EMUPerPixel {
		t.Errorf("size = %dx%d", a.Width, a.Height)
	}
	if a.X != (50+64)*EMUPerPixel || a.Y != (40+20)*EMUPerPixel {
		t.Errorf("offset = (%d, %d)", a.X, a.Y)
	}
}

func TestCellAnchorBoundary(t *testing.T) {
	c := Config{ColumnWidthPx: 64, RowHeightPx: 20, EMUPerPixel: EMUPerPixel}

	a := c.CellAnchor(0, 0, 64, 20)
	if a.ToCol != 2 || a.ToRow != 2 {
		t.Errorf("to = (%d, %d), want (2, 2)", a.ToCol, a.ToRow)
	}
	if a.To.Col != 1 || a.To.ColOff != 64*EMUPerPixel {
		t.Errorf("To marker = %+v, want column 1 filled to its edge", a.To)
	}
}

func TestCellAnchorMonotonic(t *testing.T) {
	c := Default()
	rects := [][4]float64{
		{0, 0, 0, 0},
		{54, 10, 0, 0},
		{3.7, 91.2, 0.1, 0.1},
		{100, 100, -20, -5},
		{1000, 2000, 640, 480},
		{63.99, 19.99, 0.02, 0.02},
	}
	for _, r := range rects {
		a := c.CellAnchor(r[0], r[1], r[2], r[3])
		if a.ToCol < a.FromCol || a.ToRow < a.FromRow {
			t.Errorf("%v: to (%d,%d) before from (%d,%d)", r, a.ToCol, a.ToRow, a.FromCol, a.FromRow)
		}
		if a.To.Col < a.From.Col || a.To.Row < a.From.Row {
			t.Errorf("%v: markers out of order: %+v %+v", r, a.From, a.To)
		}
		if a.Width < 1 || a.Height < 1 {
			t.Errorf("%v: size %dx%d below 1 EMU", r, a.Width, a.Height)
		}
		if a.FromCol < 1 || a.FromRow < 1 {
			t.Errorf("%v: anchored into reserved column or row", r)
		}
	}
}

func TestConnectorAnchor(t *testing.T) {
	c := Default()
	pts := []diagram.Point{{X: 160, Y: 55}, {X: 190, Y: 55}, {X: 190, Y: 15}, {X: 220, Y: 15}}

	a, local := c.ConnectorAnchor(pts)
	want := c.CellAnchor(160, 15, 60, 40)
	if a != want {
		t.Errorf("anchor = %+v, want %+v", a, want)
	}
	if len(local) != len(pts) {
		t.Fatalf("len(local) = %d", len(local))
	}
	if local[0] != (EMUPoint{X: 0, Y: 40 * EMUPerPixel}) {
		t.Errorf("local[0] = %+v", local[0])
	}
	if local[3] != (EMUPoint{X: 60 * EMUPerPixel, Y: 0}) {
		t.Errorf("local[3] = %+v", local[3])
	}
}

func TestConnectorAnchorStraightLine(t *testing.T) {
	a, _ := Default().ConnectorAnchor([]diagram.Point{{X: 0, Y: 50}, {X: 100, Y: 50}})
	if a.Height != 1 {
		t.Errorf("Height = %d, want 1 for a horizontal line", a.Height)
	}
}

func TestLaneRows(t *testing.T) {
	c := Default()
	tests := []struct {
		startY, height float64
		first, last    int
	}{
		{0, 100, 2, 6},
		{100, 100, 7, 11},
		{0, 0, 2, 2},
		{5, 3, 2, 2},
	}
	for _, tt := range tests {
		first, last := c.LaneRows(tt.startY, tt.height)
		if first != tt.first || last != tt.last {
			t.Errorf("LaneRows(%v, %v) = (%d, %d), want (%d, %d)",
				tt.startY, tt.height, first, last, tt.first, tt.last)
		}
	}
}

func TestLaneRowsAlignWithShapes(t *testing.T) {
	c := Default()
	first, last := c.LaneRows(100, 100)
	a := c.CellAnchor(40, 130, 120, 40)
	// Sheet row = marker row + 1.
	if a.From.Row+1 < first || a.To.Row+1 > last {
		t.Errorf("shape rows %d..%d outside lane rows %d..%d", a.From.Row+1, a.To.Row+1, first, last)
	}
}

func TestGridExtent(t *testing.T) {
	cols, rows := Default().GridExtent(640, 200)
	if cols != 12 || rows != 12 {
		t.Errorf("GridExtent = (%d, %d), want (12, 12)", cols, rows)
	}
	cols, rows = Default().GridExtent(0, 0)
	if cols < 2 || rows < 2 {
		t.Errorf("GridExtent(0, 0) = (%d, %d)", cols, rows)
	}
}

func TestGridExtentLimits(t *testing.T) {
	c := Default()
	tests := []struct {
		name          string
		width, height float64
		cols, rows    int
		exceeds       bool
	}{
		{"small", 640, 200, 12, 12, false},
		{"last column", float64(MaxColumns-1)*64 - 20, 200, MaxColumns, 12, false},
		{"too wide", 2_000_000, 200, MaxColumns, 12, true},
		{"too tall", 640, 30_000_000, 12, MaxRows, true},
		{"absurd", 1e300, 1e300, MaxColumns, MaxRows, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, rows := c.GridExtent(tt.width, tt.height)
			if cols != tt.cols || rows != tt.rows {
				t.Errorf("GridExtent = (%d, %d), want (%d, %d)", cols, rows, tt.cols, tt.rows)
			}
			if got := c.ExceedsLimits(tt.width, tt.height); got != tt.exceeds {
				t.Errorf("ExceedsLimits = %v, want %v", got, tt.exceeds)
			}
		})
	}
}

func TestLastColumnLabel(t *testing.T) {
	if got := ColumnLabel(MaxColumns); got != "XFD" {
		t.Errorf("ColumnLabel(MaxColumns) = %q, want XFD", got)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
	bad := Default()
	bad.RowHeightPx = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero row height")
	}
	bad = Default()
	bad.EMUPerPixel = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero EMU multiplier")
	}
}

func TestColumnWidthChars(t *testing.T) {
	if got := Default().ColumnWidthChars(); got != 8.43 {
		t.Errorf("ColumnWidthChars() = %v, want 8.43", got)
	}
	if got := Default().RowHeightPt(); got != 15 {
		t.Errorf("RowHeightPt() = %v, want 15", got)
	}
}
