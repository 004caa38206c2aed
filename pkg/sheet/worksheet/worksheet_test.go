package worksheet

import (
	"strings"
	"testing"

	"github.com/beevik/etree"

	"github.com/matzehuels/procsheet/pkg/sheet/grid"
)

func parse(t *testing.T, data []byte) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc.Root()
}

func TestBuild(t *testing.T) {
	data, err := Build(Sheet{
		Cols: 4,
		Rows: 12,
		Bands: []Band{
			{Name: "Sales", FirstRow: 2, LastRow: 6, StyleID: 1},
			{Name: "Billing", FirstRow: 7, LastRow: 11, StyleID: 2},
		},
		DrawingRelID: "rId1",
		Config:       grid.Default(),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	root := parse(t, data)

	rows := root.FindElements("sheetData/row")
	if len(rows) != 12 {
		t.Fatalf("len(rows) = %d, want 12", len(rows))
	}
	if len(rows[0].ChildElements()) != 0 || len(rows[11].ChildElements()) != 0 {
		t.Error("rows outside bands must be empty")
	}

	for i := 2; i <= 11; i++ {
		cells := rows[i-1].SelectElements("c")
		if len(cells) != 4 {
			t.Fatalf("row %d: %d cells, want 4", i, len(cells))
		}
		want := "1"
		if i >= 7 {
			want = "2"
		}
		for _, c := range cells {
			if s := c.SelectAttrValue("s", ""); s != want {
				t.Errorf("row %d cell %s style = %s, want %s", i, c.SelectAttrValue("r", ""), s, want)
			}
		}
	}

	labels := map[string]string{}
	for _, c := range root.FindElements("sheetData/row/c[@t='inlineStr']") {
		labels[c.SelectAttrValue("r", "")] = c.FindElement("is/t").Text()
	}
	if len(labels) != 2 || labels["A4"] != "Sales" || labels["A9"] != "Billing" {
		t.Errorf("labels = %v, want A4=Sales A9=Billing", labels)
	}

	if d := root.SelectElement("drawing"); d == nil || d.SelectAttrValue("r:id", "") != "rId1" {
		t.Error("missing drawing reference")
	}
	if got := root.SelectElement("dimension").SelectAttrValue("ref", ""); got != "A1:D12" {
		t.Errorf("dimension = %s", got)
	}
	if got := root.FindElement("cols/col").SelectAttrValue("width", ""); got != "8.43" {
		t.Errorf("col width = %s", got)
	}
}

func TestBuildOverlapFirstBandWins(t *testing.T) {
	data, err := Build(Sheet{
		Cols: 2,
		Rows: 6,
		Bands: []Band{
			{Name: "A", FirstRow: 2, LastRow: 4, StyleID: 1},
			{Name: "B", FirstRow: 3, LastRow: 6, StyleID: 2},
		},
		Config: grid.Default(),
	})
	if err != nil {
		t.Fatal(err)
	}
	root := parse(t, data)
	rows := root.FindElements("sheetData/row")
	if s := rows[3].SelectElement("c").SelectAttrValue("s", ""); s != "1" {
		t.Errorf("row 4 style = %s, want first band's 1", s)
	}
	if s := rows[4].SelectElement("c").SelectAttrValue("s", ""); s != "2" {
		t.Errorf("row 5 style = %s, want 2", s)
	}
	if root.SelectElement("drawing") != nil {
		t.Error("drawing emitted without relationship id")
	}
}

func TestBuildEscapesLabel(t *testing.T) {
	data, err := Build(Sheet{
		Cols:   1,
		Rows:   2,
		Bands:  []Band{{Name: `R&D <core>`, FirstRow: 1, LastRow: 2, StyleID: 1}},
		Config: grid.Default(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "R&amp;D &lt;core&gt;") {
		t.Errorf("label not escaped: %s", data)
	}
	if got := parse(t, data).FindElement("sheetData/row/c/is/t").Text(); got != "R&D <core>" {
		t.Errorf("label = %q", got)
	}
}

func TestBandLabelRow(t *testing.T) {
	tests := []struct {
		first, last, want int
	}{
		{2, 6, 4},
		{7, 11, 9},
		{3, 3, 3},
		{2, 3, 2},
	}
	for _, tt := range tests {
		if got := (Band{FirstRow: tt.first, LastRow: tt.last}).LabelRow(); got != tt.want {
			t.Errorf("LabelRow(%d..%d) = %d, want %d", tt.first, tt.last, got, tt.want)
		}
	}
}

func TestWorkbook(t *testing.T) {
	data, err := Workbook("Order / Cash", "rId1")
	if err != nil {
		t.Fatal(err)
	}
	sheet := parse(t, data).FindElement("sheets/sheet")
	if sheet == nil {
		t.Fatal("missing sheet")
	}
	if got := sheet.SelectAttrValue("name", ""); got != "Order   Cash" {
		t.Errorf("name = %q", got)
	}
	if got := sheet.SelectAttrValue("r:id", ""); got != "rId1" {
		t.Errorf("r:id = %q", got)
	}
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Order to cash", "Order to cash"},
		{"", DefaultSheetName},
		{"[]:*?", DefaultSheetName},
		{"'quoted'", "quoted"},
		{"a/b\\c", "a b c"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
	}
	for _, tt := range tests {
		if got := SheetName(tt.in); got != tt.want {
			t.Errorf("SheetName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
