package diagram

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
)

const sampleJSON = `{
  "name": "Order to cash",
  "width": 640,
  "height": 200,
  "lanes": [{"id": "sales", "name": "Sales", "start_y": 0, "height": 100, "fill_color": "#4a90d9"}],
  "nodes": [{"id": "t1", "kind": "task", "label": "Receive order", "x": 40, "y": 30, "width": 120, "height": 50}],
  "edges": [{"id": "e1", "source": "t1", "target": "t2", "waypoints": [{"x": 160, "y": 55}, {"x": 220, "y": 55}]}]
}`

const sampleYAML = `name: Order to cash
width: 640
height: 200
lanes:
  - id: sales
    name: Sales
    start_y: 0
    height: 100
    fill_color: "#4a90d9"
nodes:
  - id: t1
    kind: task
    label: Receive order
    x: 40
    y: 30
    width: 120
    height: 50
edges:
  - id: e1
    source: t1
    target: t2
    waypoints:
      - {x: 160, y: 55}
      - {x: 220, y: 55}
`

func checkSample(t *testing.T, d *Diagram) {
	t.Helper()
	if d.Name != "Order to cash" {
		t.Errorf("Name = %q", d.Name)
	}
	if len(d.Lanes) != 1 || d.Lanes[0].FillColor != "#4a90d9" || d.Lanes[0].Height != 100 {
		t.Errorf("Lanes = %+v", d.Lanes)
	}
	if len(d.Nodes) != 1 {
		t.Fatalf("len(Nodes) = %d, want 1", len(d.Nodes))
	}
	n := d.Nodes[0]
	if n.Kind != KindTask || n.X != 40 || n.Y != 30 || n.Width != 120 || n.Height != 50 {
		t.Errorf("node = %+v", n)
	}
	if len(d.Edges) != 1 || len(d.Edges[0].Waypoints) != 2 || d.Edges[0].Waypoints[1].X != 220 {
		t.Errorf("Edges = %+v", d.Edges)
	}
}

func TestReadJSON(t *testing.T) {
	d, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	checkSample(t, d)
}

func TestReadYAML(t *testing.T) {
	d, err := ReadYAML(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("ReadYAML: %v", err)
	}
	checkSample(t, d)
}

func TestReadJSONNormalizesSlices(t *testing.T) {
	d, err := ReadJSON(strings.NewReader(`{"name": "empty"}`))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if d.Lanes == nil || d.Nodes == nil || d.Edges == nil {
		t.Error("nil slices after ReadJSON")
	}
}

func TestReadJSONMalformed(t *testing.T) {
	if _, err := ReadJSON(strings.NewReader(`{"nodes": [`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	d, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteJSON(d, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	back, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	checkSample(t, back)
}

func TestFileRoundTrip(t *testing.T) {
	d, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	for _, name := range []string{"d.json", "d.yaml", "d.yml"} {
		path := filepath.Join(dir, name)
		if err := WriteFile(d, path); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
		back, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", name, err)
		}
		checkSample(t, back)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile(missing) error = %v, want not-exist", err)
	}
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]Format{
		"a.json": FormatJSON,
		"a.YAML": FormatYAML,
		"a.yml":  FormatYAML,
		"a":      FormatJSON,
	}
	for path, want := range tests {
		if got := FormatForPath(path); got != want {
			t.Errorf("FormatForPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestExampleDiagrams(t *testing.T) {
	tests := []struct {
		file       string
		nodes      int
		positioned bool
	}{
		{"onboarding.yaml", 7, false},
		{"order-to-cash.json", 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			d, err := ReadFile(filepath.Join("..", "..", "examples", tt.file))
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if len(d.Nodes) != tt.nodes {
				t.Errorf("nodes = %d, want %d", len(d.Nodes), tt.nodes)
			}
			if got := d.Positioned(); got != tt.positioned {
				t.Errorf("Positioned() = %v, want %v", got, tt.positioned)
			}
			for _, f := range Lint(d) {
				if f.Severity == SeverityWarning {
					t.Errorf("unexpected finding: %s", f)
				}
			}
		})
	}
}

func TestReadYAMLFlowLabels(t *testing.T) {
	src := `nodes:
  - {id: signed, kind: gateway, label: "Signed?", lane: hr}
  - {id: plan, kind: task, label: "First-week plan: IT, desk", lane: mgr}
`
	d, err := ReadYAML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadYAML: %v", err)
	}
	if got := d.Nodes[0].Label; got != "Signed?" {
		t.Errorf("label = %q, want %q", got, "Signed?")
	}
	if got := d.Nodes[1].Label; got != "First-week plan: IT, desk" {
		t.Errorf("label = %q", got)
	}
}
