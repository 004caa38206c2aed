package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/procsheet/pkg/cache"
	"github.com/matzehuels/procsheet/pkg/diagram"
	"github.com/matzehuels/procsheet/pkg/errors"
	"github.com/matzehuels/procsheet/pkg/layout"
	"github.com/matzehuels/procsheet/pkg/sheet/grid"
	"github.com/matzehuels/procsheet/pkg/store"
)

// mapCache is an in-memory Cache that counts operations.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = data
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) Close() error { return nil }

func positioned() *diagram.Diagram {
	return &diagram.Diagram{
		Name: "Expense claim",
		Lanes: []diagram.LaneBand{
			{ID: "emp", Name: "Employee", StartY: 0, Height: 100},
		},
		Nodes: []diagram.ProcessNode{
			{ID: "a", Kind: diagram.KindTask, Label: "Submit", PixelRect: diagram.PixelRect{X: 20, Y: 25, Width: 120, Height: 50}},
			{ID: "b", Kind: diagram.KindTask, Label: "Approve", PixelRect: diagram.PixelRect{X: 200, Y: 25, Width: 120, Height: 50}},
		},
		Edges: []diagram.Edge{
			{ID: "e", Source: "a", Target: "b", Waypoints: []diagram.Point{{X: 140, Y: 50}, {X: 200, Y: 50}}},
		},
	}
}

func unpositioned() *diagram.Diagram {
	d := positioned()
	for i := range d.Nodes {
		d.Nodes[i].PixelRect = diagram.PixelRect{}
		d.Nodes[i].Lane = "emp"
	}
	d.Edges[0].Waypoints = nil
	return d
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if o.LayoutMode != LayoutAuto {
		t.Errorf("LayoutMode = %q", o.LayoutMode)
	}
	if o.Grid != grid.Default() {
		t.Errorf("Grid = %+v", o.Grid)
	}
	if o.Layout != layout.DefaultOptions() {
		t.Errorf("Layout = %+v", o.Layout)
	}
	if o.Export.DefaultLaneColor == "" || o.Logger == nil {
		t.Errorf("export/logger defaults missing: %+v", o)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Options)
	}{
		{"layout mode", func(o *Options) { o.LayoutMode = "sometimes" }},
		{"grid", func(o *Options) { o.Grid.RowHeightPx = -1 }},
		{"export", func(o *Options) { o.Export.LaneLighten = 2 }},
		{"layout", func(o *Options) { o.Layout.RankSep = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o Options
			o.SetDefaults()
			tt.mod(&o)
			if err := o.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestNeedsLayout(t *testing.T) {
	tests := []struct {
		mode LayoutMode
		d    *diagram.Diagram
		want bool
	}{
		{LayoutAuto, positioned(), false},
		{LayoutAuto, unpositioned(), true},
		{LayoutAlways, positioned(), true},
		{LayoutNever, unpositioned(), false},
	}
	for _, tt := range tests {
		o := Options{LayoutMode: tt.mode}
		if got := o.NeedsLayout(tt.d); got != tt.want {
			t.Errorf("NeedsLayout(%s, positioned=%v) = %v", tt.mode, tt.d.Positioned(), got)
		}
	}
}

func TestExecutePositioned(t *testing.T) {
	c := newMapCache()
	r := NewRunner(c, nil, nil)

	res, err := r.Execute(context.Background(), positioned(), Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.CacheInfo.LaidOut || c.gets != 0 {
		t.Errorf("positioned diagram went through layout: %+v, %d gets", res.CacheInfo, c.gets)
	}
	if res.Export.Filename != "expense-claim.xlsx" {
		t.Errorf("Filename = %q", res.Export.Filename)
	}
	if res.Export.Shapes != 2 || res.Export.Connectors != 1 {
		t.Errorf("shapes=%d connectors=%d", res.Export.Shapes, res.Export.Connectors)
	}
	if res.DiagramHash == "" || res.Stats.NodeCount != 2 || res.Stats.EdgeCount != 1 {
		t.Errorf("stats = %+v hash = %q", res.Stats, res.DiagramHash)
	}
}

func TestExecuteLayoutFromCache(t *testing.T) {
	ctx := context.Background()
	in := unpositioned()

	data, err := diagram.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	c := newMapCache()
	key := cache.NewDefaultKeyer().LayoutKey(cache.Hash(data), layout.DefaultOptions())
	laid, _ := diagram.Marshal(positioned())
	_ = c.Set(ctx, key, laid, 0)

	r := NewRunner(c, nil, nil)
	res, err := r.Execute(ctx, in, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.CacheInfo.LaidOut || !res.CacheInfo.LayoutHit {
		t.Errorf("CacheInfo = %+v, want cached layout", res.CacheInfo)
	}
	if !res.Diagram.Positioned() {
		t.Error("exported diagram has no geometry")
	}
	if in.Positioned() {
		t.Error("input diagram modified")
	}
}

func TestExecuteLayoutGraphviz(t *testing.T) {
	if testing.Short() {
		t.Skip("runs graphviz")
	}
	ctx := context.Background()
	c := newMapCache()
	r := NewRunner(c, nil, nil)

	first, err := r.Execute(ctx, unpositioned(), Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit || c.sets != 1 {
		t.Errorf("first run: %+v, %d sets", first.CacheInfo, c.sets)
	}

	second, err := r.Execute(ctx, unpositioned(), Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit {
		t.Error("second run missed the cache")
	}

	refreshed, err := r.Execute(ctx, unpositioned(), Options{Refresh: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if refreshed.CacheInfo.LayoutHit || c.sets != 2 {
		t.Errorf("refresh: %+v, %d sets", refreshed.CacheInfo, c.sets)
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	if _, err := r.Execute(ctx, nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidDiagram) {
		t.Errorf("nil diagram: %v", err)
	}
	_, err := r.Execute(ctx, positioned(), Options{LayoutMode: "bogus"})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("bad options: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "claim.yaml")
	if err := diagram.WriteFile(positioned(), path); err != nil {
		t.Fatal(err)
	}

	d, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if d.Name != "Expense claim" || len(d.Nodes) != 2 {
		t.Errorf("loaded %+v", d)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{nodes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("malformed file: %v", err)
	}
	if _, err := LoadFile(""); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("empty path: %v", err)
	}
}

func TestLoadRecord(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	put, err := s.Put(ctx, positioned())
	if err != nil {
		t.Fatal(err)
	}

	d, err := LoadRecord(ctx, s, put.ID)
	if err != nil || d.ID != put.ID {
		t.Fatalf("LoadRecord = %v, %v", d, err)
	}
	if _, err := LoadRecord(ctx, s, "3f1c0f4e-0000-4000-8000-000000000000"); !errors.Is(err, errors.ErrCodeDiagramNotFound) {
		t.Errorf("unknown id: %v", err)
	}
	if _, err := LoadRecord(ctx, s, "../etc"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad id: %v", err)
	}
}
