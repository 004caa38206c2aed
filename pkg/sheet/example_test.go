package sheet_test

import (
	"fmt"

	"github.com/matzehuels/procsheet/pkg/diagram"
	"github.com/matzehuels/procsheet/pkg/sheet"
	"github.com/matzehuels/procsheet/pkg/sheet/grid"
)

func ExampleExporter_Export() {
	d := &diagram.Diagram{
		Name:  "Leave request",
		Lanes: []diagram.LaneBand{{ID: "hr", Name: "HR", Height: 100, FillColor: "#7fb069"}},
		Nodes: []diagram.ProcessNode{
			{ID: "start", Kind: diagram.KindEvent, PixelRect: diagram.PixelRect{X: 10, Y: 35, Width: 30, Height: 30}},
			{ID: "review", Kind: diagram.KindTask, Label: "Review", PixelRect: diagram.PixelRect{X: 90, Y: 25, Width: 120, Height: 50}},
		},
		Edges: []diagram.Edge{
			{ID: "e1", Source: "start", Target: "review", Waypoints: []diagram.Point{{X: 40, Y: 50}, {X: 90, Y: 50}}},
			{ID: "stub", Waypoints: []diagram.Point{{X: 0, Y: 0}}},
		},
	}

	exp := sheet.NewExporter(grid.Default(), sheet.DefaultOptions(), nil)
	res, err := exp.Export(d)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(res.Filename)
	fmt.Println("shapes:", res.Shapes, "connectors:", res.Connectors, "skipped:", res.SkippedEdges)
	// Output:
	// leave-request.xlsx
	// shapes: 2 connectors: 1 skipped: 1
}
