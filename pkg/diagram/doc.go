// Package diagram defines the positioned process-diagram model consumed by the
// spreadsheet exporter.
//
// A [Diagram] is a laid-out process graph: [ProcessNode] values positioned in
// pixel space, grouped into horizontal [LaneBand] regions and connected by
// routed [Edge] polylines. Positions are produced upstream by a layered-graph
// layout engine (see package layout) or by the diagram editor; this package only
// carries them.
//
// # Serialization
//
// Diagrams round-trip through JSON and YAML:
//
//	{
//	  "name": "Order to cash",
//	  "width": 640, "height": 200,
//	  "lanes": [{"id": "sales", "name": "Sales", "start_y": 0, "height": 100, "fill_color": "#4a90d9"}],
//	  "nodes": [{"id": "t1", "kind": "task", "label": "Receive order", "x": 40, "y": 30, "width": 120, "height": 50}],
//	  "edges": [{"id": "e1", "source": "t1", "target": "t2", "waypoints": [{"x": 160, "y": 55}, {"x": 220, "y": 55}]}]
//	}
//
// Use [ReadFile] to load either format based on the file extension.
//
// # Lint
//
// [Lint] reports data problems that the exporter tolerates (unknown node kinds,
// bad colors, dangling edge endpoints) so callers can surface them without
// aborting an export.
package diagram
