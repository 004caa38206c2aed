// Package layout positions diagrams that carry no geometry.
//
// Node ordering along the flow comes from Graphviz dot (rankdir LR), run
// in-process through [github.com/goccy/go-graphviz]. The result is then
// fitted to swimlanes: lanes are stacked top to bottom in caller order, each
// node is placed in the lane named by [diagram.ProcessNode.Lane], and nodes
// that would overlap inside a lane are moved to an extra slot row. Edges are
// routed orthogonally between the facing sides of their nodes.
//
// Layout is deterministic for a given diagram and [Options], so results are
// safe to cache. Engine failures are returned as LAYOUT_FAILED errors and are
// never retried.
package layout
