// Package pkg holds the procsheet libraries.
//
// The export path, leaf packages first:
//
//	diagram          data model, JSON/YAML files, lint
//	sheet/color      hex normalization and tints
//	sheet/grid       pixel → cell anchor mapping
//	sheet/styles     lane fill style table
//	sheet/worksheet  grid, lane bands and labels
//	sheet/drawing    shapes and glued connectors
//	sheet/opc        package parts, relationships, zip, verification
//	sheet            Exporter composing all of the above
//
// Around it:
//
//	layout           Graphviz-based automatic layout
//	cache            layout cache (file, redis)
//	store            diagram records (memory, MongoDB)
//	pipeline         load → layout → export with caching
//	config           TOML configuration
//	observability    metrics/tracing hooks
//	errors           coded errors shared by CLI and API
//	buildinfo        version stamped at link time
package pkg
