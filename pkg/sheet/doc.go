// Package sheet exports laid-out process diagrams as spreadsheet documents in
// which every node and edge is a native, editable drawing object.
//
// # Overview
//
// An export composes the sub-packages in a fixed order:
//
//  1. [color] normalizes and lightens lane colors
//  2. [styles] allocates one fill style per distinct lane color
//  3. [grid] maps pixel geometry onto cells and EMU offsets
//  4. [worksheet] paints lane bands and writes lane labels
//  5. [drawing] emits one shape per node and one connector per edge
//  6. [opc] assembles, validates and zips the package
//
// All placement flows from one [grid.Config], so lane backgrounds and shapes
// always line up.
//
// # Usage
//
//	exp := sheet.NewExporter(grid.Default(), sheet.DefaultOptions(), nil)
//	res, err := exp.Export(d)
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(res.Filename, res.Data, 0o644)
//
// # Degradation
//
// Bad data never aborts an export. Invalid lane colors fall back to
// [Options.DefaultLaneColor], unknown node kinds are drawn as tasks, edges
// with fewer than two waypoints are skipped and edges whose endpoints did
// not become shapes are drawn unattached. Each case is reported in
// [Result.Warnings]. Only configuration errors and package assembly failures
// fail an export, and a failed export never returns partial bytes.
//
// # Concurrency
//
// An [Exporter] holds only configuration. Every call to [Exporter.Export]
// builds its own canvas and package, so one Exporter may serve concurrent
// exports.
package sheet
