// Package pipeline runs the load → layout → export sequence shared by the
// CLI and the HTTP API.
//
// Layout is optional: diagrams that already carry geometry go straight to
// the exporter. When layout does run, its result is cached under a key
// derived from the canonical diagram JSON and the layout options, so that
// re-exporting an unchanged diagram skips Graphviz.
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	res, err := runner.Execute(ctx, d, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(res.Export.Filename, res.Export.Data, 0o644)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/procsheet/pkg/diagram"
	"github.com/matzehuels/procsheet/pkg/layout"
	"github.com/matzehuels/procsheet/pkg/sheet"
	"github.com/matzehuels/procsheet/pkg/sheet/grid"
)

// LayoutMode selects when automatic layout runs.
type LayoutMode string

// Layout modes.
const (
	// LayoutAuto lays out diagrams whose nodes lack geometry.
	LayoutAuto LayoutMode = "auto"
	// LayoutAlways repositions every diagram, keeping only node sizes.
	LayoutAlways LayoutMode = "always"
	// LayoutNever exports diagrams as given.
	LayoutNever LayoutMode = "never"
)

// DefaultLayoutMode is used when Options.LayoutMode is empty.
const DefaultLayoutMode = LayoutAuto

// ValidLayoutModes is the set of accepted layout modes.
var ValidLayoutModes = map[LayoutMode]bool{
	LayoutAuto:   true,
	LayoutAlways: true,
	LayoutNever:  true,
}

// Options configures one pipeline run. It decodes from API request bodies.
type Options struct {
	LayoutMode LayoutMode     `json:"layout_mode,omitempty"`
	Layout     layout.Options `json:"layout"`
	Grid       grid.Config    `json:"grid"`
	Export     sheet.Options  `json:"export"`
	// Refresh recomputes the layout even when a cached one exists.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result is the output of a pipeline run.
type Result struct {
	// Diagram is the diagram that was exported, after layout if any ran.
	Diagram *diagram.Diagram
	// DiagramHash is the SHA-256 of the input diagram's canonical JSON.
	DiagramHash string
	// Findings are the lint findings for the input diagram.
	Findings []diagram.Finding
	// Export is the produced document.
	Export *sheet.Result

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LayoutTime time.Duration
	ExportTime time.Duration
}

// CacheInfo reports what the layout stage did.
type CacheInfo struct {
	LaidOut   bool // layout ran (from cache or fresh)
	LayoutHit bool // layout came from the cache
}

// SetDefaults fills zero values. An all-zero Grid or Export group takes the
// stock settings.
func (o *Options) SetDefaults() {
	if o.LayoutMode == "" {
		o.LayoutMode = DefaultLayoutMode
	}
	if o.Grid == (grid.Config{}) {
		o.Grid = grid.Default()
	}
	if o.Export == (sheet.Options{}) {
		o.Export = sheet.DefaultOptions()
	}
	o.Export.SetDefaults()
	o.Layout.SetDefaults()
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Validate checks every nested option group.
func (o *Options) Validate() error {
	if !ValidLayoutModes[o.LayoutMode] {
		return fmt.Errorf("invalid layout_mode: %q (must be one of: auto, always, never)", o.LayoutMode)
	}
	if err := o.Layout.Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if err := o.Grid.Validate(); err != nil {
		return fmt.Errorf("grid: %w", err)
	}
	if err := o.Export.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// ValidateAndSetDefaults applies defaults, then validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// NeedsLayout reports whether d is laid out under these options.
func (o *Options) NeedsLayout(d *diagram.Diagram) bool {
	switch o.LayoutMode {
	case LayoutAlways:
		return true
	case LayoutNever:
		return false
	default:
		return !d.Positioned()
	}
}
