package sheet

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/procsheet/pkg/diagram"
	"github.com/matzehuels/procsheet/pkg/errors"
	"github.com/matzehuels/procsheet/pkg/sheet/color"
	"github.com/matzehuels/procsheet/pkg/sheet/drawing"
	"github.com/matzehuels/procsheet/pkg/sheet/grid"
	"github.com/matzehuels/procsheet/pkg/sheet/opc"
	"github.com/matzehuels/procsheet/pkg/sheet/styles"
	"github.com/matzehuels/procsheet/pkg/sheet/worksheet"
)

// Part names inside the produced package.
const (
	PartWorkbook  = "xl/workbook.xml"
	PartWorksheet = "xl/worksheets/sheet1.xml"
	PartStyles    = "xl/styles.xml"
	PartDrawing   = "xl/drawings/drawing1.xml"
	PartCoreProps = "docProps/core.xml"
	PartAppProps  = "docProps/app.xml"
)

// ContentType is the MIME type of the produced document.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DefaultFilename is used for diagrams without a usable name.
const DefaultFilename = "process.xlsx"

// Result is a finished export. The caller owns Data.
type Result struct {
	Data     []byte
	Filename string

	Shapes       int
	Connectors   int
	SkippedEdges int
	Warnings     []string
}

// Exporter turns diagrams into spreadsheet documents.
type Exporter struct {
	Config  grid.Config
	Options Options
	Logger  *log.Logger
	// Now stamps document properties; time.Now when nil.
	Now func() time.Time
}

// NewExporter returns an exporter. A nil logger discards output.
func NewExporter(cfg grid.Config, opts Options, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	opts.SetDefaults()
	return &Exporter{Config: cfg, Options: opts, Logger: logger, Now: time.Now}
}

// Export renders d. Bad diagram data is tolerated and reported in
// Result.Warnings; only invalid configuration (INVALID_CONFIG) and package
// assembly failures (EXPORT_FAILED) return an error.
func (e *Exporter) Export(d *diagram.Diagram) (*Result, error) {
	if d == nil {
		return nil, errors.New(errors.ErrCodeInvalidDiagram, "no diagram")
	}
	if err := e.Config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "grid config")
	}
	opts := e.Options
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "export options")
	}

	logger := e.logger()
	res := &Result{Filename: Filename(d.Name)}

	tbl, bands, warnings, err := laneStyles(d.Lanes, opts, e.Config)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "style table")
	}
	res.Warnings = append(res.Warnings, warnings...)

	canvas := drawing.NewCanvas(e.Config)
	for _, n := range d.Nodes {
		canvas.AddShape(n)
	}
	for _, edge := range d.Edges {
		if !canvas.AddConnector(edge) {
			res.SkippedEdges++
		}
	}
	res.Shapes = canvas.Shapes()
	res.Connectors = canvas.Connectors()
	res.Warnings = append(res.Warnings, canvas.Warnings...)

	width, height := d.Extent()
	cols, rows := e.Config.GridExtent(width, height)
	for _, b := range bands {
		rows = max(rows, min(b.LastRow, grid.MaxRows))
	}
	if e.Config.ExceedsLimits(width, height) {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"diagram is %.0fx%.0f px, grid truncated to %dx%d cells", width, height, cols, rows))
	}

	data, err := e.assemble(d, tbl, canvas, worksheet.Sheet{
		Cols:   cols,
		Rows:   rows,
		Bands:  bands,
		Config: e.Config,
	}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "assemble package")
	}
	res.Data = data

	for _, w := range res.Warnings {
		logger.Warn(w)
	}
	logger.Debug("exported diagram",
		"name", d.Name,
		"shapes", res.Shapes,
		"connectors", res.Connectors,
		"skipped_edges", res.SkippedEdges,
		"lanes", len(bands),
		"grid", fmt.Sprintf("%dx%d", cols, rows),
		"bytes", len(data))
	return res, nil
}

func (e *Exporter) logger() *log.Logger {
	if e.Logger == nil {
		return log.New(io.Discard)
	}
	return e.Logger
}

func (e *Exporter) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// laneStyles resolves lane colors, allocates their styles and converts the
// lanes to worksheet bands in caller order. Lanes with negative height are
// dropped.
func laneStyles(lanes []diagram.LaneBand, opts Options, cfg grid.Config) (*styles.Table, []worksheet.Band, []string, error) {
	var warnings []string
	fallback := color.NormalizeHex(opts.DefaultLaneColor, DefaultLaneColor)

	fills := make([]string, len(lanes))
	for i, l := range lanes {
		if l.FillColor != "" && color.NormalizeHex(l.FillColor, "") == "" {
			warnings = append(warnings, fmt.Sprintf("lane %s: invalid fill color %q, default used", l.ID, l.FillColor))
		}
		fills[i] = color.Lighten(color.NormalizeHex(l.FillColor, fallback), opts.LaneLighten)
	}

	tbl, err := styles.Build(styles.Distinct(fills))
	if err != nil {
		return nil, nil, nil, err
	}

	bands := make([]worksheet.Band, 0, len(lanes))
	for i, l := range lanes {
		if l.Height < 0 {
			warnings = append(warnings, fmt.Sprintf("lane %s: negative height, skipped", l.ID))
			continue
		}
		first, last := cfg.LaneRows(l.StartY, l.Height)
		bands = append(bands, worksheet.Band{
			Name:     l.Name,
			FirstRow: first,
			LastRow:  last,
			StyleID:  tbl.Lookup(fills[i]),
		})
	}
	return tbl, bands, warnings, nil
}

// assemble writes every part and relationship and returns the archive.
func (e *Exporter) assemble(d *diagram.Diagram, tbl *styles.Table, canvas *drawing.Canvas, ws worksheet.Sheet, opts Options) ([]byte, error) {
	now := e.now()
	pkg := opc.New()
	pkg.Modified = now

	pkg.Relate(opc.Root, opc.RelOfficeDocument, PartWorkbook)
	pkg.Relate(opc.Root, opc.RelCoreProps, PartCoreProps)
	pkg.Relate(opc.Root, opc.RelExtendedProps, PartAppProps)
	sheetRel := pkg.Relate(PartWorkbook, opc.RelWorksheet, PartWorksheet)
	pkg.Relate(PartWorkbook, opc.RelStyles, PartStyles)
	ws.DrawingRelID = pkg.Relate(PartWorksheet, opc.RelDrawing, PartDrawing)

	parts := []struct {
		name, contentType string
		build             func() ([]byte, error)
	}{
		{PartWorkbook, opc.TypeWorkbook, func() ([]byte, error) { return worksheet.Workbook(d.Name, sheetRel) }},
		{PartWorksheet, opc.TypeWorksheet, func() ([]byte, error) { return worksheet.Build(ws) }},
		{PartStyles, opc.TypeStyles, tbl.XML},
		{PartDrawing, opc.TypeDrawing, canvas.XML},
		{PartCoreProps, opc.TypeCoreProps, func() ([]byte, error) { return coreProps(d.Name, opts.Creator, now) }},
		{PartAppProps, opc.TypeExtendedProps, func() ([]byte, error) { return appProps(opts.Application) }},
	}
	for _, p := range parts {
		data, err := p.build()
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", p.name, err)
		}
		if err := pkg.AddPart(p.name, p.contentType, data); err != nil {
			return nil, err
		}
	}
	return pkg.Bytes()
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Filename derives the download name from a diagram name: lower-cased, runs
// of other characters collapsed to "-", with an .xlsx extension.
func Filename(name string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		return DefaultFilename
	}
	return slug + ".xlsx"
}
