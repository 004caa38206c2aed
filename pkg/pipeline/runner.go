package pipeline

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/procsheet/pkg/cache"
	"github.com/matzehuels/procsheet/pkg/diagram"
	"github.com/matzehuels/procsheet/pkg/errors"
	"github.com/matzehuels/procsheet/pkg/layout"
	"github.com/matzehuels/procsheet/pkg/observability"
	"github.com/matzehuels/procsheet/pkg/sheet"
)

// Runner executes the pipeline with layout caching. It holds no per-run
// state, so one Runner may serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL applies to cached layouts; zero means cache.TTLLayout.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means DefaultKeyer and a nil logger discards output.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute lints d, lays it out if opts require it and exports the result.
// d is not modified.
func (r *Runner) Execute(ctx context.Context, d *diagram.Diagram, opts Options) (*Result, error) {
	if d == nil {
		return nil, errors.New(errors.ErrCodeInvalidDiagram, "no diagram")
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid options")
	}

	result := &Result{
		Diagram: d,
		Stats: Stats{
			NodeCount: len(d.Nodes),
			EdgeCount: len(d.Edges),
		},
	}
	if data, err := diagram.Marshal(d); err == nil {
		result.DiagramHash = cache.Hash(data)
	}

	result.Findings = diagram.Lint(d)
	for _, f := range result.Findings {
		opts.Logger.Debug("lint", "subject", f.Subject, "message", f.Message)
	}

	// Stage 1: Layout
	if opts.NeedsLayout(d) {
		layoutStart := time.Now()
		laid, hit, err := r.LayoutWithCacheInfo(ctx, d, opts)
		if err != nil {
			return nil, err
		}
		result.Diagram = laid
		result.Stats.LayoutTime = time.Since(layoutStart)
		result.CacheInfo = CacheInfo{LaidOut: true, LayoutHit: hit}

		opts.Logger.Info("computed layout",
			"nodes", len(laid.Nodes),
			"cached", hit,
			"duration", result.Stats.LayoutTime)
	}

	// Stage 2: Export
	exportStart := time.Now()
	exported, err := r.Export(ctx, result.Diagram, opts)
	if err != nil {
		return nil, err
	}
	result.Export = exported
	result.Stats.ExportTime = time.Since(exportStart)

	opts.Logger.Info("exported diagram",
		"file", exported.Filename,
		"shapes", exported.Shapes,
		"connectors", exported.Connectors,
		"bytes", len(exported.Data),
		"duration", result.Stats.ExportTime)

	return result, nil
}

// LayoutWithCacheInfo lays out d and reports whether the layout came from
// the cache. Cache failures are logged and otherwise ignored; layout
// failures are returned with code LAYOUT_FAILED or INVALID_CONFIG.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, d *diagram.Diagram, opts Options) (*diagram.Diagram, bool, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()

	data, err := diagram.Marshal(d)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidDiagram, err, "encode diagram")
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(data), opts.Layout)

	if !opts.Refresh {
		cached, hit, err := r.Cache.Get(ctx, cacheKey)
		switch {
		case err != nil:
			opts.Logger.Warn("layout cache read failed", "err", err)
		case hit:
			if laid, err := diagram.ReadJSON(bytes.NewReader(cached)); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return laid, true, nil
			}
			// Undecodable entries are recomputed and overwritten.
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	name := d.Name
	observability.Pipeline().OnLayoutStart(ctx, name, len(d.Nodes))
	start := time.Now()
	laid, err := layout.Layout(ctx, d, opts.Layout)
	observability.Pipeline().OnLayoutComplete(ctx, name, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if out, err := diagram.Marshal(laid); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, out, r.ttl()); err != nil {
			opts.Logger.Warn("layout cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(out))
		}
	}
	return laid, false, nil
}

// Layout is LayoutWithCacheInfo without the cache hit flag.
func (r *Runner) Layout(ctx context.Context, d *diagram.Diagram, opts Options) (*diagram.Diagram, error) {
	laid, _, err := r.LayoutWithCacheInfo(ctx, d, opts)
	return laid, err
}

// Export converts d to a spreadsheet document without running layout.
func (r *Runner) Export(ctx context.Context, d *diagram.Diagram, opts Options) (*sheet.Result, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()

	name := d.Name
	observability.Pipeline().OnExportStart(ctx, name, len(d.Nodes))
	start := time.Now()

	exporter := sheet.NewExporter(opts.Grid, opts.Export, opts.Logger)
	res, err := exporter.Export(d)

	stats := observability.ExportStats{Lanes: len(d.Lanes)}
	if res != nil {
		stats.Shapes = res.Shapes
		stats.Connectors = res.Connectors
		stats.Bytes = len(res.Data)
		stats.Warnings = len(res.Warnings)
	}
	observability.Pipeline().OnExportComplete(ctx, name, stats, time.Since(start), err)
	return res, err
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLLayout
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
