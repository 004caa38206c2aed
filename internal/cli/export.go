package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/procsheet/pkg/diagram"
	"github.com/matzehuels/procsheet/pkg/errors"
	"github.com/matzehuels/procsheet/pkg/pipeline"
)

// exportFlags are shared by export and layout.
type exportFlags struct {
	output     string
	id         string
	layoutMode string
	noCache    bool
	refresh    bool
}

func (f *exportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file or directory")
	cmd.Flags().StringVar(&f.id, "id", "", "load the diagram from the configured store instead of a file")
	cmd.Flags().StringVar(&f.layoutMode, "layout", string(pipeline.DefaultLayoutMode), "automatic layout: auto, always, never")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the layout cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute layouts even when cached")
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export [diagram.json|diagram.yaml]",
		Short: "Export a process diagram to an .xlsx workbook",
		Long: `Export a process diagram to an .xlsx workbook.

Every node becomes a drawing shape (tasks as rounded rectangles, gateways as
diamonds, events as ellipses) anchored to the worksheet grid, every edge with
at least two waypoints becomes a connector glued to its end shapes, and each
swimlane is painted as a band of tinted rows with its name in column A.

Diagrams whose nodes lack geometry are laid out with Graphviz first
(--layout=auto). Layouts are cached locally for faster subsequent runs.`,
		Example: `  procsheet export onboarding.json
  procsheet export onboarding.yaml -o out/
  procsheet export --id 2b1f0c8e-4d5a-4c44-9a43-0d1f5f0e4a77 --layout=always`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runExport(cmd.Context(), input, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runExport(ctx context.Context, input string, flags exportFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	d, err := c.loadDiagram(ctx, input, flags.id)
	if err != nil {
		return err
	}

	opts := pipelineOptions(cfg)
	opts.LayoutMode = pipeline.LayoutMode(flags.layoutMode)
	opts.Refresh = flags.refresh

	runner, err := c.newRunner(cfg, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	var res *pipeline.Result
	err = withSpinner(ctx, "Exporting "+displayName(d, input)+"...", func() (err error) {
		res, err = runner.Execute(ctx, d, opts)
		return err
	})
	if err != nil {
		return err
	}

	path := outputPath(flags.output, res.Export.Filename)
	if err := writeFile(path, res.Export.Data); err != nil {
		return err
	}

	printSuccess("Exported %s (%s)", displayName(d, input), prog.elapsed())
	printStats(exportStats{
		Shapes:     res.Export.Shapes,
		Connectors: res.Export.Connectors,
		Skipped:    res.Export.SkippedEdges,
		Bytes:      len(res.Export.Data),
		LaidOut:    res.CacheInfo.LaidOut,
		LayoutHit:  res.CacheInfo.LayoutHit,
	})
	printFile(path)
	for _, w := range res.Export.Warnings {
		printWarning("%s", w)
	}
	if len(res.Findings) > 0 && len(res.Export.Warnings) == 0 {
		printNextStep(fmt.Sprintf("%d lint finding(s)", len(res.Findings)), "procsheet lint "+input)
	}
	return nil
}

// loadDiagram reads the diagram from a file or, with --id, from the store.
func (c *CLI) loadDiagram(ctx context.Context, input, id string) (*diagram.Diagram, error) {
	switch {
	case id != "" && input != "":
		return nil, errors.New(errors.ErrCodeInvalidInput, "give either a file or --id, not both")
	case id != "":
		cfg, err := c.loadConfig()
		if err != nil {
			return nil, err
		}
		st, err := newStore(ctx, cfg.Store)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "open store")
		}
		defer st.Close(ctx)
		return pipeline.LoadRecord(ctx, st, id)
	case input != "":
		return pipeline.LoadFile(input)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "no diagram given (pass a file or --id)")
	}
}

// outputPath resolves -o: empty means the working directory, an existing
// directory or a trailing separator means a file inside it.
func outputPath(output, filename string) string {
	if output == "" {
		return filename
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, filename)
	}
	if os.IsPathSeparator(output[len(output)-1]) {
		return filepath.Join(output, filename)
	}
	return output
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func displayName(d *diagram.Diagram, input string) string {
	if d.Name != "" {
		return d.Name
	}
	if input != "" {
		return filepath.Base(input)
	}
	return d.ID
}
