package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/procsheet/pkg/diagram"
	"github.com/matzehuels/procsheet/pkg/sheet"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "layout [diagram.json|diagram.yaml]",
		Short: "Compute node positions, lanes and edge routes for a diagram",
		Long: `Compute node positions, lanes and edge routes for a diagram.

Nodes are ranked left to right by Graphviz and packed into the swimlane named
by their "lane" field; edges get orthogonal waypoints. The result is written
as a diagram file that 'export' accepts unchanged, which makes it a convenient
starting point for hand tuning.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runLayout(cmd.Context(), input, flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().Lookup("output").Usage = "output file (default: <input>.layout.json)"
	cmd.Flags().Lookup("layout").Hidden = true
	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input string, flags exportFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	d, err := c.loadDiagram(ctx, input, flags.id)
	if err != nil {
		return err
	}

	opts := pipelineOptions(cfg)
	opts.Refresh = flags.refresh

	runner, err := c.newRunner(cfg, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	var (
		laid *diagram.Diagram
		hit  bool
	)
	err = withSpinner(ctx, "Laying out "+displayName(d, input)+"...", func() (err error) {
		laid, hit, err = runner.LayoutWithCacheInfo(ctx, d, opts)
		return err
	})
	if err != nil {
		return err
	}

	path := flags.output
	if path == "" {
		path = layoutOutputPath(input, d)
	}
	if err := diagram.WriteFile(laid, path); err != nil {
		return err
	}

	status := "fresh"
	if hit {
		status = "cached"
	}
	printSuccess("Laid out %d nodes in %d lanes (%s, %s)", len(laid.Nodes), len(laid.Lanes), status, prog.elapsed())
	printFile(path)
	printNextStep("Export it", "procsheet export "+path)
	return nil
}

// layoutOutputPath derives "<input>.layout.<ext>" next to the input.
func layoutOutputPath(input string, d *diagram.Diagram) string {
	if input == "" {
		return strings.TrimSuffix(sheet.Filename(d.Name), ".xlsx") + ".layout.json"
	}
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".layout" + ext
}
