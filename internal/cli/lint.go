package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/procsheet/pkg/diagram"
	"github.com/matzehuels/procsheet/pkg/errors"
	"github.com/matzehuels/procsheet/pkg/pipeline"
)

// lintCommand creates the lint command.
func (c *CLI) lintCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "lint [diagram.json|diagram.yaml]",
		Short: "Report data problems the exporter would work around",
		Long: `Report data problems the exporter would work around.

Unknown node kinds, invalid lane colors, negative sizes, dangling edge
endpoints and edges with fewer than two waypoints never stop an export; they
are rendered with a fallback or skipped. lint lists them so they can be fixed
at the source.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := pipeline.LoadFile(args[0])
			if err != nil {
				return err
			}
			return runLint(d, args[0], strict)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when there are warnings")
	return cmd
}

func runLint(d *diagram.Diagram, input string, strict bool) error {
	findings := diagram.Lint(d)
	if len(findings) == 0 {
		printSuccess("%s: no findings", input)
		return nil
	}

	warnings := 0
	for _, f := range findings {
		if f.Severity == diagram.SeverityWarning {
			warnings++
			printWarning("%s: %s", f.Subject, f.Message)
		} else {
			printInfo("%s: %s", f.Subject, f.Message)
		}
	}
	printDetail("%d finding(s), %d warning(s)", len(findings), warnings)

	if strict && warnings > 0 {
		return errors.New(errors.ErrCodeInvalidDiagram, "%s has %d lint warning(s)", input, warnings)
	}
	return nil
}
