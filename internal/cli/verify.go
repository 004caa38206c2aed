package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/procsheet/pkg/errors"
	"github.com/matzehuels/procsheet/pkg/sheet/opc"
)

// verifyCommand creates the verify command.
func (c *CLI) verifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file.xlsx>...",
		Short: "Check the package structure of .xlsx files",
		Long: `Check the package structure of .xlsx files.

Every part must be declared in [Content_Types].xml, every relationship must
resolve to a part, every part must be reachable from the package root and
every r:id attribute must name a relationship of its part.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				if err := verifyFile(path); err != nil {
					failed++
					printError("%s", path)
					printDetail("%s", err)
					continue
				}
				printSuccess("%s", path)
			}
			if failed > 0 {
				return errors.New(errors.ErrCodeInvalidFormat, "%d of %d file(s) failed verification", failed, len(args))
			}
			return nil
		},
	}
}

func verifyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	return opc.Verify(data)
}
