package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/procsheet/internal/api"
	"github.com/matzehuels/procsheet/pkg/errors"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the export API over HTTP",
		Long: `Serve the export API over HTTP.

The server exports posted diagrams, lays them out and keeps diagram records
in the configured store ([store] in the config file). Layouts are cached in
the configured cache backend; use backend = "redis" to share it between
replicas.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides [server] addr)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	st, err := newStore(ctx, cfg.Store)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "open %s store", cfg.Store.Backend)
	}
	defer st.Close(context.Background())

	runner, err := c.newRunner(cfg, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	c.Logger.Info("starting server",
		"addr", cfg.Server.Addr,
		"cache", cfg.Cache.Backend,
		"store", cfg.Store.Backend)
	srv := api.New(runner, st, pipelineOptions(cfg), c.Logger)
	return srv.ListenAndServe(ctx, cfg.Server)
}
