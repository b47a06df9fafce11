package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/slimecats/internal/pub"
)

// PubOptions holds flags for the pub command.
type PubOptions struct {
	*RootOptions
	Listen     string
	GRPCListen string
	DataDir    string
}

// NewPubCommand creates the pub command.
func NewPubCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PubOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pub",
		Short: "Serve workspaces to syncing peers",
		Long: `Run a pub: a replica that any slimecats instance can sync with.

Flags override the pub section of the config file. Each workspace is kept
in its own SQLite file under the data directory.

Example:
  slimecats pub --listen :3333 --grpc-listen :3334 --data-dir ./pub-data`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPub(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "HTTP listen address")
	cmd.Flags().StringVar(&opts.GRPCListen, "grpc-listen", "", "gRPC listen address (disabled when empty)")
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "directory for workspace databases")

	return cmd
}

func runPub(opts *PubOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg := opts.Config.Pub
	if opts.Listen != "" {
		cfg.Listen = opts.Listen
	}
	if opts.GRPCListen != "" {
		cfg.GRPCListen = opts.GRPCListen
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}

	registry := pub.NewRegistry(cfg.DataDir)
	defer func() {
		if err := registry.Close(); err != nil {
			opts.Logger.Error("error closing pub stores", "error", err)
		}
	}()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s. Press Ctrl-C to stop.\n", cfg.Listen)
	srv := &pub.Server{
		HTTPAddr: cfg.Listen,
		GRPCAddr: cfg.GRPCListen,
		Service:  pub.NewService(registry, opts.Logger),
		Logger:   opts.Logger,
	}
	if err := srv.Run(ctx); err != nil {
		return f.Fail(ExitFailure, ErrCodeServe, "pub stopped", err)
	}
	return nil
}
