package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/slimecats/internal/app"
	"github.com/roach88/slimecats/internal/pubsync"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Sync once with every configured peer",
		Long: `Sync once with every configured peer and report what moved.

A peer that fails is reported and does not stop the others.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(rootOpts, cmd)
		},
	}
}

func runSync(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	a, err := opts.openApp(f)
	if err != nil {
		return err
	}
	defer closeApp(a)

	reports := newSyncReports(a.SyncAll(cmd.Context()))
	return f.Result(reports, renderSync(reports))
}

// syncAfterWrite pushes a local change out right away. Failures are only
// reported; the next sync retries.
func syncAfterWrite(ctx context.Context, a *app.App, f *OutputFormatter) {
	for _, r := range a.SyncAll(ctx) {
		if r.Err != nil {
			f.VerboseLog("sync %s failed: %v", r.Peer, r.Err)
			continue
		}
		f.VerboseLog("sync %s: pulled %d, pushed %d", r.Peer, r.Stats.Pulled, r.Stats.Pushed)
	}
}

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	return &cobra.Command{
		Use:   "run",
		Short: "Sync with every peer on an interval until stopped",
		Long: `Sync with every configured peer now and then every sync.interval
until interrupted.

Example:
  slimecats run --config ./slimecats.yaml --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduler(opts, cmd)
		},
	}
}

func runScheduler(opts *RunOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	a, err := opts.openApp(f)
	if err != nil {
		return err
	}
	defer closeApp(a)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	sched := a.Scheduler(pubsync.WithResultHandler(func(results []pubsync.Result) {
		for _, r := range results {
			if r.Err == nil {
				slog.Info("synced", "peer", r.Peer,
					"pulled", r.Stats.Pulled, "pushed", r.Stats.Pushed, "duration", r.Stats.Duration)
			}
		}
	}))
	if err := sched.Start(ctx); err != nil {
		return f.Fail(ExitFailure, ErrCodeSync, "failed to start sync", err)
	}

	slog.Info("sync scheduler started", "peers", len(a.Pubs), "interval", a.Config.Sync.Interval)
	fmt.Fprintln(cmd.OutOrStdout(), "Syncing. Press Ctrl-C to stop.")

	<-ctx.Done()
	sched.Stop()
	slog.Info("sync scheduler stopped")
	return nil
}

// signalContext is cancelled on SIGINT, SIGTERM, or when the command's own
// context ends.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan) // Prevent signal handler leak
	}()
	return ctx, cancel
}
