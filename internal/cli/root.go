package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/slimecats/internal/app"
	"github.com/roach88/slimecats/internal/config"
)

// annotationNoConfig marks commands that run without loading a config file.
const annotationNoConfig = "slimecats/no-config"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Set by PersistentPreRunE.
	Config *config.Config
	Logger *slog.Logger

	// AppOptions are passed to app.New (for testing).
	AppOptions []app.Option
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the slimecats CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slimecats",
		Short: "slimecats - a todo list for cats that syncs",
		Long: `A todo list and box counter kept as signed documents in a local store,
synced with any number of pubs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return WrapExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats), nil)
			}
			if cmd.Annotations[annotationNoConfig] == "" {
				cfg, err := config.Load(opts.ConfigPath)
				if err != nil {
					return opts.formatter(cmd).Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
				}
				opts.Config = cfg
			}
			opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Config, opts.Verbose)
			slog.SetDefault(opts.Logger)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default "+config.DefaultPath+")")

	// Add subcommands
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewDoneCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewBoxesCommand(opts))
	cmd.AddCommand(NewBoxPutCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewPubCommand(opts))
	cmd.AddCommand(NewKeygenCommand(opts))

	return cmd
}

// newLogger builds the process logger. --verbose forces debug level.
func newLogger(w io.Writer, cfg *config.Config, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	format := "text"
	if cfg != nil {
		level = cfg.SlogLevel()
		format = cfg.Log.Format
	}
	if verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// openApp builds the App for a command. The caller closes it.
func (o *RootOptions) openApp(f *OutputFormatter) (*app.App, error) {
	opts := append([]app.Option{app.WithLogger(o.Logger)}, o.AppOptions...)
	a, err := app.New(o.Config, opts...)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, "failed to open workspace", err)
	}
	return a, nil
}

func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		slog.Error("error closing workspace", "error", err)
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
