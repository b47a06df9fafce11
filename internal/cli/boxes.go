package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/slimecats/internal/boxes"
	"github.com/roach88/slimecats/internal/todo"
)

// NewBoxesCommand creates the boxes command.
func NewBoxesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "boxes",
		Short: "Show the boxes and what is in them",
		Long:  `Every done todo earns one box. This shows how many there are and what has been put in them.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoxes(rootOpts, cmd)
		},
	}
}

func runBoxes(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	a, err := opts.openApp(f)
	if err != nil {
		return err
	}
	defer closeApp(a)

	ctx := cmd.Context()
	done, err := a.Todos.ListIDs(ctx, todo.Done)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeStore, "failed to count boxes", err)
	}
	contents, err := a.Boxes.Read(ctx)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeStore, "failed to read boxes", err)
	}
	filled := 0
	for _, n := range contents {
		filled += n
	}

	report := boxesReport{Boxes: len(done), Filled: filled, Contents: contents}
	return f.Result(report, renderBoxes(report))
}

// NewBoxPutCommand creates the boxput command.
func NewBoxPutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "boxput [thing...]",
		Short: "Put something in an empty box",
		Long: `Put something in a box. Fails when every box is already full; finish
a todo to earn another. The thing defaults to "` + boxes.DefaultLabel + `".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoxPut(rootOpts, strings.Join(args, " "), cmd)
		},
	}
}

func runBoxPut(opts *RootOptions, label string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	a, err := opts.openApp(f)
	if err != nil {
		return err
	}
	defer closeApp(a)

	if err := a.RequireAuthor(); err != nil {
		return f.Fail(ExitCommandError, ErrCodeNoAuthor, "filling a box needs an author keypair", err)
	}
	if label == "" {
		label = boxes.DefaultLabel
	}
	ctx := cmd.Context()
	done, err := a.Todos.ListIDs(ctx, todo.Done)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeStore, "failed to count boxes", err)
	}
	err = a.Boxes.Put(ctx, label, len(done))
	if errors.Is(err, boxes.ErrBoxesFull) {
		return f.Fail(ExitFailure, ErrCodeFull, "all boxes are full", err)
	}
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeStore, "failed to fill box", err)
	}
	syncAfterWrite(ctx, a, f)

	return f.Result(map[string]string{"put": label}, "Put "+label+" in a box.\n")
}
