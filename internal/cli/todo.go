package cli

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/slimecats/internal/app"
	"github.com/roach88/slimecats/internal/todo"
)

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a todo",
		Long: `Add a todo and sync it to every configured peer.

Example:
  slimecats add take a nap in the sun`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(rootOpts, strings.Join(args, " "), cmd)
		},
	}
}

func runAdd(opts *RootOptions, text string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	a, err := opts.openApp(f)
	if err != nil {
		return err
	}
	defer closeApp(a)

	if err := a.RequireAuthor(); err != nil {
		return f.Fail(ExitCommandError, ErrCodeNoAuthor, "adding a todo needs an author keypair", err)
	}
	ctx := cmd.Context()
	t := a.Todos.MakeNew(text)
	if err := a.Todos.Save(ctx, t); err != nil {
		return f.Fail(ExitFailure, ErrCodeStore, "failed to save todo", err)
	}
	syncAfterWrite(ctx, a, f)

	return f.Result(t, "Added: "+todoLine(t)+"\n")
}

// NewDoneCommand creates the done command.
func NewDoneCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done [n]",
		Short: "Mark the n-th todo done",
		Long: `Mark a todo done. n is the number shown by "slimecats list" and
defaults to 1.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 1
			if len(args) == 1 {
				var err error
				if n, err = strconv.Atoi(args[0]); err != nil {
					return rootOpts.formatter(cmd).Fail(ExitCommandError, ErrCodeUsage, "n must be a number", err)
				}
			}
			return runDone(rootOpts, n, cmd)
		},
	}
}

func runDone(opts *RootOptions, n int, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	a, err := opts.openApp(f)
	if err != nil {
		return err
	}
	defer closeApp(a)

	if err := a.RequireAuthor(); err != nil {
		return f.Fail(ExitCommandError, ErrCodeNoAuthor, "marking a todo done needs an author keypair", err)
	}
	ctx := cmd.Context()
	t, err := a.Todos.Nth(ctx, todo.All, n)
	if errors.Is(err, todo.ErrAbsent) {
		return f.Fail(ExitFailure, ErrCodeNotFound, "no todo #"+strconv.Itoa(n), err)
	}
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeStore, "failed to read todos", err)
	}
	if t, err = a.Todos.MarkDone(ctx, t.ID); err != nil {
		return f.Fail(ExitFailure, ErrCodeStore, "failed to mark todo done", err)
	}
	syncAfterWrite(ctx, a, f)

	return f.Result(t, "Done: "+todoLine(t)+"\n")
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [all]",
		Short: "List todos",
		Long: `List the todos not yet done, or every todo with "all". Done todos are
struck through.`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := todo.Undone
			if len(args) == 1 {
				scope = todo.All
			}
			return runList(rootOpts, scope, cmd)
		},
	}
}

func runList(opts *RootOptions, scope todo.Scope, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	a, err := opts.openApp(f)
	if err != nil {
		return err
	}
	defer closeApp(a)

	todos, err := listNumbered(cmd.Context(), a, scope)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeStore, "failed to list todos", err)
	}
	return f.Result(todos, renderTodos(todos))
}

// listNumbered numbers the full listing, then filters to scope, so numbers
// stay stable between "list" and "list all".
func listNumbered(ctx context.Context, a *app.App, scope todo.Scope) ([]numberedTodo, error) {
	all, err := a.Todos.List(ctx, todo.All)
	if err != nil {
		return nil, err
	}
	out := []numberedTodo{}
	for i, t := range all {
		if scope == todo.Undone && t.IsDone || scope == todo.Done && !t.IsDone {
			continue
		}
		out = append(out, numberedTodo{N: i + 1, Todo: t})
	}
	return out, nil
}
