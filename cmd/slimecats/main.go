package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/slimecats/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// ExitErrors were already rendered by the command's formatter.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || exitErr.Err == nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
