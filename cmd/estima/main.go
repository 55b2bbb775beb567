package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/estima/internal/cmd"
	"github.com/felixgeelhaar/estima/internal/errors"
	"github.com/felixgeelhaar/estima/internal/exitcode"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		exitcode.Exit(exitcode.Success)
	}

	if ctx.Err() == context.Canceled {
		fmt.Fprintln(os.Stderr, "\nOperation cancelled by user")
		exitcode.Exit(exitcode.Interrupted)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var estimaErr *errors.EstimaError
	if stderrors.As(err, &estimaErr) {
		for _, hint := range estimaErr.Suggestions {
			fmt.Fprintf(os.Stderr, "  hint: %s\n", hint)
		}
	}
	exitcode.ExitWithError(err)
}
