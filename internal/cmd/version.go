package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/estima/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print version information including version number, git commit,
build date, Go version, and platform. --verbose prints all of it.`,
		Args: cobra.NoArgs,
		RunE: instrumented("version", runVersion),
	}
}

func runVersion(ctx context.Context, cc *CommandContext, cmd *cobra.Command, args []string) error {
	info := version.GetInfo()

	return render(cmd, cc, info, func(w io.Writer) error {
		if cc.Verbose {
			fmt.Fprintln(w, info.String())
			return nil
		}
		fmt.Fprintf(w, "estima %s\n", info.Short())
		return nil
	})
}
