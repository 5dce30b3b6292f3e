// internal/cli/version.go
package cli

import (
	"fmt"

	"github.com/dalemusser/pipekit/pantry/version"
	"github.com/spf13/cobra"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(a.stdout, version.Get().Long())
			return nil
		},
	}
}
