package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/qfactor/version"
)

// VersionCmd prints build information
var VersionCmd = newVersionCmd()

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show qfactor version information",
		Long:  `Display version, build time, commit hash and platform information for the qfactor binary.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				return printJSON(out, info)
			}
			fmt.Fprintln(out, info.String())
			return nil
		},
	}
}
