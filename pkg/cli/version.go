package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentmatrix-dev/agentmatrix/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "agentmatrix %s\n", version.String())
	},
}
