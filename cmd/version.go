package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/pterodactyl/transactfs/system"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and exit",
	// Printing the version does not need a configuration file.
	PersistentPreRun: func(*cobra.Command, []string) {},
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "transactfs v%s (%s/%s)\n", system.Version, runtime.GOOS, runtime.GOARCH)
	},
}
