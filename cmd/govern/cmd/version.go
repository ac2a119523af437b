package cmd

import (
	"github.com/spf13/cobra"

	"boscoin.io/govern/lib/version"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(c *cobra.Command, args []string) {
		run(c, func() (interface{}, error) {
			return version.GetInfo(), nil
		})
	},
}
