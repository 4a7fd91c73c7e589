package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// 发布时通过 -ldflags "-X org-clone/cmd.Version=... -X org-clone/cmd.Commit=..." 覆盖
var (
	Version = "0.1.0"
	Commit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "org-clone %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
