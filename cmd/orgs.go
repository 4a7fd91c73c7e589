package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// orgsCmd 输出交互选择时会出现的候选项：当前用户和可见的组织。
var orgsCmd = &cobra.Command{
	Use:   "orgs",
	Short: "List your login and the organizations visible to the token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := prepareRun(cmd, false)
		if err != nil {
			return err
		}
		defer func() { _ = rc.Logger.Sync() }()

		login, choices, err := rc.Lister.Choices(commandContext(cmd))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, c := range choices {
			if c == login {
				fmt.Fprintf(out, "%s (you)\n", c)
				continue
			}
			fmt.Fprintln(out, c)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(orgsCmd)
}
