package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// listURLs 标志控制是否同时输出 clone URL。
var listURLs bool

// listCmd 实现 list 子命令，列出某个账号下未归档的仓库，不需要 destination。
// 省略参数时列出当前用户自己的仓库。
// 用法: org-clone list [org] [--urls]
var listCmd = &cobra.Command{
	Use:   "list [org]",
	Short: "List non-archived repositories of an organization",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listURLs, "urls", false, "Also print clone URLs")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	rc, err := prepareRun(cmd, false)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Logger.Sync() }()

	ctx := commandContext(cmd)
	login, err := rc.Lister.Login(ctx)
	if err != nil {
		return err
	}

	account := login
	if len(args) == 1 {
		account = args[0]
	}
	self := strings.EqualFold(account, login)

	out := cmd.OutOrStdout()
	count := 0
	// 边拉取边输出，不等全部分页完成
	for repo, err := range rc.Lister.List(ctx, account, self) {
		if err != nil {
			return err
		}
		count++
		if listURLs {
			fmt.Fprintf(out, "%s\t%s\n", repo.FullName, repo.CloneURL)
			continue
		}
		fmt.Fprintln(out, repo.FullName)
	}

	if count == 0 {
		fmt.Fprintln(out, "no repositories found")
	}
	return nil
}
