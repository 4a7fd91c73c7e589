package cmd

import (
	"fmt"
	"os"

	"org-clone/internal/clone"
	"org-clone/internal/orchestrator"
	"org-clone/internal/progress"

	"github.com/spf13/cobra"
)

var (
	flagToken       string
	flagDestination string
	flagVerbose     bool

	cloneOrgs   []string
	cloneAll    bool
	cloneDepth  int
	cloneDryRun bool
)

// rootCmd 是默认的克隆命令：选择组织后把其中所有未归档仓库克隆到 destination。
// 用法: org-clone --destination <path> --token <token> [--org <name>]... [--all]
var rootCmd = &cobra.Command{
	Use:   "org-clone",
	Short: "Clone every repository of selected GitHub organizations",
	Long: `Clone every non-archived repository of the selected GitHub organizations
(and, optionally, your own account) into <destination>/<owner>/<name>.

Repositories whose target directory already exists and is non-empty are
skipped, so re-running over the same destination only clones what is new.`,
	Example: `  org-clone --destination ~/src --token $GITHUB_TOKEN
  org-clone --destination ~/src --org acme --org globex
  org-clone --destination ~/src --all --dry-run`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runClone,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagToken, "token", "t", "", "GitHub token (default $ORG_CLONE_TOKEN or $GITHUB_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&flagDestination, "destination", "d", "", "Directory to clone into (must exist)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.Flags().StringArrayVarP(&cloneOrgs, "org", "o", nil, "Organization to clone without prompting (repeatable)")
	rootCmd.Flags().BoolVar(&cloneAll, "all", false, "Clone your own repositories and every visible organization")
	rootCmd.Flags().IntVar(&cloneDepth, "depth", 0, "Create shallow clones with the given depth (0 for full history)")
	rootCmd.Flags().BoolVar(&cloneDryRun, "dry-run", false, "Show what would be cloned without cloning")
}

// runClone 依次执行：读取配置并校验 destination、获取候选组织、选择、顺序克隆。
func runClone(cmd *cobra.Command, _ []string) error {
	rc, err := prepareRun(cmd, true)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Logger.Sync() }()

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	login, choices, err := rc.Lister.Choices(ctx)
	if err != nil {
		return err
	}

	selector, err := newSelector(cmd, rc.Config)
	if err != nil {
		return err
	}
	orgs, err := selector.PromptSelection(choices)
	if err != nil {
		return err
	}
	if len(orgs) == 0 {
		fmt.Fprintln(out, "no organizations selected")
		return nil
	}

	var cloner orchestrator.Cloner
	if cloneDryRun {
		cloner = clone.DryRun{Out: out}
	} else {
		opts := clone.Options{Token: rc.Config.Token, Depth: rc.Config.Depth}
		if flagVerbose {
			opts.Progress = cmd.ErrOrStderr()
		}
		cloner = clone.New(opts, rc.Logger)
	}

	reporter := progress.New(cmd.ErrOrStderr())
	summary, err := orchestrator.New(rc.Lister, cloner, reporter, rc.Logger).Run(ctx, login, orgs, rc.Destination)
	if err != nil {
		return err
	}

	if cloneDryRun {
		fmt.Fprintf(out, "dry run: %d to clone, %d already present\n", summary.Cloned(), summary.Skipped())
		return nil
	}
	fmt.Fprintf(out, "cloned %d, skipped %d\n", summary.Cloned(), summary.Skipped())
	return nil
}
