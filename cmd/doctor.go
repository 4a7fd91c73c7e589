package cmd

import (
	"fmt"
	"io"

	"org-clone/internal/config"
	"org-clone/internal/github"
	"org-clone/internal/repo"

	"github.com/spf13/cobra"
)

// doctorCmd 实现 doctor 子命令，一站式诊断环境和配置问题。
// 依次执行 4 项检查：配置合法性、destination、token、已有克隆。
// 有错误时返回非零退出码，仅警告时返回 0。
// 用法: org-clone doctor
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration, token and existing clones",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// runDoctor 是 doctor 命令的核心逻辑：
//  1. 配置合法性（depth、重复的组织）
//  2. destination 存在且是目录
//  3. token 可用（请求 /user）
//  4. destination 下已有克隆的 HEAD 可读，空目录和非 git 目录给出提示
//
// 输出使用 ✅/⚠️/❌ 分类显示，有错误时返回 error（exit 非零）。
func runDoctor(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Running diagnostics...")

	hasError := false

	// 1. 配置合法性检查
	cfg, cfgErr := loadConfig(cmd)
	if cfgErr != nil {
		fmt.Fprintf(out, "❌ Config: %v\n", cfgErr)
		return fmt.Errorf("doctor found issues")
	}
	issues := config.ValidateConfig(cfg)
	if len(issues) == 0 {
		fmt.Fprintln(out, "✅ Config: OK")
	} else {
		hasError = true
		fmt.Fprintf(out, "❌ Config: %d issue(s)\n", len(issues))
		printLines(out, issues)
	}

	// 2. destination 检查
	dest, destErr := config.ResolveDestination(cfg.Destination)
	if destErr != nil {
		hasError = true
		fmt.Fprintf(out, "❌ Destination: %v\n", destErr)
	} else {
		fmt.Fprintf(out, "✅ Destination: %s\n", dest)
	}

	// 3. token 检查
	if cfg.Token == "" {
		hasError = true
		fmt.Fprintln(out, "❌ Token: not set (use --token or GITHUB_TOKEN)")
	} else {
		lister := github.NewLister(newGitHubClient(commandContext(cmd), cfg.Token), nil)
		login, err := lister.Login(commandContext(cmd))
		if err != nil {
			hasError = true
			fmt.Fprintf(out, "❌ Token: %v\n", err)
		} else {
			fmt.Fprintf(out, "✅ Token: authenticated as %s\n", login)
		}
	}

	// 4. 已有克隆检查（需要有效的 destination）
	if destErr != nil {
		fmt.Fprintln(out, "⚠️  Clones: skipped (no valid destination)")
	} else {
		clones, err := repo.ScanClones(dest)
		if err != nil {
			hasError = true
			fmt.Fprintf(out, "❌ Clones: %v\n", err)
		} else {
			problems, warnings := repo.CheckClones(clones)
			switch {
			case len(problems) > 0:
				hasError = true
				fmt.Fprintf(out, "❌ Clones: %d/%d with issues\n", len(problems), len(clones))
				printLines(out, problems)
			case len(clones) == 0:
				fmt.Fprintln(out, "✅ Clones: none yet")
			default:
				fmt.Fprintf(out, "✅ Clones: %d OK\n", len(clones))
			}
			if len(warnings) > 0 {
				fmt.Fprintf(out, "⚠️  Clones: %d warning(s)\n", len(warnings))
				printLines(out, warnings)
			}
		}
	}

	if hasError {
		return fmt.Errorf("doctor found issues")
	}
	return nil
}

// printLines 将字符串列表以缩进列表形式输出，每行前加 "   - " 前缀。
func printLines(out io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintf(out, "   - %s\n", line)
	}
}
