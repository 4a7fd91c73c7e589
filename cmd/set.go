package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"org-clone/internal/config"

	"github.com/spf13/cobra"
)

// setCmd 实现 set 子命令，用于查看或修改默认配置。
// 支持两种模式：
// 1. org-clone set - 显示当前配置
// 2. org-clone set <key> <value> - 设置配置项（destination、depth、orgs）
var setCmd = newSetCmd()

// newSetCmd 构建 set 命令，便于在测试中复用。
func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set or show default configuration",
		Long: `View or modify default configuration (destination, depth, orgs).

Without arguments, displays the current configuration.
With key/value, sets the specified option. The token is never stored;
pass --token or set GITHUB_TOKEN instead.`,
		Example: `  org-clone set
  org-clone set destination ~/src
  org-clone set depth 1
  org-clone set orgs acme,globex
  org-clone set orgs ""`,
		Args: validateSetArgs,
		RunE: runSet,
	}
}

func init() {
	rootCmd.AddCommand(setCmd)
}

// validateSetArgs 校验 set 参数格式。
func validateSetArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: org-clone set [destination|depth|orgs] <value>")
	}
	return nil
}

func runSet(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 无参数时显示当前配置
	if len(args) == 0 {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "destination: %s\ndepth: %d\n", cfg.Destination, cfg.Depth)
		if len(cfg.Orgs) == 0 {
			fmt.Fprintln(out, "orgs: (prompt)")
		} else {
			fmt.Fprintf(out, "orgs: %s\n", strings.Join(cfg.Orgs, ", "))
		}
		return nil
	}

	key := args[0]
	val := args[1]

	switch key {
	case "destination":
		dest, err := config.ResolveDestination(val)
		if err != nil {
			return err
		}
		cfg.Destination = dest
	case "depth":
		depth, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid depth %q: %w", val, err)
		}
		if depth < 0 {
			return fmt.Errorf("depth must be >= 0, got %d", depth)
		}
		cfg.Depth = depth
	case "orgs":
		cfg.Orgs = strings.FieldsFunc(val, func(r rune) bool { return r == ',' || r == ' ' })
		if issues := config.ValidateConfig(cfg); len(issues) > 0 {
			return fmt.Errorf("invalid orgs: %s", strings.Join(issues, "; "))
		}
	default:
		return fmt.Errorf("unsupported key %q (supported: destination, depth, orgs)", key)
	}

	return config.Save(*cfg)
}
