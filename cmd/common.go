package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"org-clone/internal/config"
	"org-clone/internal/github"
	"org-clone/internal/orchestrator"
	"org-clone/internal/prompt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// newGitHubClient 测试中替换为指向 httptest 服务的客户端。
var newGitHubClient = github.NewClient

// stdinIsTerminal 决定是否可以弹出交互式选择。
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// RunContext holds the common initialization result for commands.
type RunContext struct {
	Config      *config.Config
	Destination string
	Logger      *zap.Logger
	Lister      *github.Lister
}

// loadConfig 读取配置文件和环境变量，再用命令行参数覆盖。
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if flagToken != "" {
		cfg.Token = flagToken
	}
	if flagDestination != "" {
		cfg.Destination = flagDestination
	}
	if f := cmd.Flags().Lookup("depth"); f != nil && f.Changed {
		cfg.Depth = cloneDepth
	}
	return cfg, nil
}

// prepareRun performs common command initialization:
// load config, validate destination and token, build logger and API client.
// destination 校验在任何网络请求之前完成。
func prepareRun(cmd *cobra.Command, requireDestination bool) (*RunContext, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	rc := &RunContext{Config: cfg}

	if requireDestination {
		dest, err := config.ResolveDestination(cfg.Destination)
		if err != nil {
			return nil, err
		}
		rc.Destination = dest
	}

	if cfg.Depth < 0 {
		return nil, fmt.Errorf("depth must be >= 0, got %d", cfg.Depth)
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: pass --token or set GITHUB_TOKEN", config.ErrTokenRequired)
	}

	rc.Logger = newLogger(cmd.ErrOrStderr(), flagVerbose)
	rc.Lister = github.NewLister(newGitHubClient(commandContext(cmd), cfg.Token), rc.Logger)
	return rc, nil
}

// newSelector 按优先级选择组织来源：--org/--all、配置文件中的 orgs、交互式多选。
func newSelector(cmd *cobra.Command, cfg *config.Config) (orchestrator.Selector, error) {
	if cloneAll || len(cloneOrgs) > 0 {
		return prompt.Static{Orgs: cloneOrgs, All: cloneAll}, nil
	}
	if len(cfg.Orgs) > 0 {
		return prompt.Static{Orgs: cfg.Orgs}, nil
	}
	if !stdinIsTerminal() {
		return nil, fmt.Errorf("no organizations given and stdin is not a terminal; use --org or --all")
	}
	return prompt.MultiSelect{Out: cmd.OutOrStdout()}, nil
}

// newLogger 创建输出到 w 的控制台格式日志，verbose 时输出 debug 级别。
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""
	encoderCfg.CallerKey = ""

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
