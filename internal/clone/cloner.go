// Package clone 负责把单个远端仓库克隆到 destination/<owner>/<name>。
package clone

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"org-clone/internal/github"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"go.uber.org/zap"
)

// Outcome 是一次 CloneOne 的结果。
type Outcome int

const (
	// Failed 只和非 nil 的 error 一起返回，调用方不应把它计入任何结果。
	Failed Outcome = iota
	// Cloned 表示本次调用完成了克隆。
	Cloned
	// Skipped 表示目标目录已存在且非空，视为已克隆。
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Failed:
		return "failed"
	case Cloned:
		return "cloned"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Options 控制克隆行为。
type Options struct {
	// Token 非空时以 HTTP basic auth 发送。
	Token string
	// Depth 大于 0 时做浅克隆。
	Depth int
	// Progress 接收 go-git 的传输进度，nil 表示丢弃。
	Progress io.Writer
}

// cloneFunc 与 git.PlainCloneContext 的非裸仓库形式一致，测试中可替换。
type cloneFunc func(ctx context.Context, path string, opts *git.CloneOptions) error

func plainClone(ctx context.Context, path string, opts *git.CloneOptions) error {
	_, err := git.PlainCloneContext(ctx, path, false, opts)
	return err
}

// Cloner 顺序执行克隆，不在调用之间保留任何网络状态。
type Cloner struct {
	auth     transport.AuthMethod
	depth    int
	progress io.Writer
	logger   *zap.Logger
	clone    cloneFunc
}

func New(opts Options, logger *zap.Logger) *Cloner {
	if logger == nil {
		logger = zap.NewNop()
	}

	var auth transport.AuthMethod
	if opts.Token != "" {
		auth = &http.BasicAuth{
			Username: "x-access-token",
			Password: opts.Token,
		}
	}

	return &Cloner{
		auth:     auth,
		depth:    opts.Depth,
		progress: opts.Progress,
		logger:   logger,
		clone:    plainClone,
	}
}

// TargetPath 返回仓库在 root 下的本地路径 root/<owner>/<name>。
func TargetPath(root, fullName string) string {
	return filepath.Join(root, filepath.FromSlash(fullName))
}

// CloneOne 把 repo 克隆到 root/<fullName>。
// root 必须已存在且是目录，由调用方统一校验。
// 目标目录已存在且非空时返回 Skipped 和 nil，其他失败原样向上返回。
func (c *Cloner) CloneOne(ctx context.Context, repo github.Repository, root string) (Outcome, error) {
	target := TargetPath(root, repo.FullName)

	if err := os.MkdirAll(target, 0o755); err != nil {
		return Failed, fmt.Errorf("create %s: %w", target, err)
	}

	present, err := Present(target)
	if err != nil {
		return Failed, err
	}
	if present {
		c.logSkip(repo, target)
		return Skipped, nil
	}

	c.logger.Debug("cloning repository",
		zap.String("repo", repo.FullName),
		zap.String("url", repo.CloneURL),
		zap.String("path", target),
	)

	err = c.clone(ctx, target, &git.CloneOptions{
		URL:      repo.CloneURL,
		Auth:     c.authFor(repo.CloneURL),
		Depth:    c.depth,
		Progress: c.progress,
	})
	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		c.logSkip(repo, target)
		return Skipped, nil
	}
	if errors.Is(err, transport.ErrEmptyRemoteRepository) {
		return c.initEmpty(repo, target)
	}
	if err != nil {
		return Failed, fmt.Errorf("clone %s: %w", repo.FullName, err)
	}

	c.logger.Debug("cloned repository",
		zap.String("repo", repo.FullName),
		zap.String("path", target),
	)
	return Cloned, nil
}

// initEmpty 处理没有任何提交的远端：与 git clone 一样初始化仓库并配置 origin。
// 目标目录因此非空，下次运行会直接跳过。
func (c *Cloner) initEmpty(repo github.Repository, target string) (Outcome, error) {
	r, err := git.PlainInit(target, false)
	if err != nil {
		return Failed, fmt.Errorf("init empty %s: %w", repo.FullName, err)
	}
	_, err = r.CreateRemote(&gitconfig.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{repo.CloneURL},
	})
	if err != nil {
		return Failed, fmt.Errorf("init empty %s: %w", repo.FullName, err)
	}

	c.logger.Info("remote repository is empty, initialized local repository",
		zap.String("repo", repo.FullName),
		zap.String("path", target),
	)
	return Cloned, nil
}

// authFor 只对 http(s) 地址使用 token，ssh 和本地路径由各自的传输层认证。
func (c *Cloner) authFor(url string) transport.AuthMethod {
	if c.auth == nil {
		return nil
	}
	if strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://") {
		return c.auth
	}
	return nil
}

func (c *Cloner) logSkip(repo github.Repository, target string) {
	c.logger.Info("repository already cloned, skipping",
		zap.String("repo", repo.FullName),
		zap.String("path", target),
	)
}

// Present 判断 path 是否是一个非空目录。不存在时返回 false。
func Present(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return false, err
	}
	if !st.IsDir() {
		return true, nil
	}

	names, err := f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}
