// Package orchestrator 按用户选择的顺序逐个组织列出仓库并顺序克隆。
//
// 整个流程是单线程的：任意时刻最多只有一个 API 请求或一次克隆在进行。
// 遇到第一个不可恢复的错误立即返回，已经克隆到磁盘的仓库保持原样。
package orchestrator

import (
	"context"
	"strings"

	"org-clone/internal/clone"
	"org-clone/internal/github"

	"go.uber.org/zap"
)

// Lister 列出某个账号下全部未归档的仓库。
type Lister interface {
	ListAll(ctx context.Context, account string, self bool) ([]github.Repository, error)
}

// Cloner 克隆单个仓库，已存在时返回 clone.Skipped。
type Cloner interface {
	CloneOne(ctx context.Context, repo github.Repository, root string) (clone.Outcome, error)
}

// Reporter 是进度展示能力，交互终端和无界面测试各有实现。
type Reporter interface {
	Start(org string, total int)
	ReportProgress(current, total int)
	Done(org string)
}

// Selector 从候选项中选出要处理的组织，返回值保持候选项中的顺序。
type Selector interface {
	PromptSelection(choices []string) ([]string, error)
}

// OrgSummary 记录单个组织的处理结果。
type OrgSummary struct {
	Org     string
	Total   int
	Cloned  int
	Skipped int
}

// Summary 汇总一次成功运行的结果，出错时只包含出错之前完成的组织。
type Summary struct {
	Orgs []OrgSummary
}

func (s Summary) Cloned() int {
	n := 0
	for _, o := range s.Orgs {
		n += o.Cloned
	}
	return n
}

func (s Summary) Skipped() int {
	n := 0
	for _, o := range s.Orgs {
		n += o.Skipped
	}
	return n
}

type Orchestrator struct {
	lister   Lister
	cloner   Cloner
	reporter Reporter
	logger   *zap.Logger
}

func New(lister Lister, cloner Cloner, reporter Reporter, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Orchestrator{
		lister:   lister,
		cloner:   cloner,
		reporter: reporter,
		logger:   logger,
	}
}

// Run 依次处理 orgs。login 是当前认证用户，与之相同的条目按个人仓库列出。
// root 必须是已存在的目录。
func (o *Orchestrator) Run(ctx context.Context, login string, orgs []string, root string) (Summary, error) {
	var summary Summary

	for _, org := range orgs {
		result, err := o.runOrg(ctx, login, org, root)
		if err != nil {
			return summary, err
		}
		summary.Orgs = append(summary.Orgs, result)
	}

	return summary, nil
}

func (o *Orchestrator) runOrg(ctx context.Context, login, org, root string) (OrgSummary, error) {
	result := OrgSummary{Org: org}
	self := strings.EqualFold(org, login)

	// 先取完全部分页，进度条需要提前知道总数
	repos, err := o.lister.ListAll(ctx, org, self)
	if err != nil {
		o.logger.Debug("list repositories failed", zap.String("org", org), zap.Error(err))
		return result, err
	}
	result.Total = len(repos)

	o.logger.Info("processing organization",
		zap.String("org", org),
		zap.Bool("self", self),
		zap.Int("repositories", len(repos)),
	)

	o.reporter.Start(org, len(repos))
	for i, repo := range repos {
		outcome, err := o.cloner.CloneOne(ctx, repo, root)
		if err != nil {
			o.logger.Debug("clone failed", zap.String("repo", repo.FullName), zap.Error(err))
			return result, err
		}

		switch outcome {
		case clone.Skipped:
			result.Skipped++
		case clone.Cloned:
			result.Cloned++
		}
		o.reporter.ReportProgress(i+1, len(repos))
	}
	o.reporter.Done(org)

	return result, nil
}

type nopReporter struct{}

func (nopReporter) Start(string, int)       {}
func (nopReporter) ReportProgress(int, int) {}
func (nopReporter) Done(string)             {}
