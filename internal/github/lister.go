package github

import (
	"context"
	"fmt"
	"iter"

	"github.com/google/go-github/v61/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// PageSize 是每次列表请求的条目数，GitHub 允许的上限。
const PageSize = 100

// sortFullName 让分页之间的顺序保持确定。
const sortFullName = "full_name"

// Repository 描述一个待克隆的远端仓库，获取后不再修改。
type Repository struct {
	Name     string
	FullName string
	CloneURL string
}

// Lister 通过 GitHub API 列出账号/组织下的仓库。
type Lister struct {
	client *github.Client
	logger *zap.Logger
}

// NewClient 创建一个使用 token 认证的 GitHub 客户端。
func NewClient(ctx context.Context, token string) *github.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	return github.NewClient(oauth2.NewClient(ctx, ts))
}

func NewLister(client *github.Client, logger *zap.Logger) *Lister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lister{client: client, logger: logger}
}

// List 按 full_name 排序逐页拉取 account 下未归档的仓库。
// self 为 true 时列出当前认证用户自己拥有的仓库，否则列出组织仓库。
// 任何请求错误都会原样产出一次并结束迭代，不做重试。
// 每次调用都从第一页重新开始。
func (l *Lister) List(ctx context.Context, account string, self bool) iter.Seq2[Repository, error] {
	return func(yield func(Repository, error) bool) {
		page := 1
		for {
			repos, resp, err := l.fetchPage(ctx, account, self, page)
			if err != nil {
				l.logger.Debug("list repositories failed",
					zap.String("account", account),
					zap.Int("page", page),
					zap.Error(err),
				)
				yield(Repository{}, err)
				return
			}

			l.logger.Debug("fetched repository page",
				zap.String("account", account),
				zap.Bool("self", self),
				zap.Int("page", page),
				zap.Int("count", len(repos)),
			)

			for _, r := range repos {
				if r.GetArchived() {
					continue
				}
				if !yield(toRepository(r), nil) {
					return
				}
			}

			if resp == nil || resp.NextPage == 0 {
				return
			}
			page = resp.NextPage
		}
	}
}

// ListAll 将 List 的结果全部收集到切片中。
func (l *Lister) ListAll(ctx context.Context, account string, self bool) ([]Repository, error) {
	out := make([]Repository, 0)
	for repo, err := range l.List(ctx, account, self) {
		if err != nil {
			return nil, err
		}
		out = append(out, repo)
	}
	return out, nil
}

func (l *Lister) fetchPage(ctx context.Context, account string, self bool, page int) ([]*github.Repository, *github.Response, error) {
	listOptions := github.ListOptions{Page: page, PerPage: PageSize}

	if self {
		return l.client.Repositories.ListByAuthenticatedUser(ctx, &github.RepositoryListByAuthenticatedUserOptions{
			Type:        "owner",
			Sort:        sortFullName,
			ListOptions: listOptions,
		})
	}

	return l.client.Repositories.ListByOrg(ctx, account, &github.RepositoryListByOrgOptions{
		Sort:        sortFullName,
		ListOptions: listOptions,
	})
}

// Login 返回 token 对应用户的登录名。
func (l *Lister) Login(ctx context.Context) (string, error) {
	user, _, err := l.client.Users.Get(ctx, "")
	if err != nil {
		return "", err
	}
	if user.GetLogin() == "" {
		return "", fmt.Errorf("authenticated user has no login")
	}
	return user.GetLogin(), nil
}

// Organizations 返回 token 可见的全部组织登录名，按 API 返回顺序。
func (l *Lister) Organizations(ctx context.Context) ([]string, error) {
	opts := &github.ListOptions{PerPage: PageSize, Page: 1}

	orgs := make([]string, 0)
	for {
		page, resp, err := l.client.Organizations.List(ctx, "", opts)
		if err != nil {
			return nil, err
		}
		for _, org := range page {
			if org.GetLogin() != "" {
				orgs = append(orgs, org.GetLogin())
			}
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return orgs, nil
}

// Choices 返回交互选择的候选项：自己的登录名排在最前，其后是组织。
func (l *Lister) Choices(ctx context.Context) (login string, choices []string, err error) {
	login, err = l.Login(ctx)
	if err != nil {
		return "", nil, err
	}

	orgs, err := l.Organizations(ctx)
	if err != nil {
		return "", nil, err
	}

	choices = make([]string, 0, len(orgs)+1)
	choices = append(choices, login)
	choices = append(choices, orgs...)
	return login, choices, nil
}

func toRepository(r *github.Repository) Repository {
	return Repository{
		Name:     r.GetName(),
		FullName: r.GetFullName(),
		CloneURL: r.GetCloneURL(),
	}
}
