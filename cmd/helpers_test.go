package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	gogithub "github.com/google/go-github/v61/github"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func withTempHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("ORG_CLONE_TOKEN", "")
	t.Setenv("ORG_CLONE_DESTINATION", "")
	t.Setenv("ORG_CLONE_DEPTH", "")
	t.Setenv("ORG_CLONE_ORGS", "")
	return home
}

// resetFlags 恢复包级 flag 变量，测试之间互不影响。
func resetFlags(t *testing.T) {
	t.Helper()

	restore := func() {
		flagToken, flagDestination, flagVerbose = "", "", false
		cloneOrgs, cloneAll, cloneDepth, cloneDryRun = nil, false, 0, false
		listURLs = false
	}
	restore()

	oldTerminal := stdinIsTerminal
	stdinIsTerminal = func() bool { return false }

	t.Cleanup(func() {
		restore()
		stdinIsTerminal = oldTerminal
	})
}

type apiRepo struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	CloneURL string `json:"clone_url"`
	Archived bool   `json:"archived"`
}

// fakeGitHub 是一个最小的 GitHub API：/user、/user/orgs、/user/repos、/orgs/{org}/repos。
type fakeGitHub struct {
	login string
	orgs  []string
	repos map[string][]apiRepo
	fail  map[string]int

	mu       sync.Mutex
	requests []string
}

func (f *fakeGitHub) handler(t *testing.T) http.Handler {
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if status := f.fail["user"]; status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
			return
		}
		writeJSON(w, map[string]string{"login": f.login})
	})
	mux.HandleFunc("/user/orgs", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		orgs := make([]map[string]string, 0, len(f.orgs))
		for _, o := range f.orgs {
			orgs = append(orgs, map[string]string{"login": o})
		}
		writeJSON(w, orgs)
	})
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, f.reposFor(f.login))
	})
	mux.HandleFunc("/orgs/{org}/repos", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		org := r.PathValue("org")
		if status := f.fail[org]; status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"message":"Must have admin rights to Repository."}`))
			return
		}
		writeJSON(w, f.reposFor(org))
	})
	return mux
}

func (f *fakeGitHub) reposFor(account string) []apiRepo {
	if repos, ok := f.repos[account]; ok {
		return repos
	}
	return []apiRepo{}
}

func (f *fakeGitHub) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.URL.Path)
}

func (f *fakeGitHub) requested(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.requests {
		if p == path {
			return true
		}
	}
	return false
}

// installFakeGitHub 启动 httptest 服务并让 newGitHubClient 指向它。
func installFakeGitHub(t *testing.T, f *fakeGitHub) {
	t.Helper()

	server := httptest.NewServer(f.handler(t))
	t.Cleanup(server.Close)

	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)

	old := newGitHubClient
	newGitHubClient = func(_ context.Context, _ string) *gogithub.Client {
		client := gogithub.NewClient(nil)
		client.BaseURL = base
		return client
	}
	t.Cleanup(func() { newGitHubClient = old })
}

// forbidGitHub 确保在参数校验失败时不会创建 API 客户端。
func forbidGitHub(t *testing.T) {
	t.Helper()

	old := newGitHubClient
	newGitHubClient = func(context.Context, string) *gogithub.Client {
		t.Fatal("GitHub client must not be created")
		return nil
	}
	t.Cleanup(func() { newGitHubClient = old })
}

func newTestCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var out, errBuf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&out)
	c.SetErr(&errBuf)
	return c, &out, &errBuf
}

// createSourceRepo 创建一个带一次提交的本地仓库，作为 clone_url 使用。
func createSourceRepo(t *testing.T, name string) string {
	t.Helper()
	return initRepoAt(t, filepath.Join(t.TempDir(), name))
}

// initRepoAt 在 path 初始化仓库并提交一个 README.md。
func initRepoAt(t *testing.T, path string) string {
	t.Helper()

	name := filepath.Base(path)
	require.NoError(t, os.MkdirAll(path, 0o755))

	r, err := git.PlainInit(path, false)
	require.NoError(t, err)

	wt, err := r.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(path, "README.md"), []byte(name+"\n"), 0o644))
	_, err = wt.Add("README.md")
	require.NoError(t, err)

	sig := &object.Signature{
		Name:  "Test",
		Email: "test@example.com",
		When:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	_, err = wt.Commit("initial", &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)

	return path
}
