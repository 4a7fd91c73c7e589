package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/google/go-github/v61/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type apiRepo struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	CloneURL string `json:"clone_url"`
	Archived bool   `json:"archived"`
}

func newTestLister(t *testing.T, mux *http.ServeMux) *Lister {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base

	return NewLister(client, zap.NewNop())
}

func makeRepos(owner string, n int, archived func(i int) bool) []apiRepo {
	repos := make([]apiRepo, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("repo-%03d", i)
		repos = append(repos, apiRepo{
			Name:     name,
			FullName: owner + "/" + name,
			CloneURL: "https://github.com/" + owner + "/" + name + ".git",
			Archived: archived != nil && archived(i),
		})
	}
	return repos
}

// servePages 按 page/per_page 切分 repos，并在还有下一页时写入 Link 头。
func servePages(t *testing.T, repos []apiRepo, requests *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}

		q := r.URL.Query()
		assert.Equal(t, "full_name", q.Get("sort"))
		assert.Equal(t, "100", q.Get("per_page"))

		page, err := strconv.Atoi(q.Get("page"))
		if err != nil || page < 1 {
			page = 1
		}

		start := (page - 1) * PageSize
		end := min(start+PageSize, len(repos))
		if start > len(repos) {
			start = len(repos)
		}

		if end < len(repos) {
			next := *r.URL
			nq := next.Query()
			nq.Set("page", strconv.Itoa(page+1))
			next.RawQuery = nq.Encode()
			w.Header().Set("Link", fmt.Sprintf(`<http://%s%s>; rel="next"`, r.Host, next.String()))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(repos[start:end])
	}
}

func TestListAll_FollowsPaginationAndSkipsArchived(t *testing.T) {
	repos := makeRepos("acme", 250, func(i int) bool { return i%10 == 0 })

	var requests atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", servePages(t, repos, &requests))
	lister := newTestLister(t, mux)

	got, err := lister.ListAll(context.Background(), "acme", false)
	require.NoError(t, err)

	assert.Equal(t, int32(3), requests.Load())
	assert.Len(t, got, 225)

	seen := make(map[string]struct{}, len(got))
	for i, repo := range got {
		_, dup := seen[repo.FullName]
		assert.False(t, dup, "duplicate %s", repo.FullName)
		seen[repo.FullName] = struct{}{}

		assert.NotEqual(t, "acme/repo-000", repo.FullName)
		if i > 0 {
			assert.Less(t, got[i-1].FullName, repo.FullName)
		}
	}
}

func TestListAll_MapsDescriptorFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", servePages(t, []apiRepo{
		{Name: "alpha", FullName: "acme/alpha", CloneURL: "https://github.com/acme/alpha.git"},
		{Name: "old", FullName: "acme/old", CloneURL: "https://github.com/acme/old.git", Archived: true},
	}, nil))
	lister := newTestLister(t, mux)

	got, err := lister.ListAll(context.Background(), "acme", false)
	require.NoError(t, err)
	assert.Equal(t, []Repository{
		{Name: "alpha", FullName: "acme/alpha", CloneURL: "https://github.com/acme/alpha.git"},
	}, got)
}

func TestListAll_SelfAccountUsesAuthenticatedEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "owner", r.URL.Query().Get("type"))
		servePages(t, makeRepos("octocat", 2, nil), nil)(w, r)
	})
	mux.HandleFunc("/orgs/octocat/repos", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("organization endpoint must not be used for the caller's own account")
	})
	lister := newTestLister(t, mux)

	got, err := lister.ListAll(context.Background(), "octocat", true)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "octocat/repo-000", got[0].FullName)
}

func TestListAll_EmptyAccount(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/empty/repos", servePages(t, nil, nil))
	lister := newTestLister(t, mux)

	got, err := lister.ListAll(context.Background(), "empty", false)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListAll_AuthorizationErrorPropagates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
	})
	lister := newTestLister(t, mux)

	got, err := lister.ListAll(context.Background(), "acme", false)
	require.Error(t, err)
	assert.Nil(t, got)

	var apiErr *github.ErrorResponse
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Response.StatusCode)
	assert.Equal(t, "Bad credentials", apiErr.Message)
}

func TestList_ErrorOnLaterPageStopsIteration(t *testing.T) {
	repos := makeRepos("acme", 150, nil)
	pages := servePages(t, repos, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		pages(w, r)
	})
	lister := newTestLister(t, mux)

	var yielded int
	var gotErr error
	for _, err := range lister.List(context.Background(), "acme", false) {
		if err != nil {
			gotErr = err
			continue
		}
		yielded++
	}

	assert.Equal(t, 100, yielded)
	require.Error(t, gotErr)
}

func TestList_StopsFetchingWhenConsumerBreaks(t *testing.T) {
	var requests atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", servePages(t, makeRepos("acme", 250, nil), &requests))
	lister := newTestLister(t, mux)

	for repo, err := range lister.List(context.Background(), "acme", false) {
		require.NoError(t, err)
		assert.Equal(t, "acme/repo-000", repo.FullName)
		break
	}

	assert.Equal(t, int32(1), requests.Load())
}

func TestChoices_LoginFirstThenOrganizations(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"login":"octocat"}`))
	})
	mux.HandleFunc("/user/orgs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"login":"acme"},{"login":"globex"}]`))
	})
	lister := newTestLister(t, mux)

	login, choices, err := lister.Choices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "octocat", login)
	assert.Equal(t, []string{"octocat", "acme", "globex"}, choices)
}

func TestChoices_FollowsOrganizationPages(t *testing.T) {
	var requests atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"login":"octocat"}`))
	})
	mux.HandleFunc("/user/orgs", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			page = 1
		}

		orgs := make([]map[string]string, 0, PageSize)
		for i := 0; i < PageSize && (page-1)*PageSize+i < 150; i++ {
			orgs = append(orgs, map[string]string{"login": fmt.Sprintf("org-%03d", (page-1)*PageSize+i)})
		}
		if page == 1 {
			next := *r.URL
			q := next.Query()
			q.Set("page", "2")
			next.RawQuery = q.Encode()
			w.Header().Set("Link", fmt.Sprintf(`<http://%s%s>; rel="next"`, r.Host, next.String()))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(orgs)
	})
	lister := newTestLister(t, mux)

	_, choices, err := lister.Choices(context.Background())
	require.NoError(t, err)

	want := []string{"octocat"}
	for i := 0; i < 150; i++ {
		want = append(want, fmt.Sprintf("org-%03d", i))
	}
	assert.Equal(t, want, choices)
	assert.Equal(t, int32(2), requests.Load())
}

func TestLogin_UnauthorizedToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
	})
	lister := newTestLister(t, mux)

	_, err := lister.Login(context.Background())
	var apiErr *github.ErrorResponse
	assert.True(t, errors.As(err, &apiErr))
}
