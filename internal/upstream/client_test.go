package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-github/v43/github"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/simplesurance/fedora-bot/internal/boterr"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	restClt := github.NewClient(srv.Client())
	baseURL, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	restClt.BaseURL = baseURL

	return &Client{
		owner:      "osbuild",
		restClt:    restClt,
		graphQLClt: githubv4.NewEnterpriseClient(srv.URL+"/graphql", srv.Client()),
		logger:     zap.L(),
	}
}

func TestLatestRelease(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/osbuild/osbuild-composer/releases/latest", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"tag_name": "v104", "name": "104"}`)
	})

	rel, err := newTestClient(t, mux).LatestRelease(context.Background(), "osbuild-composer")
	require.NoError(t, err)
	assert.Equal(t, &Release{Tag: "v104", Version: "104"}, rel)
}

func TestLatestReleaseFallsBackToTags(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/osbuild/koji-osbuild/releases/latest", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "refs/tags/")

		fmt.Fprint(w, `{"data": {"repository": {"refs": {"nodes": [{"name": "v7"}]}}}}`)
	})

	rel, err := newTestClient(t, mux).LatestRelease(context.Background(), "koji-osbuild")
	require.NoError(t, err)
	assert.Equal(t, &Release{Tag: "v7", Version: "7"}, rel)
}

func TestLatestReleaseWithoutTagsIsDataError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/osbuild/empty/releases/latest", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data": {"repository": {"refs": {"nodes": []}}}}`)
	})

	_, err := newTestClient(t, mux).LatestRelease(context.Background(), "empty")
	require.Error(t, err)
	assert.True(t, boterr.IsData(err))
}

func TestServerErrorIsTransient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/osbuild/osbuild/releases/latest", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := newTestClient(t, mux).LatestRelease(context.Background(), "osbuild")
	require.Error(t, err)
	assert.True(t, boterr.IsTransient(err))
}

func TestRateLimitIsTransient(t *testing.T) {
	reset := time.Now().Add(10 * time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/osbuild/osbuild/releases/latest", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
	})

	_, err := newTestClient(t, mux).LatestRelease(context.Background(), "osbuild")
	require.Error(t, err)

	var transientErr *boterr.TransientError
	require.ErrorAs(t, err, &transientErr)
	assert.Equal(t, reset.Unix(), transientErr.After.Unix())
}

func TestGraphQLServerErrorIsTransient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/osbuild/koji-osbuild/releases/latest", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := newTestClient(t, mux).LatestRelease(context.Background(), "koji-osbuild")
	require.Error(t, err)
	assert.True(t, boterr.IsTransient(err))
}
