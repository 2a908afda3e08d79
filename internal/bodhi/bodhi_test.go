package bodhi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/simplesurance/fedora-bot/internal/boterr"
	"github.com/simplesurance/fedora-bot/internal/cmdrun"
	"github.com/simplesurance/fedora-bot/internal/retryer"
)

func newHTTPTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(srv.URL, "osbuild", nil,
		WithHTTPClient(srv.Client()),
		WithRetryer(retryer.New(retryer.WithBackoffInitialInterval(time.Millisecond))),
	)
}

func TestUpdateExists(t *testing.T) {
	clt := newHTTPTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/updates/", r.URL.Path)

		switch r.URL.Query().Get("builds") {
		case "osbuild-104-1.fc41":
			fmt.Fprint(w, `{"updates": [{"alias": "FEDORA-2026-1a2b3c", "url": "https://bodhi.example.org/updates/FEDORA-2026-1a2b3c"}], "total": 1}`)
		case "osbuild-105-1.fc41":
			fmt.Fprint(w, `{"updates": [], "total": 0}`)
		default:
			t.Errorf("unexpected builds parameter: %q", r.URL.Query().Get("builds"))
		}
	})

	exists, err := clt.UpdateExists(context.Background(), "osbuild-104-1.fc41")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = clt.UpdateExists(context.Background(), "osbuild-105-1.fc41")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdateExistsServerErrorIsTransient(t *testing.T) {
	clt := newHTTPTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := clt.UpdateExists(context.Background(), "osbuild-104-1.fc41")
	require.Error(t, err)
	assert.True(t, boterr.IsTransient(err))
}

func TestCreateUpdate(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	var got *cmdrun.Cmd
	runner := cmdrun.RunnerFunc(func(_ context.Context, cmd *cmdrun.Cmd) (*cmdrun.Result, error) {
		got = cmd
		return &cmdrun.Result{Stdout: "Update submitted\n  URL: https://bodhi.fedoraproject.org/updates/FEDORA-2026-abc123\n"}, nil
	})

	clt := New("", "osbuild", runner)
	params := DefaultUpdateParams()
	params.Notes = "Update osbuild to the latest version"

	url, err := clt.CreateUpdate(context.Background(), "osbuild-104-1.fc41", &params)
	require.NoError(t, err)
	assert.Equal(t, "https://bodhi.fedoraproject.org/updates/FEDORA-2026-abc123", url)

	require.NotNil(t, got)
	assert.Equal(t, "bodhi", got.Name)
	assert.Equal(t, []string{
		"updates", "new",
		"--user", "osbuild",
		"--type", "enhancement",
		"--notes", "Update osbuild to the latest version",
		"--stable-karma", "3",
		"--unstable-karma", "-3",
		"--stable-days", "7",
		"--autokarma",
		"--autotime",
		"osbuild-104-1.fc41",
	}, got.Args)
}

func TestCreateUpdateRejected(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	var calls int
	runner := cmdrun.RunnerFunc(func(context.Context, *cmdrun.Cmd) (*cmdrun.Result, error) {
		calls++
		return &cmdrun.Result{ExitCode: 1, Stderr: "Update for osbuild-104-1.fc41 already exists"}, nil
	})

	params := DefaultUpdateParams()
	_, err := New("", "osbuild", runner).CreateUpdate(context.Background(), "osbuild-104-1.fc41", &params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Equal(t, 1, calls)
}

func TestCurrentReleasesOnlyReturnsFedoraReleases(t *testing.T) {
	clt := newHTTPTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/releases/", r.URL.Path)
		assert.Equal(t, "current", r.URL.Query().Get("state"))

		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `{"releases": [
				{"name": "F41", "version": "41", "id_prefix": "FEDORA", "branch": "f41", "candidate_tag": "f41-updates-candidate", "state": "current"},
				{"name": "EPEL-9", "version": "9", "id_prefix": "FEDORA-EPEL", "branch": "epel9", "candidate_tag": "epel9-testing-candidate", "state": "current"}
			], "page": 1, "pages": 2}`)
		case "2":
			fmt.Fprint(w, `{"releases": [
				{"name": "F40", "version": "40", "id_prefix": "FEDORA", "branch": "f40", "candidate_tag": "f40-updates-candidate", "state": "current"},
				{"name": "F41F", "version": "41", "id_prefix": "FEDORA-FLATPAK", "branch": "f41", "candidate_tag": "f41-flatpak-updates-candidate", "state": "current"}
			], "page": 2, "pages": 2}`)
		default:
			t.Errorf("unexpected page parameter: %q", r.URL.Query().Get("page"))
		}
	})

	releases, err := clt.CurrentReleases(context.Background())
	require.NoError(t, err)
	require.Len(t, releases, 2)

	assert.Equal(t, "F40", releases[0].Name)
	assert.Equal(t, "f40-updates-candidate", releases[0].CandidateTag)
	assert.Equal(t, "F41", releases[1].Name)
	assert.Equal(t, "f41", releases[1].Branch)
}

func TestCurrentReleasesWithoutCandidateTagIsDataError(t *testing.T) {
	clt := newHTTPTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"releases": [{"name": "F41", "version": "41", "id_prefix": "FEDORA"}], "page": 1, "pages": 1}`)
	})

	_, err := clt.CurrentReleases(context.Background())
	require.Error(t, err)
	assert.True(t, boterr.IsData(err))
}
