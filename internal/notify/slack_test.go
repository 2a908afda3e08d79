package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/simplesurance/fedora-bot/internal/outcome"
)

type webhookRecorder struct {
	lock     sync.Mutex
	messages []string
	status   int
}

func (w *webhookRecorder) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	var msg slack.WebhookMessage

	if err := json.NewDecoder(req.Body).Decode(&msg); err != nil {
		resp.WriteHeader(http.StatusBadRequest)
		return
	}

	w.lock.Lock()
	w.messages = append(w.messages, msg.Text)
	status := w.status
	w.lock.Unlock()

	if status != 0 {
		resp.WriteHeader(status)
		return
	}

	_, _ = resp.Write([]byte("ok"))
}

var testRecords = []*outcome.Record{
	{Component: "osbuild", Action: outcome.ActionMerged, Detail: "pull request #12"},
	{Component: "osbuild-composer", Action: outcome.ActionUpToDate},
	{Component: "koji-osbuild", Action: outcome.ActionSkipped, Detail: "awaiting checks"},
}

func TestNotifyPostsOneMessagePerRecordInOrder(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	rec := webhookRecorder{}
	srv := httptest.NewServer(&rec)
	t.Cleanup(srv.Close)

	n := New(srv.URL, WithHTTPClient(srv.Client()), WithPrefix("<https://ci/run/1|fedora-bot>: "))
	n.Notify(context.Background(), testRecords)

	assert.Equal(t, []string{
		"<https://ci/run/1|fedora-bot>: osbuild: merged: pull request #12",
		"<https://ci/run/1|fedora-bot>: osbuild-composer: up_to_date",
		"<https://ci/run/1|fedora-bot>: koji-osbuild: skipped: awaiting checks",
	}, rec.messages)
}

func TestDeliveryFailuresDoNotStopNotifying(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	rec := webhookRecorder{status: http.StatusInternalServerError}
	srv := httptest.NewServer(&rec)
	t.Cleanup(srv.Close)

	n := New(srv.URL, WithHTTPClient(srv.Client()))
	n.Notify(context.Background(), testRecords)

	assert.Len(t, rec.messages, len(testRecords))
}

func TestPostReturnsErrorOnNon200(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	rec := webhookRecorder{status: http.StatusNotFound}
	srv := httptest.NewServer(&rec)
	t.Cleanup(srv.Close)

	err := New(srv.URL, WithHTTPClient(srv.Client())).Post(context.Background(), "hello")

	var statusErr slack.StatusCodeError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestUnreachableWebhookIsOnlyLogged(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	assert.NotPanics(t, func() {
		New(url).Notify(context.Background(), testRecords)
	})
}

func TestNotifyWithoutWebhookOnlyLogs(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	assert.NotPanics(t, func() {
		New("").Notify(context.Background(), testRecords)
	})
}

func TestCIRunPrefix(t *testing.T) {
	t.Setenv("GITHUB_SERVER_URL", "https://github.com")
	t.Setenv("GITHUB_REPOSITORY", "osbuild/fedora-bot")
	t.Setenv("GITHUB_RUN_ID", "42")

	assert.Equal(t, "<https://github.com/osbuild/fedora-bot/actions/runs/42|fedora-bot>: ", CIRunPrefix())

	t.Setenv("GITHUB_RUN_ID", "")
	assert.Equal(t, "", CIRunPrefix())
}
