// Package notify reports outcomes to the log and to a Slack channel.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/simplesurance/fedora-bot/internal/logfields"
	"github.com/simplesurance/fedora-bot/internal/outcome"
)

const DefaultHTTPClientTimeout = 30 * time.Second

const loggerName = "notifier"

// Notifier writes a line per outcome to the log and posts it to a Slack
// incoming webhook.
type Notifier struct {
	webhookURL string
	prefix     string
	client     *http.Client
	logger     *zap.Logger
}

type Option func(*Notifier)

func WithHTTPClient(clt *http.Client) Option {
	return func(n *Notifier) {
		n.client = clt
	}
}

// WithPrefix sets a string that is prepended to every posted message.
func WithPrefix(prefix string) Option {
	return func(n *Notifier) {
		n.prefix = prefix
	}
}

// New returns a Notifier. If webhookURL is empty, outcomes are only logged.
func New(webhookURL string, opts ...Option) *Notifier {
	n := Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: DefaultHTTPClientTimeout},
		logger:     zap.L().Named(loggerName),
	}

	for _, opt := range opts {
		opt(&n)
	}

	return &n
}

// CIRunPrefix returns a Slack link to the GitHub Actions run that executes
// the bot, derived from the GITHUB_SERVER_URL, GITHUB_REPOSITORY and
// GITHUB_RUN_ID environment variables.
// If one of them is unset, an empty string is returned.
func CIRunPrefix() string {
	server := os.Getenv("GITHUB_SERVER_URL")
	repo := os.Getenv("GITHUB_REPOSITORY")
	runID := os.Getenv("GITHUB_RUN_ID")

	if server == "" || repo == "" || runID == "" {
		return ""
	}

	return fmt.Sprintf("<%s/%s/actions/runs/%s|fedora-bot>: ", server, repo, runID)
}

// Notify reports all records in order.
// Delivery failures are logged and do not stop the reporting of the
// remaining records.
func (n *Notifier) Notify(ctx context.Context, records []*outcome.Record) {
	for _, r := range records {
		line := r.String()

		n.logger.Info(
			line,
			logfields.Event("outcome_reported"),
			logfields.Component(r.Component),
			logfields.Action(string(r.Action)),
		)

		if n.webhookURL == "" {
			continue
		}

		if err := n.Post(ctx, n.prefix+line); err != nil {
			n.logger.Warn(
				"posting slack notification failed",
				logfields.Event("slack_notification_failed"),
				logfields.Component(r.Component),
				zap.Error(err),
			)
		}
	}
}

// Post sends text as message to the webhook.
// When slack does not respond with status code 200 a slack.StatusCodeError
// is returned.
func (n *Notifier) Post(ctx context.Context, text string) error {
	err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.client, &slack.WebhookMessage{Text: text})
	if err != nil {
		return err
	}

	n.logger.Debug(
		"slack notification sent",
		logfields.Event("slack_notification_sent"),
	)

	return nil
}
