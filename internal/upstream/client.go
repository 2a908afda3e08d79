// Package upstream retrieves the latest release of upstream projects hosted
// on GitHub.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/google/go-github/v43/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/simplesurance/fedora-bot/internal/boterr"
	"github.com/simplesurance/fedora-bot/internal/logfields"
	"github.com/simplesurance/fedora-bot/internal/rpmver"
)

const DefaultHTTPClientTimeout = time.Minute

// DefaultOwner is the GitHub organization of the upstream projects.
const DefaultOwner = "osbuild"

const loggerName = "upstream_client"

// Release is the latest published version of an upstream project.
type Release struct {
	Tag     string
	Version string
}

// Client is a GitHub API client.
// All methods return a boterr.TransientError when the API rate limit is
// exceeded or GitHub responded with a server error.
type Client struct {
	owner      string
	restClt    *github.Client
	graphQLClt *githubv4.Client
	logger     *zap.Logger
}

// New returns a client that looks up projects of the GitHub organization
// owner. apiToken is optional, without it the lower anonymous rate limits
// apply and the GraphQL tag lookup is not available.
func New(owner, apiToken string) *Client {
	if owner == "" {
		owner = DefaultOwner
	}

	httpClient := newHTTPClient(apiToken)

	return &Client{
		owner:      owner,
		restClt:    github.NewClient(httpClient),
		graphQLClt: githubv4.NewClient(httpClient),
		logger:     zap.L().Named(loggerName),
	}
}

func newHTTPClient(apiToken string) *http.Client {
	if apiToken == "" {
		return &http.Client{
			Timeout: DefaultHTTPClientTimeout,
		}
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: apiToken},
	)

	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = DefaultHTTPClientTimeout

	return tc
}

// LatestRelease returns the latest GitHub release of project.
// If the project does not publish GitHub releases, the most recent tag is
// returned.
// A boterr.DataError is returned when the project has neither releases nor
// tags.
func (clt *Client) LatestRelease(ctx context.Context, project string) (*Release, error) {
	logger := clt.logger.With(logfields.UpstreamProject(clt.owner + "/" + project))

	rel, _, err := clt.restClt.Repositories.GetLatestRelease(ctx, clt.owner, project)
	if err == nil {
		tag := rel.GetTagName()
		if tag == "" {
			return nil, boterr.NewDataError("latest release of %s/%s has an empty tag name", clt.owner, project)
		}

		logger.Debug(
			"retrieved latest upstream release",
			logfields.Event("upstream_latest_release_retrieved"),
			zap.String("upstream.tag", tag),
		)

		return &Release{Tag: tag, Version: rpmver.Normalize(tag)}, nil
	}

	var respErr *github.ErrorResponse
	if !errors.As(err, &respErr) || respErr.Response == nil || respErr.Response.StatusCode != http.StatusNotFound {
		return nil, fmt.Errorf("retrieving latest release of %s/%s failed: %w", clt.owner, project, clt.wrapRetryableErrors(err))
	}

	logger.Debug(
		"project has no releases, looking up latest tag",
		logfields.Event("upstream_no_release_found"),
	)

	tag, err := clt.latestTag(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("retrieving latest tag of %s/%s failed: %w", clt.owner, project, err)
	}

	return &Release{Tag: tag, Version: rpmver.Normalize(tag)}, nil
}

func (clt *Client) latestTag(ctx context.Context, project string) (string, error) {
	var q struct {
		Repository struct {
			Refs struct {
				Nodes []struct {
					Name string
				}
			} `graphql:"refs(refPrefix: \"refs/tags/\", last: 1, orderBy: {field: TAG_COMMIT_DATE, direction: ASC})"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	vars := map[string]any{
		"owner": githubv4.String(clt.owner),
		"name":  githubv4.String(project),
	}

	if err := clt.graphQLClt.Query(ctx, &q, vars); err != nil {
		return "", clt.wrapGraphQLRetryableErrors(err)
	}

	nodes := q.Repository.Refs.Nodes
	if len(nodes) == 0 || nodes[0].Name == "" {
		return "", boterr.NewDataError("%s/%s has no releases and no tags", clt.owner, project)
	}

	return nodes[0].Name, nil
}

func (clt *Client) wrapRetryableErrors(err error) error {
	switch v := err.(type) {
	case *github.RateLimitError:
		clt.logger.Info(
			"rate limit exceeded",
			logfields.Event("github_api_rate_limit_exceeded"),
			zap.Int("github_api_rate_limit", v.Rate.Limit),
			zap.Time("github_api_rate_limit_reset_time", v.Rate.Reset.Time),
		)

		return boterr.NewTransientError(err, v.Rate.Reset.Time)

	case *github.ErrorResponse:
		if v.Response != nil && v.Response.StatusCode >= 500 && v.Response.StatusCode < 600 {
			return boterr.NewTransientAnytimeError(err)
		}

		return err
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return boterr.NewTransientAnytimeError(err)
	}

	return err
}

var graphQlHTTPStatusErrRe = regexp.MustCompile(`^non-200 OK status code: ([0-9]+) .*`)

func (clt *Client) wrapGraphQLRetryableErrors(err error) error {
	matches := graphQlHTTPStatusErrRe.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return err
	}

	errcode, atoiErr := strconv.Atoi(matches[1])
	if atoiErr != nil {
		clt.logger.Info(
			"parsing http code from error string failed",
			zap.Error(atoiErr),
			zap.String("error_string", err.Error()),
			zap.String("http_errcode", matches[1]),
		)
		return err
	}

	if errcode >= 500 && errcode < 600 {
		return boterr.NewTransientAnytimeError(err)
	}

	return err
}
