package distgit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/simplesurance/fedora-bot/internal/logfields"
	"github.com/simplesurance/fedora-bot/internal/rpmver"
)

const (
	flagStatusSuccess = "success"
	mergedMessage     = "Changes merged!"
	listPerPage       = 100
)

// PullRequest is an open pull request of a dist-git repository.
type PullRequest struct {
	ID     int
	Title  string
	Author string
	// TargetVersion is the version the pull request updates the package
	// to. It is empty if it could not be derived from the title.
	TargetVersion string
	// JSON is the pull request object as returned by the API.
	JSON json.RawMessage
}

// CheckStatus summarizes the CI flags of a pull request.
type CheckStatus struct {
	Passing int
	Total   int
}

// AllPassing returns true if every check succeeded.
func (s *CheckStatus) AllPassing() bool {
	return s.Passing == s.Total
}

// titleVersionRe matches the titles of pull requests opened by packit, e.g.
// "Update to 1.3 upstream release" or "[packit] 1.3 upstream release".
var titleVersionRe = regexp.MustCompile(`(?i)(?:update to|\[packit\])\s+(v?[0-9][0-9A-Za-z._+~^]*)\s+upstream release`)

// TargetVersionFromTitle extracts the version that a packit pull request
// updates to from its title.
func TargetVersionFromTitle(title string) string {
	matches := titleVersionRe.FindStringSubmatch(title)
	if len(matches) != 2 {
		return ""
	}

	return rpmver.Normalize(matches[1])
}

type apiUser struct {
	Name string `json:"name"`
}

type apiPullRequest struct {
	ID    int     `json:"id"`
	Title string  `json:"title"`
	User  apiUser `json:"user"`
}

type apiPullRequestList struct {
	Requests   []json.RawMessage `json:"requests"`
	Pagination struct {
		Next *string `json:"next"`
	} `json:"pagination"`
}

// ListOpenPullRequests returns all open pull requests of the rpms/pkg
// repository that were opened by author.
func (c *Client) ListOpenPullRequests(ctx context.Context, pkg, author string) ([]*PullRequest, error) {
	var result []*PullRequest

	for page := 1; ; page++ {
		var resp apiPullRequestList

		query := url.Values{
			"status":   {"Open"},
			"author":   {author},
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(listPerPage)},
		}

		err := c.do(ctx, http.MethodGet, c.apiURL(fmt.Sprintf("rpms/%s/pull-requests", url.PathEscape(pkg)), query), nil, false, &resp)
		if err != nil {
			return nil, fmt.Errorf("listing pull requests of %s failed: %w", pkg, err)
		}

		for _, raw := range resp.Requests {
			var pr apiPullRequest

			if err := json.Unmarshal(raw, &pr); err != nil {
				return nil, fmt.Errorf("unmarshaling pull request of %s failed: %w", pkg, err)
			}

			// the author query parameter is only a hint for the
			// server, do not rely on it
			if pr.User.Name != author {
				continue
			}

			result = append(result, &PullRequest{
				ID:            pr.ID,
				Title:         pr.Title,
				Author:        pr.User.Name,
				TargetVersion: TargetVersionFromTitle(pr.Title),
				JSON:          raw,
			})
		}

		if resp.Pagination.Next == nil || *resp.Pagination.Next == "" || len(resp.Requests) == 0 {
			return result, nil
		}
	}
}

type apiFlags struct {
	Flags []struct {
		Status   string `json:"status"`
		Username string `json:"username"`
	} `json:"flags"`
}

// CheckStatus returns the number of successful and the total number of CI
// flags of a pull request.
func (c *Client) CheckStatus(ctx context.Context, pkg string, prID int) (*CheckStatus, error) {
	var resp apiFlags

	err := c.do(ctx, http.MethodGet, c.apiURL(fmt.Sprintf("rpms/%s/pull-request/%d/flag", url.PathEscape(pkg), prID), nil), nil, false, &resp)
	if err != nil {
		return nil, fmt.Errorf("retrieving flags of pull request %d of %s failed: %w", prID, pkg, err)
	}

	var result CheckStatus
	for _, f := range resp.Flags {
		result.Total++
		if f.Status == flagStatusSuccess {
			result.Passing++
		}
	}

	return &result, nil
}

type apiMergeResponse struct {
	Message string `json:"message"`
}

// ErrNoAPIKey is returned when a merge is requested but no API key was
// configured.
var ErrNoAPIKey = errors.New("no dist-git api key configured")

// Merge merges the pull request.
func (c *Client) Merge(ctx context.Context, pkg string, prID int) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}

	var resp apiMergeResponse

	// merging is idempotent, retrying the POST request is safe
	err := c.do(ctx, http.MethodPost, c.apiURL(fmt.Sprintf("rpms/%s/pull-request/%d/merge", url.PathEscape(pkg), prID), nil), nil, true, &resp)
	if err != nil {
		return fmt.Errorf("merging pull request %d of %s failed: %w", prID, pkg, err)
	}

	if resp.Message != mergedMessage {
		return fmt.Errorf("merging pull request %d of %s failed: %s", prID, pkg, resp.Message)
	}

	c.logger.Info(
		"pull request merged",
		logfields.Event("distgit_pull_request_merged"),
		logfields.Component(pkg),
		logfields.PullRequest(prID),
		zap.String("url", c.PullRequestURL(pkg, prID)),
	)

	return nil
}

// PullRequestURL returns the web URL of a pull request.
func (c *Client) PullRequestURL(pkg string, prID int) string {
	u := *c.baseURL
	u.Path = fmt.Sprintf("%s/rpms/%s/pull-request/%d", u.Path, pkg, prID)
	return u.String()
}
