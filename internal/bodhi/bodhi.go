// Package bodhi queries and creates updates in Fedora's update-gating
// system.
// Queries use the public JSON API, updates are created with the bodhi CLI
// which authenticates with the Kerberos ticket of the bot.
package bodhi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/simplesurance/fedora-bot/internal/boterr"
	"github.com/simplesurance/fedora-bot/internal/cmdrun"
	"github.com/simplesurance/fedora-bot/internal/logfields"
	"github.com/simplesurance/fedora-bot/internal/retryer"
)

const DefaultURL = "https://bodhi.fedoraproject.org"

const DefaultHTTPClientTimeout = time.Minute

const loggerName = "bodhi"

// UpdateParams are the stabilization parameters of a new update.
type UpdateParams struct {
	Type          string `toml:"type"`
	Notes         string `toml:"notes"`
	StableKarma   int    `toml:"stable_karma"`
	UnstableKarma int    `toml:"unstable_karma"`
	AutoKarma     bool   `toml:"autokarma"`
	AutoTime      bool   `toml:"autotime"`
	StableDays    int    `toml:"stable_days"`
}

// DefaultUpdateParams returns the parameters used for updates of pkg when
// nothing else is configured.
func DefaultUpdateParams() UpdateParams {
	return UpdateParams{
		Type:          "enhancement",
		Notes:         "Update {{.Package}} to the latest version",
		StableKarma:   3,
		UnstableKarma: -3,
		AutoKarma:     true,
		AutoTime:      true,
		StableDays:    7,
	}
}

// Client queries and creates bodhi updates.
type Client struct {
	baseURL string
	user    string
	clt     *http.Client
	runner  cmdrun.Runner
	retryer *retryer.Retryer
	logger  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(clt *http.Client) Option {
	return func(c *Client) {
		c.clt = clt
	}
}

func WithRetryer(r *retryer.Retryer) Option {
	return func(c *Client) {
		c.retryer = r
	}
}

// New returns a bodhi client.
// user is the Fedora account name that is passed to the bodhi CLI.
func New(baseURL, user string, runner cmdrun.Runner, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}

	c := Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		user:    user,
		clt:     &http.Client{Timeout: DefaultHTTPClientTimeout},
		runner:  runner,
		logger:  zap.L().Named(loggerName),
	}

	for _, opt := range opts {
		opt(&c)
	}

	if c.retryer == nil {
		c.retryer = retryer.New()
	}

	return &c
}

type apiUpdates struct {
	Updates []struct {
		Alias string `json:"alias"`
		URL   string `json:"url"`
	} `json:"updates"`
	Total int `json:"total"`
}

// getJSON sends a GET request to reqURL and unmarshals the JSON response
// into result.
// Transport errors and server errors are retried.
func (c *Client) getJSON(ctx context.Context, reqURL string, result any) error {
	return c.retryer.Run(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}

		req.Header.Set("Accept", "application/json")

		resp, err := c.clt.Do(req)
		if err != nil {
			return boterr.NewTransientAnytimeError(err)
		}

		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return boterr.NewTransientAnytimeError(err)
		}

		if resp.StatusCode >= 500 {
			return boterr.NewTransientAnytimeError(
				fmt.Errorf("bodhi responded with status code %d: %q", resp.StatusCode, string(body)),
			)
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("bodhi responded with status code %d: %q", resp.StatusCode, string(body))
		}

		if err := json.Unmarshal(body, result); err != nil {
			return boterr.NewDataError("unmarshaling bodhi response failed: %w", err)
		}

		return nil
	}, zap.String("http_url", reqURL))
}

// UpdateExists returns true if an update for the build nvr exists.
func (c *Client) UpdateExists(ctx context.Context, nvr string) (bool, error) {
	var result apiUpdates

	reqURL := c.baseURL + "/updates/?" + url.Values{"builds": {nvr}}.Encode()

	if err := c.getJSON(ctx, reqURL, &result); err != nil {
		return false, fmt.Errorf("querying bodhi updates for %s failed: %w", nvr, err)
	}

	c.logger.Debug(
		"queried bodhi updates",
		logfields.Event("bodhi_updates_queried"),
		logfields.NVR(nvr),
		zap.Int("bodhi.updates_total", result.Total),
	)

	return result.Total > 0 || len(result.Updates) > 0, nil
}

// fedoraIDPrefix is the id_prefix of Fedora releases, other products like
// EPEL or Flatpaks use different prefixes.
const fedoraIDPrefix = "FEDORA"

// Release is a release that is managed by bodhi.
type Release struct {
	// Name is the bodhi name of the release, e.g. "F41".
	Name     string `json:"name"`
	Version  string `json:"version"`
	IDPrefix string `json:"id_prefix"`
	// Branch is the dist-git branch of the release, e.g. "f41".
	Branch string `json:"branch"`
	// CandidateTag is the koji tag that contains builds which are
	// candidates for an update.
	CandidateTag string `json:"candidate_tag"`
	State        string `json:"state"`
}

type apiReleases struct {
	Releases []*Release `json:"releases"`
	Page     int        `json:"page"`
	Pages    int        `json:"pages"`
}

// CurrentReleases returns the Fedora releases that are in the state
// current, ordered by name.
// Rawhide is never current, bodhi creates updates for it automatically.
func (c *Client) CurrentReleases(ctx context.Context) ([]*Release, error) {
	var result []*Release

	for page := 1; ; page++ {
		var resp apiReleases

		reqURL := c.baseURL + "/releases/?" + url.Values{
			"state": {"current"},
			"page":  {strconv.Itoa(page)},
		}.Encode()

		if err := c.getJSON(ctx, reqURL, &resp); err != nil {
			return nil, fmt.Errorf("querying current bodhi releases failed: %w", err)
		}

		for _, r := range resp.Releases {
			if r.IDPrefix != fedoraIDPrefix {
				continue
			}

			if r.CandidateTag == "" {
				return nil, boterr.NewDataError("bodhi release %s has no candidate tag", r.Name)
			}

			result = append(result, r)
		}

		if resp.Page >= resp.Pages {
			break
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	c.logger.Debug(
		"queried current bodhi releases",
		logfields.Event("bodhi_releases_queried"),
		zap.Int("bodhi.releases", len(result)),
	)

	return result, nil
}

// CreateUpdate creates an update for the build nvr.
// It returns the URL of the created update, if the bodhi CLI reported one.
// Failures are not retried, the returned error contains the message of
// the bodhi CLI.
func (c *Client) CreateUpdate(ctx context.Context, nvr string, params *UpdateParams) (string, error) {
	args := []string{
		"updates", "new",
		"--user", c.user,
		"--type", params.Type,
		"--notes", params.Notes,
		"--stable-karma", strconv.Itoa(params.StableKarma),
		"--unstable-karma", strconv.Itoa(params.UnstableKarma),
		"--stable-days", strconv.Itoa(params.StableDays),
	}

	if params.AutoKarma {
		args = append(args, "--autokarma")
	}

	if params.AutoTime {
		args = append(args, "--autotime")
	}

	args = append(args, nvr)

	res, err := c.runner.Run(ctx, &cmdrun.Cmd{Name: "bodhi", Args: args})
	if err != nil {
		return "", fmt.Errorf("running bodhi failed: %w", err)
	}

	if res.ExitCode != 0 {
		return "", fmt.Errorf("bodhi rejected update for %s: %s", nvr, res.Output())
	}

	updateURL := findUpdateURL(res.Stdout, c.baseURL)

	c.logger.Info(
		"bodhi update created",
		logfields.Event("bodhi_update_created"),
		logfields.NVR(nvr),
		zap.String("url", updateURL),
	)

	return updateURL, nil
}

func findUpdateURL(output, baseURL string) string {
	var result string

	for _, line := range strings.Split(output, "\n") {
		if idx := strings.Index(line, baseURL); idx >= 0 {
			result = strings.Fields(line[idx:])[0]
		}
	}

	return result
}
