// Package distgit provides a client for the Pagure API of Fedora's package
// source repositories (dist-git).
package distgit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/simplesurance/fedora-bot/internal/boterr"
	"github.com/simplesurance/fedora-bot/internal/retryer"
)

const DefaultURL = "https://src.fedoraproject.org"

const DefaultHTTPClientTimeout = time.Minute

const loggerName = "distgit_client"

// Client is a Pagure API client.
// Requests that fail with a network error or with a 500, 502, 503 or 504
// status code are retried. All methods return a boterr.TransientError when
// the retries were exhausted.
type Client struct {
	baseURL *url.URL
	apiKey  string
	clt     *http.Client
	retryer *retryer.Retryer
	logger  *zap.Logger
}

type Option func(*Client)

// WithHTTPClient sets the http client that is used for requests.
func WithHTTPClient(clt *http.Client) Option {
	return func(c *Client) {
		c.clt = clt
	}
}

// WithRetryer sets the retryer that is used to repeat failed requests.
func WithRetryer(r *retryer.Retryer) Option {
	return func(c *Client) {
		c.retryer = r
	}
}

// New returns a new client for the Pagure instance at baseURL.
// apiKey is only required for merging pull requests.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultURL
	}

	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing dist-git url failed: %w", err)
	}

	c := Client{
		baseURL: u,
		apiKey:  apiKey,
		clt:     &http.Client{Timeout: DefaultHTTPClientTimeout},
		logger:  zap.L().Named(loggerName),
	}

	for _, opt := range opts {
		opt(&c)
	}

	if c.retryer == nil {
		c.retryer = retryer.New()
	}

	return &c, nil
}

// HTTPError is returned when the API responds with a non-2xx status code.
type HTTPError struct {
	Body   []byte
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http request failed with StatusCode: %d, response: %q", e.Status, string(e.Body))
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func (c *Client) apiURL(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = u.Path + "/api/0/" + strings.TrimPrefix(path, "/")
	if query != nil {
		u.RawQuery = query.Encode()
	}

	return u.String()
}

// do sends the request and unmarshals the JSON response body into result.
func (c *Client) do(ctx context.Context, method, reqURL string, body []byte, auth bool, result any) error {
	return c.retryer.Run(ctx, func(ctx context.Context) error {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
		if err != nil {
			return err
		}

		req.Header.Set("Accept", "application/json")
		if auth {
			req.Header.Set("Authorization", "token "+c.apiKey)
		}

		resp, err := c.clt.Do(req)
		if err != nil {
			return boterr.NewTransientAnytimeError(err)
		}

		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return boterr.NewTransientAnytimeError(fmt.Errorf("reading response body failed: %w", err))
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			httpErr := &HTTPError{Body: respBody, Status: resp.StatusCode}
			if isRetryableStatus(resp.StatusCode) {
				return boterr.NewTransientAnytimeError(httpErr)
			}

			return httpErr
		}

		if result == nil {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return boterr.NewDataError("unmarshaling response of %s %s failed: %w", method, reqURL, err)
		}

		return nil
	}, zap.String("http_url", reqURL), zap.String("http_method", method))
}
