// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/mia-platform/pdm/internal/info"
	"github.com/mia-platform/pdm/internal/logger"
)

const (
	loggerName = "pdm:api"

	statusCodeErrorRangeStart = 400
)

// Client talks with the platform REST API of a single project.
type Client struct {
	config Config

	limiter *rate.Limiter
	clients atomic.Pointer[httpClients]
}

// httpClients holds the plain client used for mutations and the retrying one
// used for collection fetches. Both share the authenticated transport.
type httpClients struct {
	plain    *http.Client
	retrying *http.Client
}

// NewClient returns a Client configured from environment variables.
func NewClient() (*Client, error) {
	config, err := LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}

	return NewClientWithConfig(*config), nil
}

// NewClientWithConfig returns a Client for config. Every request is attempted
// at least once, whatever the retry policy says.
func NewClientWithConfig(config Config) *Client {
	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}

	config.Retry.MaxAttempts = max(config.Retry.MaxAttempts, 1)
	return &Client{
		config:  config,
		limiter: rate.NewLimiter(limit, max(config.RateBurst, 1)),
	}
}

// page is a single page of a paginated collection.
type page[T any] struct {
	Next    *string `json:"next"`
	Results []T     `json:"results"`
}

// listAll fetches every page of the collection at path.
func listAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	results := make([]T, 0)
	next := c.url(path)
	for next != "" {
		var current page[T]
		if err := c.send(ctx, http.MethodGet, next, nil, &current, true); err != nil {
			return nil, err
		}

		results = append(results, current.Results...)
		next = ""
		if current.Next != nil {
			next = *current.Next
		}
	}

	return results, nil
}

// do performs a single request, encoding body as JSON and decoding the response into out.
func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	return c.send(ctx, method, target, body, out, false)
}

// send performs the request. When retry is set transport errors, 429 and 5xx
// responses are attempted again following the retry policy.
func (c *Client) send(ctx context.Context, method, target string, body, out any, retry bool) error {
	log := logger.FromContext(ctx).WithName(loggerName)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return handleError(err)
		}
		reader = bytes.NewReader(data)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return handleError(err)
	}

	request, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return handleError(err)
	}

	request.Header.Set("User-Agent", info.UserAgent())
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	log.Trace("sending request", "method", method, "url", target)
	//nolint:contextcheck // need a new context because it will be used in token requests
	clients := c.getClients(context.Background())
	client := clients.plain
	if retry {
		client = clients.retrying
	}

	resp, err := client.Do(request)
	if err != nil {
		return handleError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return handleError(err)
	}

	log.Trace("received response", "method", method, "url", target, "statusCode", resp.StatusCode)
	if resp.StatusCode >= statusCodeErrorRangeStart {
		return statusError(resp.StatusCode, errorMessage(data))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return handleError(err)
	}
	return nil
}

// errorMessage extracts the human readable message of an error response.
func errorMessage(body []byte) string {
	var errResp map[string]any
	if err := json.Unmarshal(body, &errResp); err != nil {
		return ""
	}

	for _, key := range []string{"detail", "message"} {
		if msg, ok := errResp[key].(string); ok {
			return msg
		}
	}
	return ""
}

// url joins path to the configured endpoint.
func (c *Client) url(path string) string {
	return strings.TrimSuffix(c.config.Endpoint, "/") + "/" + strings.TrimPrefix(path, "/")
}

// projectPath returns the api path of a project scoped collection.
func (c *Client) projectPath(resource string) string {
	return "api/projects/" + url.PathEscape(c.config.ProjectID) + "/" + resource
}

func (c *Client) getClients(ctx context.Context) *httpClients {
	clients := c.clients.Load()
	if clients != nil {
		return clients
	}

	plain := &http.Client{
		Transport: newTransport(ctx, c.config),
		Timeout:   c.config.RequestTimeout,
	}
	retrying := &retryablehttp.Client{
		HTTPClient:   plain,
		RetryWaitMin: c.config.Retry.InitialInterval,
		RetryWaitMax: c.config.Retry.MaximumInterval,
		RetryMax:     c.config.Retry.MaxAttempts - 1,
		CheckRetry:   retryablehttp.DefaultRetryPolicy,
		Backoff:      retryablehttp.DefaultBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
		PrepareRetry: func(req *http.Request) error {
			return c.limiter.Wait(req.Context())
		},
		RequestLogHook: func(_ retryablehttp.Logger, req *http.Request, attempt int) {
			if attempt > 0 {
				logger.Named(req.Context(), loggerName).Debug("retrying request", "url", req.URL.String(), "attempt", attempt+1)
			}
		},
	}

	clients = &httpClients{plain: plain, retrying: retrying.StandardClient()}
	c.clients.Store(clients)
	return clients
}
