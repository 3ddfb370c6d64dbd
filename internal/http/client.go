// Package http is the admin API transport: authentication, JSON encoding,
// status mapping and request logging on top of go-retryablehttp.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/lastseal/micro-shopify/internal/constants"
	"github.com/lastseal/micro-shopify/internal/logging"
	"github.com/lastseal/micro-shopify/internal/telemetry"
	"github.com/lastseal/micro-shopify/pkg/shopify"
)

const maxLoggedBody = 2048

// Authenticator decorates outgoing requests with credentials.
type Authenticator interface {
	Authenticate(req *http.Request)
}

// BasicAuth authenticates with a private app's API key and password.
type BasicAuth struct {
	Username string
	Password string
}

// Authenticate implements Authenticator.
func (a BasicAuth) Authenticate(req *http.Request) {
	req.SetBasicAuth(a.Username, a.Password)
}

// AccessToken authenticates with an admin API access token.
type AccessToken string

// Authenticate implements Authenticator.
func (t AccessToken) Authenticate(req *http.Request) {
	req.Header.Set(constants.HeaderAccessToken, string(t))
}

// Client is the HTTP client for the admin API.
type Client struct {
	baseURL    string
	auth       Authenticator
	httpClient *retryablehttp.Client
	limiter    *rate.Limiter
	metrics    *telemetry.Metrics
	logger     shopify.Logger
	userAgent  string
	debug      bool
}

// Request represents an HTTP request.
type Request struct {
	Method string
	// Path is appended to the base URL. Absolute http(s) URLs are used as is.
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
	// RawBody is sent unchanged with ContentType instead of JSON encoding Body.
	RawBody     []byte
	ContentType string
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger shopify.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig enables transport retries on connection errors, 429 and
// 5xx responses.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithTimeout bounds every single call.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithRateLimiter paces every call through limiter.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithMetrics records every call.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// NewClient creates a new HTTP client. A nil auth sends no credentials.
func NewClient(baseURL string, auth Authenticator, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		auth:       auth,
		httpClient: retryClient,
		logger:     shopify.NopLogger{},
		userAgent:  constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL returns the API root the client resolves paths against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs an HTTP request. For responses with status >= 400 both the
// response and a *shopify.HTTPError are returned.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	reqURL, err := c.resolve(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	var (
		body        []byte
		contentType string
	)

	switch {
	case req.RawBody != nil:
		body = req.RawBody
		contentType = req.ContentType
	case req.Body != nil:
		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		contentType = "application/json"
	}

	var bodyArg interface{}
	if body != nil {
		bodyArg = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, reqURL, bodyArg)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if c.auth != nil {
		c.auth.Authenticate(httpReq.Request)
	}

	if c.limiter != nil {
		err = c.limiter.Wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	if c.debug {
		c.logger.Debug("HTTP Request", logging.Fields(ctx, map[string]interface{}{
			"method": req.Method,
			"url":    reqURL,
		}))
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil && httpResp == nil {
		c.metrics.ObserveRequest(req.Method, 0, time.Since(start))

		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.metrics.ObserveRequest(req.Method, 0, time.Since(start))

		return nil, fmt.Errorf("reading response body: %w", err)
	}

	elapsed := time.Since(start)
	c.metrics.ObserveRequest(req.Method, httpResp.StatusCode, elapsed)

	if c.debug {
		c.logger.Debug("HTTP Response", logging.Fields(ctx, map[string]interface{}{
			"status":     httpResp.StatusCode,
			"duration":   elapsed.String(),
			"request_id": httpResp.Header.Get(constants.HeaderRequestID),
			"call_limit": httpResp.Header.Get(constants.HeaderCallLimit),
			"body":       truncate(respBody),
		}))
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		return resp, &shopify.HTTPError{
			StatusCode: httpResp.StatusCode,
			Body:       string(respBody),
			Method:     req.Method,
			URL:        reqURL,
		}
	}

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	})
}

// PostRaw performs a POST request with a pre-encoded body.
func (c *Client) PostRaw(ctx context.Context, path string, body []byte, contentType string) (*Response, error) {
	if body == nil {
		body = []byte{}
	}

	return c.Do(ctx, &Request{
		Method:      http.MethodPost,
		Path:        path,
		RawBody:     body,
		ContentType: contentType,
	})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPut,
		Path:   path,
		Body:   body,
	})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPatch,
		Path:   path,
		Body:   body,
	})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   path,
	})
}

func (c *Client) resolve(path string, query url.Values) (string, error) {
	raw := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		raw = c.baseURL + path
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing URL %q: %w", raw, err)
	}

	if len(query) > 0 {
		merged := parsed.Query()
		for k, values := range query {
			merged[k] = values
		}

		parsed.RawQuery = merged.Encode()
	}

	return parsed.String(), nil
}

func truncate(body []byte) string {
	if len(body) <= maxLoggedBody {
		return string(body)
	}

	return string(body[:maxLoggedBody]) + "..."
}
