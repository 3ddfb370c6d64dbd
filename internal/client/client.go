package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/lastseal/micro-shopify/internal/http"
	"github.com/lastseal/micro-shopify/internal/logging"
	"github.com/lastseal/micro-shopify/internal/ratelimit"
	"github.com/lastseal/micro-shopify/internal/retry"
	"github.com/lastseal/micro-shopify/internal/telemetry"
	"github.com/lastseal/micro-shopify/pkg/shopify"
)

// Client implements the shopify.Client interface.
type Client struct {
	config *shopify.Config
	logger shopify.Logger

	// httpClient serves REST calls, graphqlClient serves GraphQL calls with
	// the upload timeout and transferClient posts to staged targets without
	// credentials.
	httpClient     *http.Client
	graphqlClient  *http.Client
	transferClient *http.Client

	retrier       *retry.Executor
	uploadRetrier *retry.Executor
	guard         *ratelimit.Guard
	metrics       *telemetry.Metrics
	sleep         retry.Sleeper

	graphql *GraphQLClient
	files   *FilesClient

	mu        sync.Mutex
	resources map[string]*ResourceClient
}

// createAuthenticator picks the credential scheme. An access token wins over
// basic auth.
func createAuthenticator(config *shopify.Config) http.Authenticator {
	if config.AccessToken != "" {
		return http.AccessToken(config.AccessToken)
	}

	if config.Username != "" || config.Password != "" {
		return http.BasicAuth{Username: config.Username, Password: config.Password}
	}

	return nil // No authentication
}

// createHTTPClientOptions builds HTTP client options shared by every transport.
func createHTTPClientOptions(config *shopify.Config, metrics *telemetry.Metrics, limiter *rate.Limiter) []http.Option {
	httpOpts := []http.Option{
		http.WithLogger(config.Logger),
		http.WithDebug(config.Debug),
		http.WithUserAgent(config.UserAgent),
		http.WithMetrics(metrics),
	}

	if limiter != nil {
		httpOpts = append(httpOpts, http.WithRateLimiter(limiter))
	}

	if config.TransportRetryMax > 0 {
		httpOpts = append(httpOpts, http.WithRetryConfig(config.TransportRetryMax, config.RetryDelay, 4*config.RetryDelay))
	}

	return httpOpts
}

// New creates a new admin API client.
func New(ctx context.Context, config *shopify.Config) (*Client, error) {
	if config == nil {
		return nil, shopify.ErrConfigRequired
	}

	err := config.Validate()
	if err != nil {
		return nil, err
	}

	config = config.WithDefaults()
	metrics := telemetry.NewMetrics(config.MetricsRegisterer)

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	baseURL := config.APIBaseURL()
	auth := createAuthenticator(config)
	httpOpts := createHTTPClientOptions(config, metrics, limiter)

	client := &Client{
		config:         config,
		logger:         config.Logger,
		httpClient:     http.NewClient(baseURL, auth, append(httpOpts, http.WithTimeout(config.HTTPTimeout))...),
		graphqlClient:  http.NewClient(baseURL, auth, append(httpOpts, http.WithTimeout(config.UploadTimeout))...),
		transferClient: http.NewClient(baseURL, nil, append(httpOpts, http.WithTimeout(config.UploadTimeout))...),
		metrics:        metrics,
		sleep:          retry.Sleep,
		resources:      make(map[string]*ResourceClient),
	}

	client.retrier = retry.New(
		retry.Policy{MaxRetries: config.RetryMax, Delay: config.RetryDelay, Retryable: config.Retryable},
		retry.WithLogger(config.Logger),
		retry.WithMetrics(metrics),
	)
	client.uploadRetrier = retry.New(
		retry.Policy{MaxRetries: config.UploadMaxRetries, Delay: config.UploadRetryDelay, Retryable: notFileFailed},
		retry.WithLogger(config.Logger),
		retry.WithMetrics(metrics),
	)

	client.guard = ratelimit.NewGuard(config.CallLimitThreshold, config.RateLimitCooldown, config.Logger)
	client.guard.Metrics = metrics

	client.graphql = &GraphQLClient{client: client}
	client.files = &FilesClient{client: client}

	client.logger.Debug("Client initialised", logging.Fields(ctx, map[string]interface{}{
		"base_url": baseURL,
		"retries":  config.RetryMax,
	}))

	return client, nil
}

// Resource implements shopify.Client.Resource.
func (c *Client) Resource(name string) shopify.ResourceClient {
	c.mu.Lock()
	defer c.mu.Unlock()

	if resource, ok := c.resources[name]; ok {
		return resource
	}

	resource := newResourceClient(c, name)
	c.resources[name] = resource

	return resource
}

// Files implements shopify.Client.Files.
func (c *Client) Files() shopify.FilesClient {
	return c.files
}

// GraphQL implements shopify.Client.GraphQL.
func (c *Client) GraphQL() shopify.GraphQLClient {
	return c.graphql
}

// Config returns the effective configuration with defaults applied.
func (c *Client) Config() *shopify.Config {
	return c.config
}

// call performs req under the resource retry policy and applies the call
// budget guard to every successful response.
func (c *Client) call(ctx context.Context, operation string, req *http.Request) (*http.Response, error) {
	return retry.Do(ctx, c.retrier, operation, func(ctx context.Context) (*http.Response, error) {
		return c.do(ctx, req)
	})
}

// jsonResponse is a response whose body decoded to a JSON object.
type jsonResponse struct {
	*http.Response
	payload map[string]interface{}
}

// callJSON is call followed by decoding the body as a JSON object. A body
// that does not decode is retried like any other failure.
func (c *Client) callJSON(ctx context.Context, operation string, req *http.Request) (*jsonResponse, error) {
	return retry.Do(ctx, c.retrier, operation, func(ctx context.Context) (*jsonResponse, error) {
		resp, err := c.do(ctx, req)
		if err != nil {
			return nil, err
		}

		payload, err := decodeObject(resp.Body)
		if err != nil {
			return nil, err
		}

		return &jsonResponse{Response: resp, payload: payload}, nil
	})
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	err = c.guard.Check(ctx, resp.Headers)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// decodeObject decodes a JSON object keeping numbers as json.Number.
func decodeObject(body []byte) (map[string]interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var payload map[string]interface{}

	err := decoder.Decode(&payload)
	if err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return payload, nil
}

// member returns payload[key] as an object.
func member(payload map[string]interface{}, key string) (map[string]interface{}, error) {
	raw, ok := payload[key].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %q", shopify.ErrMissingField, key)
	}

	return raw, nil
}

func notFileFailed(err error) bool {
	return !shopify.IsFileFailed(err)
}
