package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lastseal/micro-shopify/internal/constants"
)

// ResourceClient provides CRUD access to one named admin API collection.
type ResourceClient interface {
	// Name returns the resource path, e.g. "orders" or "customers/1/addresses".
	Name() string
	Count(ctx context.Context, params Params) (int, error)
	// Search follows the page_info cursor until the last page and returns
	// every item in request order.
	Search(ctx context.Context, params Params) ([]Item, error)
	// Each is the streaming form of Search. Returning an error from fn stops
	// the pagination and is returned unchanged.
	Each(ctx context.Context, params Params, fn func(Item) error) error
	Get(ctx context.Context, id string) (Item, error)
	Put(ctx context.Context, id string, item Item) (Item, error)
	Post(ctx context.Context, item Item) (Item, error)
	Delete(ctx context.Context, id string) error
}

// FilesClient runs the staged file upload workflow.
type FilesClient interface {
	// Upload stages, transfers, registers and waits for the file.
	Upload(ctx context.Context, upload *FileUpload) (*File, error)
	StageUpload(ctx context.Context, upload *FileUpload) (*StagedTarget, error)
	TransferFile(ctx context.Context, target *StagedTarget, upload *FileUpload) error
	CreateFile(ctx context.Context, target *StagedTarget, upload *FileUpload) (string, error)
	WaitForFile(ctx context.Context, id string) (*File, error)
}

// GraphQLClient issues raw GraphQL admin API operations.
type GraphQLClient interface {
	// Query returns the "data" member of the response.
	Query(ctx context.Context, query string, variables map[string]interface{}) (json.RawMessage, error)
}

// Client is the root admin API client.
type Client interface {
	Resource(name string) ResourceClient
	Files() FilesClient
	GraphQL() GraphQLClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]interface{}) {}
func (NopLogger) Info(string, map[string]interface{})  {}
func (NopLogger) Warn(string, map[string]interface{})  {}
func (NopLogger) Error(string, map[string]interface{}) {}

// Config represents client configuration.
//
// Zero values select the defaults listed on each field. Durations apply to a
// single transport call, never to a whole retry, pagination or polling loop.
type Config struct {
	// ShopName is the myshopify.com subdomain.
	ShopName string
	// APIVersion is the admin API version, e.g. "2024-01".
	APIVersion string
	// BaseURL overrides the https://{shop}.myshopify.com/admin/api/{version} root.
	BaseURL string

	// Username and Password authenticate with HTTP basic auth (private apps).
	Username string
	Password string
	// AccessToken is sent as X-Shopify-Access-Token when set; it takes
	// precedence over basic auth.
	AccessToken string

	// HTTPTimeout bounds one admin API call. Default 30s.
	HTTPTimeout time.Duration
	// UploadTimeout bounds one upload workflow call. Default 60s.
	UploadTimeout time.Duration

	// RetryMax is the number of retries after the first attempt. Default 3;
	// a negative value disables retries.
	RetryMax int
	// RetryDelay is the fixed pause between attempts. Default 1s.
	RetryDelay time.Duration
	// Retryable filters which errors are retried. Nil retries every error,
	// including 4xx responses.
	Retryable func(error) bool

	// CallLimitThreshold is the remaining call budget under which the client
	// pauses. Default 35; a negative value disables the pause.
	CallLimitThreshold int
	// RateLimitCooldown is the pause applied under the threshold. Default 10s.
	RateLimitCooldown time.Duration

	// PageLimit is the page size used when params carry no limit. Default 250.
	PageLimit int
	// PageDelay is the pause between two page requests. Default 1s.
	PageDelay time.Duration
	// MaxPages caps a Search run. Zero means no cap.
	MaxPages int

	// UploadRetryDelay is the pause between upload attempts. Default 100ms.
	UploadRetryDelay time.Duration
	// UploadMaxRetries caps upload phase retries. Zero means no cap.
	UploadMaxRetries int
	// UploadPollInterval is the pause between file status queries. Default 100ms.
	UploadPollInterval time.Duration
	// UploadMaxPolls caps the status queries. Zero means no cap.
	UploadMaxPolls int

	// TransportRetryMax enables go-retryablehttp retries (5xx, 429 and
	// connection errors) beneath the fixed-delay retry. Default 0.
	TransportRetryMax int
	// RequestsPerSecond paces every call made through this client. Zero
	// disables pacing.
	RequestsPerSecond float64

	// SingularKeys maps a resource name to its singular envelope key, for
	// names where dropping the trailing "s" is wrong ("addresses").
	SingularKeys map[string]string

	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// Debug enables request/response logging at debug level.
	Debug bool
	// Logger receives structured log events. Defaults to NopLogger.
	Logger Logger
	// MetricsRegisterer, when set, receives the client's Prometheus collectors.
	MetricsRegisterer prometheus.Registerer
}

// Validate checks that the configuration can address an API root.
func (c *Config) Validate() error {
	if c.BaseURL != "" {
		return nil
	}

	if c.ShopName == "" {
		return ErrShopNameRequired
	}

	if c.APIVersion == "" {
		return ErrAPIVersionRequired
	}

	return nil
}

// APIBaseURL returns the versioned admin API root without a trailing slash.
func (c *Config) APIBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}

	return fmt.Sprintf(constants.BaseURLFormat, c.ShopName, c.APIVersion)
}

// WithDefaults returns a copy of the configuration with zero values replaced
// by their defaults.
func (c *Config) WithDefaults() *Config {
	out := *c

	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = constants.DefaultHTTPTimeout
	}

	if out.UploadTimeout <= 0 {
		out.UploadTimeout = constants.UploadHTTPTimeout
	}

	switch {
	case out.RetryMax == 0:
		out.RetryMax = constants.DefaultRetryMax
	case out.RetryMax < 0:
		out.RetryMax = 0
	}

	if out.RetryDelay <= 0 {
		out.RetryDelay = constants.DefaultRetryDelay
	}

	switch {
	case out.CallLimitThreshold == 0:
		out.CallLimitThreshold = constants.DefaultCallLimitThreshold
	case out.CallLimitThreshold < 0:
		out.CallLimitThreshold = 0
	}

	if out.RateLimitCooldown <= 0 {
		out.RateLimitCooldown = constants.DefaultRateLimitCooldown
	}

	if out.PageLimit <= 0 {
		out.PageLimit = constants.DefaultPageLimit
	}

	if out.PageDelay <= 0 {
		out.PageDelay = constants.DefaultPageDelay
	}

	if out.UploadRetryDelay <= 0 {
		out.UploadRetryDelay = constants.UploadRetryDelay
	}

	if out.UploadMaxRetries <= 0 {
		out.UploadMaxRetries = constants.UnboundedRetries
	}

	if out.UploadPollInterval <= 0 {
		out.UploadPollInterval = constants.DefaultPollInterval
	}

	if out.UserAgent == "" {
		out.UserAgent = constants.DefaultUserAgent
	}

	if out.Logger == nil {
		out.Logger = NopLogger{}
	}

	return &out
}
