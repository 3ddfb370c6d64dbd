package constants

import "time"

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for a single admin API call.
	DefaultHTTPTimeout = 30 * time.Second

	// UploadHTTPTimeout is used for staged upload, registration and polling calls.
	UploadHTTPTimeout = 60 * time.Second
)

// Retry limits and delays.
const (
	// DefaultRetryMax is the default number of retries after the first attempt.
	DefaultRetryMax = 3

	// DefaultRetryDelay is the fixed pause between two attempts.
	DefaultRetryDelay = 1 * time.Second

	// UploadRetryDelay is the fixed pause between upload workflow attempts.
	UploadRetryDelay = 100 * time.Millisecond

	// UnboundedRetries disables the retry cap.
	UnboundedRetries = -1
)

// Call budget back-pressure.
const (
	// DefaultCallLimitThreshold is the remaining call budget under which the
	// client pauses before issuing its next call.
	DefaultCallLimitThreshold = 35

	// DefaultRateLimitCooldown is the pause applied when the budget runs low.
	DefaultRateLimitCooldown = 10 * time.Second
)

// Pagination.
const (
	// DefaultPageLimit is the page size requested when the caller sets none.
	DefaultPageLimit = 250

	// DefaultPageDelay is the courtesy delay between two page requests.
	DefaultPageDelay = 1 * time.Second
)

// Polling.
const (
	// DefaultPollInterval is the pause between two file status queries.
	DefaultPollInterval = 100 * time.Millisecond
)

// Headers.
const (
	HeaderCallLimit   = "X-Shopify-Shop-Api-Call-Limit"
	HeaderAccessToken = "X-Shopify-Access-Token"
	HeaderLink        = "Link"
	HeaderRequestID   = "X-Request-Id"

	DefaultUserAgent = "micro-shopify/1.0"
)

// Query parameter names.
const (
	ParamLimit    = "limit"
	ParamPageInfo = "page_info"
)

// Admin API paths.
const (
	// BaseURLFormat builds the versioned admin API root from shop name and version.
	BaseURLFormat = "https://%s.myshopify.com/admin/api/%s"

	APIPathGraphQL = "/graphql.json"
	APIPathCount   = "/%s/count.json"
	APIPathList    = "/%s.json"
	APIPathItem    = "/%s/%s.json"
)

// Staged upload resource kinds and method.
const (
	StagedResourceImage = "IMAGE"
	StagedResourceFile  = "FILE"
	StagedHTTPMethod    = "POST"

	// UploadFileField is the multipart field holding the file content.
	UploadFileField = "file"
)

// File statuses reported by the GraphQL node query.
const (
	FileStatusUploaded   = "UPLOADED"
	FileStatusProcessing = "PROCESSING"
	FileStatusReady      = "READY"
	FileStatusFailed     = "FAILED"
)

// Environment configuration.
const (
	EnvPrefix = "SHOPIFY"
)
