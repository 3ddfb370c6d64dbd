package shopify

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HTTPError is returned for every response with status >= 400.
type HTTPError struct {
	StatusCode int
	Body       string
	Method     string
	URL        string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d - %s", e.StatusCode, e.Body)
}

// GraphQLError carries top-level errors and mutation user errors.
type GraphQLError struct {
	Messages []string
}

// Error implements the error interface.
func (e *GraphQLError) Error() string {
	if len(e.Messages) == 0 {
		return "graphql: unknown error"
	}

	return "graphql: " + strings.Join(e.Messages, "; ")
}

// FileFailedError reports a file the platform could not process. It is
// never retried.
type FileFailedError struct {
	ID   string
	Node map[string]interface{}
}

// Error implements the error interface.
func (e *FileFailedError) Error() string {
	detail, err := json.Marshal(e.Node)
	if err != nil {
		detail = []byte(fmt.Sprint(e.Node))
	}

	return fmt.Sprintf("file %s failed processing: %s", e.ID, detail)
}

// Static errors that can be wrapped with context.
var (
	ErrConfigRequired     = errors.New("config is required")
	ErrShopNameRequired   = errors.New("shop name is required")
	ErrAPIVersionRequired = errors.New("API version is required")
	ErrResourceRequired   = errors.New("resource name is required")
	ErrIDRequired         = errors.New("resource id is required")
	ErrMissingField       = errors.New("missing field in response")
	ErrUploadRequired     = errors.New("file upload with a filename is required")
	ErrNoStagedTarget     = errors.New("no staged upload target returned")
	ErrNoFileCreated      = errors.New("no file returned by fileCreate")
	ErrNodeNotFound       = errors.New("file node not found")
	ErrPollLimitReached   = errors.New("file still processing after the last poll")
)

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}

	return 0
}

// IsNotFound checks if the error is a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsRateLimited checks if the error is a 429 response.
func IsRateLimited(err error) bool {
	return StatusCode(err) == http.StatusTooManyRequests
}

// IsClientError checks if the error is a 4xx response.
func IsClientError(err error) bool {
	code := StatusCode(err)

	return code >= 400 && code < 500
}

// IsServerError checks if the error is a 5xx response.
func IsServerError(err error) bool {
	return StatusCode(err) >= 500
}

// IsFileFailed checks if the error reports a FAILED file.
func IsFileFailed(err error) bool {
	failed := &FileFailedError{}

	return errors.As(err, &failed)
}

// RetryTransient is a Config.Retryable filter that retries transport
// errors, payload errors, 429 and 5xx responses but not other 4xx responses.
func RetryTransient(err error) bool {
	if IsFileFailed(err) {
		return false
	}

	code := StatusCode(err)
	if code == 0 {
		return true
	}

	return code == http.StatusTooManyRequests || code >= 500
}
