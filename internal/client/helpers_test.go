package client_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lastseal/micro-shopify/internal/client"
	"github.com/lastseal/micro-shopify/pkg/shopify"
)

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func (l *MockLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []string

	for _, entry := range l.logs {
		if entry["level"] == level {
			out = append(out, entry["msg"].(string))
		}
	}

	return out
}

// requestLog records the requests received by a test server.
type requestLog struct {
	mu       sync.Mutex
	requests []*http.Request
}

func (r *requestLog) add(req *http.Request) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = append(r.requests, req)

	return len(r.requests)
}

func (r *requestLog) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.requests)
}

func (r *requestLog) get(i int) *http.Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.requests[i]
}

// fastConfig returns a configuration pointing at baseURL with every delay
// shortened to a millisecond.
func fastConfig(baseURL string) *shopify.Config {
	return &shopify.Config{
		BaseURL:            baseURL,
		Username:           "key",
		Password:           "secret",
		RetryDelay:         time.Millisecond,
		RateLimitCooldown:  time.Millisecond,
		PageDelay:          time.Millisecond,
		UploadRetryDelay:   time.Millisecond,
		UploadPollInterval: time.Millisecond,
	}
}

// newTestClient starts handler and returns a client bound to it.
func newTestClient(t *testing.T, handler http.HandlerFunc, configure ...func(*shopify.Config)) (*client.Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := fastConfig(server.URL)
	for _, fn := range configure {
		fn(config)
	}

	c, err := client.New(t.Context(), config)
	require.NoError(t, err)

	return c, server
}
