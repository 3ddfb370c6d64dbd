// Package ratelimit pauses the caller when the call budget reported by the
// admin API runs low.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lastseal/micro-shopify/internal/constants"
	"github.com/lastseal/micro-shopify/internal/logging"
	"github.com/lastseal/micro-shopify/internal/retry"
	"github.com/lastseal/micro-shopify/internal/telemetry"
	"github.com/lastseal/micro-shopify/pkg/shopify"
)

// CallLimit is a parsed "used/total" call budget.
type CallLimit struct {
	Used  int
	Total int
}

// Remaining returns total - used.
func (c CallLimit) Remaining() int {
	return c.Total - c.Used
}

// Parse reads a "used/total" header value.
func Parse(value string) (CallLimit, bool) {
	used, total, found := strings.Cut(strings.TrimSpace(value), "/")
	if !found {
		return CallLimit{}, false
	}

	u, err := strconv.Atoi(strings.TrimSpace(used))
	if err != nil {
		return CallLimit{}, false
	}

	t, err := strconv.Atoi(strings.TrimSpace(total))
	if err != nil {
		return CallLimit{}, false
	}

	return CallLimit{Used: u, Total: t}, true
}

// Guard inspects responses and sleeps when the remaining budget is below
// Threshold. It keeps no state between calls and does not coordinate with
// other callers.
type Guard struct {
	Threshold int
	Cooldown  time.Duration
	Header    string
	Logger    shopify.Logger
	Sleep     retry.Sleeper
	Metrics   *telemetry.Metrics
}

// NewGuard creates a guard on the call limit header.
func NewGuard(threshold int, cooldown time.Duration, logger shopify.Logger) *Guard {
	if logger == nil {
		logger = shopify.NopLogger{}
	}

	return &Guard{
		Threshold: threshold,
		Cooldown:  cooldown,
		Header:    constants.HeaderCallLimit,
		Logger:    logger,
		Sleep:     retry.Sleep,
	}
}

// Check reads the call budget from headers and pauses if needed. A missing or
// unparsable header is ignored. The only error is ctx's, when the pause is
// interrupted.
func (g *Guard) Check(ctx context.Context, headers http.Header) error {
	header := g.Header
	if header == "" {
		header = constants.HeaderCallLimit
	}

	limit, ok := Parse(headers.Get(header))
	if !ok {
		return nil
	}

	remaining := limit.Remaining()
	throttled := remaining < g.Threshold

	g.Metrics.RecordCallBudget(remaining, throttled)

	if !throttled {
		return nil
	}

	g.Logger.Warn("Call budget low, cooling down", logging.Fields(ctx, map[string]interface{}{
		"used":      limit.Used,
		"total":     limit.Total,
		"remaining": remaining,
		"threshold": g.Threshold,
		"cooldown":  g.Cooldown.String(),
	}))

	sleep := g.Sleep
	if sleep == nil {
		sleep = retry.Sleep
	}

	return sleep(ctx, g.Cooldown)
}
