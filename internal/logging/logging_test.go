package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastseal/micro-shopify/internal/logging"
)

func TestWithOperation(t *testing.T) {
	t.Parallel()

	ctx := logging.WithOperation(context.Background(), "orders.search", map[string]interface{}{"resource": "orders"})

	fields := logging.Fields(ctx, nil)
	assert.Equal(t, "orders.search", fields["operation"])
	assert.Equal(t, "orders", fields["resource"])
	assert.NotEmpty(t, fields["operation_id"])
	assert.Equal(t, fields["operation_id"], logging.OperationID(ctx))

	nested := logging.WithOperation(ctx, "orders.page", map[string]interface{}{"page": 2})
	nestedFields := logging.Fields(nested, nil)

	assert.Equal(t, "orders.page", nestedFields["operation"])
	assert.Equal(t, "orders", nestedFields["resource"])
	assert.Equal(t, 2, nestedFields["page"])
	assert.NotEqual(t, logging.OperationID(ctx), logging.OperationID(nested))

	// the parent context is untouched
	assert.Equal(t, "orders.search", logging.Fields(ctx, nil)["operation"])
}

func TestFields(t *testing.T) {
	t.Parallel()

	assert.Empty(t, logging.Fields(context.Background(), nil))
	assert.Empty(t, logging.OperationID(context.Background()))

	ctx := logging.WithOperation(context.Background(), "files.upload", nil)
	fields := logging.Fields(ctx, map[string]interface{}{"operation": "override", "status": 200})

	assert.Equal(t, "override", fields["operation"])
	assert.Equal(t, 200, fields["status"])
	assert.Equal(t, "files.upload", logging.Fields(ctx, nil)["operation"])
}

func TestLogrus(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	adapter := logging.NewLogrus(logger)
	adapter.Debug("hidden", nil)
	adapter.Info("File uploaded", map[string]interface{}{"id": "gid://shopify/MediaImage/1"})
	adapter.Warn("Call budget low, cooling down", map[string]interface{}{"remaining": 6})
	adapter.Error("failed", nil)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "File uploaded", entry["msg"])
	assert.Equal(t, "gid://shopify/MediaImage/1", entry["id"])

	require.NoError(t, json.Unmarshal(lines[1], &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.InDelta(t, 6, entry["remaining"], 0)

	require.NoError(t, json.Unmarshal(lines[2], &entry))
	assert.Equal(t, "error", entry["level"])
}

func TestNewLogrus_NilUsesStandardLogger(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, logging.NewLogrus(nil))
}
