// Package logging carries per-operation log fields through a context and
// adapts logrus to shopify.Logger.
package logging

import (
	"context"

	"github.com/google/uuid"
)

type fieldsKey struct{}

// WithOperation tags ctx with the operation name and a fresh operation id.
// Fields already present on ctx are kept.
func WithOperation(ctx context.Context, operation string, fields map[string]interface{}) context.Context {
	merged := make(map[string]interface{}, len(fields)+2)

	if parent, ok := ctx.Value(fieldsKey{}).(map[string]interface{}); ok {
		for k, v := range parent {
			merged[k] = v
		}
	}

	for k, v := range fields {
		merged[k] = v
	}

	merged["operation"] = operation
	merged["operation_id"] = uuid.NewString()

	return context.WithValue(ctx, fieldsKey{}, merged)
}

// Fields returns the context fields merged with extra. extra wins on conflict.
func Fields(ctx context.Context, extra map[string]interface{}) map[string]interface{} {
	parent, _ := ctx.Value(fieldsKey{}).(map[string]interface{})

	out := make(map[string]interface{}, len(parent)+len(extra))
	for k, v := range parent {
		out[k] = v
	}

	for k, v := range extra {
		out[k] = v
	}

	return out
}

// OperationID returns the operation id stored on ctx, or "".
func OperationID(ctx context.Context) string {
	fields, _ := ctx.Value(fieldsKey{}).(map[string]interface{})
	id, _ := fields["operation_id"].(string)

	return id
}
