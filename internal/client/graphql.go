package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/lastseal/micro-shopify/internal/constants"
	"github.com/lastseal/micro-shopify/internal/logging"
	"github.com/lastseal/micro-shopify/internal/retry"
	"github.com/lastseal/micro-shopify/pkg/shopify"
)

// GraphQLClient implements shopify.GraphQLClient.
type GraphQLClient struct {
	client *Client
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// Query implements shopify.GraphQLClient.Query. The call is retried under
// the resource retry policy.
func (g *GraphQLClient) Query(ctx context.Context, query string, variables map[string]interface{}) (json.RawMessage, error) {
	ctx = logging.WithOperation(ctx, "graphql.query", nil)

	data, err := retry.Do(ctx, g.client.retrier, "graphql.query", func(ctx context.Context) (json.RawMessage, error) {
		return g.execute(ctx, query, variables)
	})
	if err != nil {
		return nil, fmt.Errorf("executing graphql query: %w", err)
	}

	return data, nil
}

// execute performs one GraphQL call and returns its data member. GraphQL
// responses report cost in extensions, not in the REST call limit header,
// so the call budget guard does not apply.
func (g *GraphQLClient) execute(ctx context.Context, query string, variables map[string]interface{}) (json.RawMessage, error) {
	g.client.logger.Debug("GraphQL request", logging.Fields(ctx, map[string]interface{}{
		"query":     query,
		"variables": variables,
	}))

	resp, err := g.client.graphqlClient.Post(ctx, constants.APIPathGraphQL, &graphqlRequest{
		Query:     query,
		Variables: variables,
	})
	if err != nil {
		return nil, err
	}

	var payload graphqlResponse

	err = json.Unmarshal(resp.Body, &payload)
	if err != nil {
		return nil, fmt.Errorf("parsing graphql response: %w", err)
	}

	if len(payload.Errors) > 0 {
		messages := make([]string, 0, len(payload.Errors))
		for _, e := range payload.Errors {
			messages = append(messages, e.Message)
		}

		return nil, &shopify.GraphQLError{Messages: messages}
	}

	if len(payload.Data) == 0 || bytes.Equal(payload.Data, []byte("null")) {
		return nil, fmt.Errorf("%w: %q", shopify.ErrMissingField, "data")
	}

	return payload.Data, nil
}

// decodeData decodes a GraphQL data member keeping numbers as json.Number.
func decodeData(data json.RawMessage) (map[string]interface{}, error) {
	return decodeObject(data)
}

// checkUserErrors turns mutation userErrors into a *shopify.GraphQLError.
func checkUserErrors(errs []userError) error {
	if len(errs) == 0 {
		return nil
	}

	messages := make([]string, 0, len(errs))

	for _, e := range errs {
		if len(e.Field) > 0 {
			messages = append(messages, fmt.Sprintf("%v: %s", e.Field, e.Message))

			continue
		}

		messages = append(messages, e.Message)
	}

	return &shopify.GraphQLError{Messages: messages}
}
