package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/lastseal/micro-shopify/internal/constants"
	"github.com/lastseal/micro-shopify/internal/http"
	"github.com/lastseal/micro-shopify/internal/logging"
	"github.com/lastseal/micro-shopify/internal/pagination"
	"github.com/lastseal/micro-shopify/pkg/shopify"
)

// ResourceClient implements shopify.ResourceClient for one REST collection.
type ResourceClient struct {
	client   *Client
	name     string
	plural   string
	singular string
}

func newResourceClient(client *Client, name string) *ResourceClient {
	name = strings.Trim(name, "/")
	plural := name

	if i := strings.LastIndex(name, "/"); i >= 0 {
		plural = name[i+1:]
	}

	singular, ok := client.config.SingularKeys[name]
	if !ok {
		singular = singularize(plural)
	}

	return &ResourceClient{
		client:   client,
		name:     name,
		plural:   plural,
		singular: singular,
	}
}

// singularize drops the trailing character of a plural key.
func singularize(plural string) string {
	if plural == "" {
		return plural
	}

	return plural[:len(plural)-1]
}

// Name implements shopify.ResourceClient.Name.
func (r *ResourceClient) Name() string {
	return r.name
}

// SingularKey returns the envelope key used for single items.
func (r *ResourceClient) SingularKey() string {
	return r.singular
}

// Count implements shopify.ResourceClient.Count.
func (r *ResourceClient) Count(ctx context.Context, params shopify.Params) (int, error) {
	if r.name == "" {
		return 0, shopify.ErrResourceRequired
	}

	ctx = r.operation(ctx, "count")

	resp, err := r.client.callJSON(ctx, r.name+".count", &http.Request{
		Method: "GET",
		Path:   fmt.Sprintf(constants.APIPathCount, r.name),
		Query:  params.ToValues(),
	})
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", r.name, err)
	}

	count, ok := resp.payload["count"].(json.Number)
	if !ok {
		return 0, fmt.Errorf("counting %s: %w: %q", r.name, shopify.ErrMissingField, "count")
	}

	n, err := count.Int64()
	if err != nil {
		return 0, fmt.Errorf("counting %s: parsing count: %w", r.name, err)
	}

	return int(n), nil
}

// Search implements shopify.ResourceClient.Search.
func (r *ResourceClient) Search(ctx context.Context, params shopify.Params) ([]shopify.Item, error) {
	items := make([]shopify.Item, 0)

	err := r.Each(ctx, params, func(item shopify.Item) error {
		items = append(items, item)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// Each implements shopify.ResourceClient.Each.
func (r *ResourceClient) Each(ctx context.Context, params shopify.Params, fn func(shopify.Item) error) error {
	if r.name == "" {
		return shopify.ErrResourceRequired
	}

	ctx = r.operation(ctx, "search")
	config := r.client.config

	paginator := &pagination.Paginator{
		Limit:    config.PageLimit,
		Delay:    config.PageDelay,
		MaxPages: config.MaxPages,
		Sleep:    r.client.sleep,
		Fetch:    r.fetchPage,
		OnPage: func(page, items int) {
			r.client.metrics.RecordPage(r.name)
			r.client.logger.Debug("Fetched page", logging.Fields(ctx, map[string]interface{}{
				"page":  page,
				"items": items,
			}))
		},
	}

	return paginator.Run(ctx, params, fn)
}

func (r *ResourceClient) fetchPage(ctx context.Context, params shopify.Params) (*pagination.Page, error) {
	resp, err := r.client.callJSON(ctx, r.name+".search", &http.Request{
		Method: "GET",
		Path:   fmt.Sprintf(constants.APIPathList, r.name),
		Query:  params.ToValues(),
	})
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", r.name, err)
	}

	raw, ok := resp.payload[r.plural].([]interface{})
	if !ok {
		return nil, fmt.Errorf("searching %s: %w: %q", r.name, shopify.ErrMissingField, r.plural)
	}

	items := make([]shopify.Item, 0, len(raw))

	for _, entry := range raw {
		object, ok := entry.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("searching %s: unexpected %T in %q", r.name, entry, r.plural)
		}

		items = append(items, shopify.Item(object))
	}

	return &pagination.Page{
		Items: items,
		Link:  resp.Headers.Get(constants.HeaderLink),
	}, nil
}

// Get implements shopify.ResourceClient.Get.
func (r *ResourceClient) Get(ctx context.Context, id string) (shopify.Item, error) {
	if id == "" {
		return nil, shopify.ErrIDRequired
	}

	ctx = r.operation(ctx, "get", "id", id)

	item, err := r.single(ctx, "get", &http.Request{
		Method: "GET",
		Path:   r.itemPath(id),
	})
	if err != nil {
		return nil, fmt.Errorf("getting %s %s: %w", r.singular, id, err)
	}

	return item, nil
}

// Put implements shopify.ResourceClient.Put.
func (r *ResourceClient) Put(ctx context.Context, id string, item shopify.Item) (shopify.Item, error) {
	if id == "" {
		return nil, shopify.ErrIDRequired
	}

	ctx = r.operation(ctx, "put", "id", id)

	updated, err := r.single(ctx, "put", &http.Request{
		Method: "PUT",
		Path:   r.itemPath(id),
		Body:   map[string]interface{}{r.singular: item},
	})
	if err != nil {
		return nil, fmt.Errorf("updating %s %s: %w", r.singular, id, err)
	}

	return updated, nil
}

// Post implements shopify.ResourceClient.Post.
func (r *ResourceClient) Post(ctx context.Context, item shopify.Item) (shopify.Item, error) {
	if r.name == "" {
		return nil, shopify.ErrResourceRequired
	}

	ctx = r.operation(ctx, "post")

	created, err := r.single(ctx, "post", &http.Request{
		Method: "POST",
		Path:   fmt.Sprintf(constants.APIPathList, r.name),
		Body:   map[string]interface{}{r.singular: item},
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", r.singular, err)
	}

	return created, nil
}

// Delete implements shopify.ResourceClient.Delete.
func (r *ResourceClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return shopify.ErrIDRequired
	}

	ctx = r.operation(ctx, "delete", "id", id)

	_, err := r.client.call(ctx, r.name+".delete", &http.Request{
		Method: "DELETE",
		Path:   r.itemPath(id),
	})
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", r.singular, id, err)
	}

	return nil
}

// single performs req and unwraps the singular envelope of the response. A
// response without the envelope is returned at once, not retried.
func (r *ResourceClient) single(ctx context.Context, verb string, req *http.Request) (shopify.Item, error) {
	resp, err := r.client.callJSON(ctx, r.name+"."+verb, req)
	if err != nil {
		return nil, err
	}

	object, err := member(resp.payload, r.singular)
	if err != nil {
		return nil, err
	}

	return shopify.Item(object), nil
}

func (r *ResourceClient) itemPath(id string) string {
	return fmt.Sprintf(constants.APIPathItem, r.name, url.PathEscape(id))
}

// operation tags ctx with the resource operation. kv are extra field pairs.
func (r *ResourceClient) operation(ctx context.Context, verb string, kv ...string) context.Context {
	fields := map[string]interface{}{"resource": r.name}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}

	return logging.WithOperation(ctx, r.name+"."+verb, fields)
}
