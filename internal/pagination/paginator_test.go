package pagination_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastseal/micro-shopify/internal/pagination"
	"github.com/lastseal/micro-shopify/pkg/shopify"
)

// fakeListing serves pages of two items each and records every request.
type fakeListing struct {
	pages    int
	requests []shopify.Params
}

func (f *fakeListing) fetch(_ context.Context, params shopify.Params) (*pagination.Page, error) {
	f.requests = append(f.requests, params.Clone())
	n := len(f.requests)

	page := &pagination.Page{}
	if n > f.pages {
		return page, nil
	}

	page.Items = []shopify.Item{{"id": fmt.Sprintf("%d-a", n)}, {"id": fmt.Sprintf("%d-b", n)}}

	link := ""
	if n > 1 {
		link = fmt.Sprintf(`<https://x/orders.json?limit=2&page_info=prev%d>; rel="previous"`, n)
	}

	if n < f.pages {
		if link != "" {
			link += ", "
		}

		link += fmt.Sprintf(`<https://x/orders.json?limit=2&page_info=cursor%d>; rel="next"`, n)
	}

	page.Link = link

	return page, nil
}

func TestPaginator_FollowsCursor(t *testing.T) {
	t.Parallel()

	listing := &fakeListing{pages: 3}

	var delays []time.Duration

	paginator := &pagination.Paginator{
		Delay: time.Second,
		Sleep: func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)

			return nil
		},
		Fetch: listing.fetch,
	}

	items, err := paginator.Collect(context.Background(), shopify.Params{"status": "any", "limit": 2})
	require.NoError(t, err)

	require.Len(t, items, 6)
	assert.Equal(t, "1-a", items[0].ID())
	assert.Equal(t, "3-b", items[5].ID())
	assert.Equal(t, []time.Duration{time.Second, time.Second}, delays)

	require.Len(t, listing.requests, 3)
	assert.Equal(t, shopify.Params{"status": "any", "limit": 2}, listing.requests[0])
	assert.Equal(t, shopify.Params{"limit": 2, "page_info": "cursor1"}, listing.requests[1])
	assert.Equal(t, shopify.Params{"limit": 2, "page_info": "cursor2"}, listing.requests[2])
}

func TestPaginator_DefaultLimit(t *testing.T) {
	t.Parallel()

	listing := &fakeListing{pages: 1}
	paginator := &pagination.Paginator{Fetch: listing.fetch}

	items, err := paginator.Collect(context.Background(), shopify.Params{"status": "any"})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	require.Len(t, listing.requests, 1)
	assert.Equal(t, 250, listing.requests[0]["limit"])
	assert.Equal(t, "any", listing.requests[0]["status"])
}

func TestPaginator_EmptyFirstPage(t *testing.T) {
	t.Parallel()

	listing := &fakeListing{pages: 0}
	paginator := &pagination.Paginator{Fetch: listing.fetch}

	items, err := paginator.Collect(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Len(t, listing.requests, 1)
}

func TestPaginator_MaxPages(t *testing.T) {
	t.Parallel()

	listing := &fakeListing{pages: 5}
	pages := 0
	paginator := &pagination.Paginator{
		MaxPages: 2,
		Sleep:    func(context.Context, time.Duration) error { return nil },
		Fetch:    listing.fetch,
		OnPage:   func(int, int) { pages++ },
	}

	items, err := paginator.Collect(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, items, 4)
	assert.Equal(t, 2, pages)
}

func TestPaginator_Errors(t *testing.T) {
	t.Parallel()

	t.Run("fetch error aborts", func(t *testing.T) {
		t.Parallel()

		listing := &fakeListing{pages: 3}
		fetchErr := &shopify.HTTPError{StatusCode: 500, Body: "oops"}
		paginator := &pagination.Paginator{
			Sleep: func(context.Context, time.Duration) error { return nil },
			Fetch: func(ctx context.Context, params shopify.Params) (*pagination.Page, error) {
				if len(listing.requests) == 1 {
					return nil, fetchErr
				}

				return listing.fetch(ctx, params)
			},
		}

		items, err := paginator.Collect(context.Background(), nil)
		require.ErrorIs(t, err, fetchErr)
		assert.Nil(t, items)
	})

	t.Run("callback error stops the walk", func(t *testing.T) {
		t.Parallel()

		stop := errors.New("stop")
		listing := &fakeListing{pages: 3}
		paginator := &pagination.Paginator{
			Sleep: func(context.Context, time.Duration) error { return nil },
			Fetch: listing.fetch,
		}

		seen := 0
		err := paginator.Run(context.Background(), nil, func(shopify.Item) error {
			seen++
			if seen == 3 {
				return stop
			}

			return nil
		})
		require.ErrorIs(t, err, stop)
		assert.Len(t, listing.requests, 2)
	})

	t.Run("cancelled during delay", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		listing := &fakeListing{pages: 3}
		paginator := &pagination.Paginator{Delay: time.Hour, Fetch: listing.fetch}

		_, err := paginator.Collect(ctx, nil)
		require.ErrorIs(t, err, context.Canceled)
		assert.Len(t, listing.requests, 1)
	})
}
