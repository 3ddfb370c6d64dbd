package pagination

import (
	"context"
	"time"

	"github.com/lastseal/micro-shopify/internal/constants"
	"github.com/lastseal/micro-shopify/internal/retry"
	"github.com/lastseal/micro-shopify/pkg/shopify"
)

// Page is one fetched list page.
type Page struct {
	Items []shopify.Item
	// Link is the raw Link response header.
	Link string
}

// FetchFunc requests one page with the given params.
type FetchFunc func(ctx context.Context, params shopify.Params) (*Page, error)

// Paginator walks every page of a listing.
type Paginator struct {
	// Limit is used when the first params carry no limit.
	Limit int
	// Delay is the pause before every continuation request.
	Delay time.Duration
	// MaxPages stops the walk after that many pages. Zero means no cap.
	MaxPages int
	Sleep    retry.Sleeper
	Fetch    FetchFunc
	// OnPage is called after every fetched page.
	OnPage func(page int, items int)
}

// Run fetches the first page with params and then follows the next cursor.
// Continuation requests carry only limit and page_info, as the cursor
// encodes the original filters. fn receives every item in request order; an
// error from fn stops the walk and is returned unchanged.
func (p *Paginator) Run(ctx context.Context, params shopify.Params, fn func(shopify.Item) error) error {
	limit := params.Limit(p.limitOrDefault())

	current := params.Clone()
	current[constants.ParamLimit] = limit

	sleep := p.Sleep
	if sleep == nil {
		sleep = retry.Sleep
	}

	for pages := 1; ; pages++ {
		page, err := p.Fetch(ctx, current)
		if err != nil {
			return err
		}

		if p.OnPage != nil {
			p.OnPage(pages, len(page.Items))
		}

		for _, item := range page.Items {
			if err := fn(item); err != nil {
				return err
			}
		}

		cursor := NextCursor(page.Link)
		if cursor == "" || (p.MaxPages > 0 && pages >= p.MaxPages) {
			return nil
		}

		if err := sleep(ctx, p.Delay); err != nil {
			return err
		}

		current = shopify.Params{
			constants.ParamLimit:    limit,
			constants.ParamPageInfo: cursor,
		}
	}
}

// Collect runs the paginator and returns every item.
func (p *Paginator) Collect(ctx context.Context, params shopify.Params) ([]shopify.Item, error) {
	items := make([]shopify.Item, 0)

	err := p.Run(ctx, params, func(item shopify.Item) error {
		items = append(items, item)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (p *Paginator) limitOrDefault() int {
	if p.Limit > 0 {
		return p.Limit
	}

	return constants.DefaultPageLimit
}
