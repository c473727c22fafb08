package client

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/MikeMC777/catalog-browser/internal/item"
)

// FetchAll returns every item matching p, in page order. Page 1 is fetched
// first to learn the page count; the rest are fetched concurrently. The first
// failure cancels the remaining requests.
func (c *Client) FetchAll(ctx context.Context, p item.Params, v item.Variant) ([]item.Item, error) {
	p.Page = 1
	first, err := c.Query(ctx, p, v)
	if err != nil {
		return nil, err
	}
	total := first.Pagination.TotalPages
	if total <= 1 || p.Limit <= 0 {
		return first.Data, nil
	}

	pages := make([][]item.Item, total)
	pages[0] = first.Data

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.MaxParallel, 1))
	for n := 2; n <= total; n++ {
		pp := p
		pp.Page = n
		g.Go(func() error {
			res, err := c.Query(gctx, pp, v)
			if err != nil {
				return err
			}
			pages[n-1] = res.Data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// a canceled parent wins over whichever page error the group kept
		return nil, canceled(ctx, err)
	}

	out := make([]item.Item, 0, first.Pagination.TotalItems)
	for _, page := range pages {
		out = append(out, page...)
	}
	return out, nil
}

// LoadMore fetches the page after pg and appends it to have. When there is
// no next page it returns its inputs without a request.
func (c *Client) LoadMore(ctx context.Context, p item.Params, v item.Variant, have []item.Item, pg item.Pagination) ([]item.Item, item.Pagination, error) {
	if !pg.HasNextPage {
		return have, pg, nil
	}
	p.Page = pg.CurrentPage + 1
	res, err := c.Query(ctx, p, v)
	if err != nil {
		return have, pg, err
	}
	out := make([]item.Item, 0, len(have)+len(res.Data))
	out = append(out, have...)
	out = append(out, res.Data...)
	return out, res.Pagination, nil
}
