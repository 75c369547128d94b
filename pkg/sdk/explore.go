package poisearch

import (
	"context"
	"errors"
	"time"

	"github.com/kailas-cloud/poisearch/internal/domain"
	"github.com/kailas-cloud/poisearch/internal/domain/search/category"
	"github.com/kailas-cloud/poisearch/internal/domain/search/filter"
	"github.com/kailas-cloud/poisearch/internal/domain/search/poi"
	"github.com/kailas-cloud/poisearch/internal/domain/search/suggestion"
)

// Suggest returns up to the configured number of place name suggestions in
// backend relevance order. A blank query returns ErrEmptyInput without a request.
func (c *Client) Suggest(ctx context.Context, query string) (_ []Suggestion, err error) {
	start := time.Now()
	defer func() { c.obs.observe("suggest", start, err) }()
	return c.suggest(ctx, query)
}

// Categories returns category buckets under filters, sorted by rating
// descending. When the result hits the per-page bucket cap, the buckets are
// returned together with an error wrapping ErrCategoryLimit.
func (c *Client) Categories(ctx context.Context, filters Filters) (_ []CategoryBucket, err error) {
	start := time.Now()
	defer func() { c.obs.observe("categories", start, err) }()
	return c.categories(ctx, filters)
}

// CategoriesAfter returns the page of buckets that follows the after cursor
// of a previous page. A nil cursor starts at the first page.
func (c *Client) CategoriesAfter(
	ctx context.Context, filters Filters, after map[string]any,
) (_ CategoryPage, err error) {
	start := time.Now()
	defer func() { c.obs.observe("categories_after", start, err) }()

	page, err := c.exploreSvc.CategoriesAfter(ctx, filter.Filters(filters), after)
	if err != nil {
		return CategoryPage{}, err
	}
	return CategoryPage{Buckets: toBuckets(page.Buckets), After: page.AfterKey}, nil
}

// POIs returns one page of POIs under filters ordered by rating count.
// size <= 0 selects the default page size and from < 0 is treated as 0;
// other values are sent as given. A non-blank keyword additionally matches
// title and category text.
func (c *Client) POIs(
	ctx context.Context, filters Filters, from, size int, keyword string,
) (_ POIPage, err error) {
	start := time.Now()
	defer func() { c.obs.observe("pois", start, err) }()
	return c.pois(ctx, filters, from, size, keyword)
}

// Overview fetches the category breakdown and the first POI page concurrently.
func (c *Client) Overview(ctx context.Context, filters Filters, size int) (_ Overview, err error) {
	start := time.Now()
	defer func() { c.obs.observe("overview", start, err) }()

	ov, err := c.exploreSvc.Overview(ctx, filter.Filters(filters), size)
	if err != nil {
		return Overview{}, err
	}
	return Overview{
		Categories:          toBuckets(ov.Categories),
		CategoriesTruncated: ov.CategoriesTruncated,
		POIs:                toPOIPage(ov.POIs),
	}, nil
}

// The Query* methods record metrics through the observer but write their own
// log line, so each failure is logged once.

// QuerySearch is Suggest for UI code: every failure yields an empty,
// non-nil list. Failures other than a blank query are logged.
func (c *Client) QuerySearch(ctx context.Context, query string) []Suggestion {
	start := time.Now()
	items, err := c.suggest(ctx, query)
	c.obs.record("suggest", start, err)
	if err != nil {
		if !errors.Is(err, domain.ErrEmptyInput) {
			c.log.ErrorContext(ctx, "querySearch failed", "kind", domain.Kind(err), "error", err)
		}
		return []Suggestion{}
	}
	return items
}

// QueryGroupBy is Categories for UI code: failures yield an empty list and are
// logged. A bucket cap is logged as a warning and the capped buckets are kept.
func (c *Client) QueryGroupBy(ctx context.Context, filters Filters) []CategoryBucket {
	start := time.Now()
	buckets, err := c.categories(ctx, filters)
	c.obs.record("categories", start, err)
	switch {
	case err == nil:
		return buckets
	case errors.Is(err, domain.ErrCategoryLimit):
		c.log.WarnContext(ctx, "queryGroupBy truncated", "buckets", len(buckets), "error", err)
		return buckets
	default:
		c.log.ErrorContext(ctx, "queryGroupBy failed", "kind", domain.Kind(err), "error", err)
		return []CategoryBucket{}
	}
}

// QueryPoiList is POIs for UI code: failures yield {Data: [], TotalCount: 0}
// and are logged.
func (c *Client) QueryPoiList(
	ctx context.Context, filters Filters, from, size int, keyword string,
) POIPage {
	start := time.Now()
	page, err := c.pois(ctx, filters, from, size, keyword)
	c.obs.record("pois", start, err)
	if err != nil {
		c.log.ErrorContext(ctx, "queryPoiList failed", "kind", domain.Kind(err), "error", err)
		return POIPage{Data: []POI{}}
	}
	return page
}

func (c *Client) suggest(ctx context.Context, query string) ([]Suggestion, error) {
	items, err := c.exploreSvc.Suggest(ctx, query)
	if err != nil {
		return nil, err
	}
	return toSuggestions(items), nil
}

func (c *Client) categories(ctx context.Context, filters Filters) ([]CategoryBucket, error) {
	buckets, err := c.exploreSvc.Categories(ctx, filter.Filters(filters))
	if err != nil && !errors.Is(err, domain.ErrCategoryLimit) {
		return nil, err
	}
	return toBuckets(buckets), err
}

func (c *Client) pois(
	ctx context.Context, filters Filters, from, size int, keyword string,
) (POIPage, error) {
	page, err := c.exploreSvc.POIs(ctx, filter.Filters(filters), from, size, keyword)
	if err != nil {
		return POIPage{}, err
	}
	return toPOIPage(page), nil
}

func toSuggestions(items []suggestion.Suggestion) []Suggestion {
	out := make([]Suggestion, 0, len(items))
	for _, s := range items {
		out = append(out, Suggestion{Value: s.Value, Score: s.Score, Raw: s.Raw})
	}
	return out
}

func toBuckets(buckets []category.Bucket) []CategoryBucket {
	out := make([]CategoryBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, CategoryBucket{
			MainCategory: b.MainCategory,
			SubCategory:  b.SubCategory,
			Count:        b.Count,
			Rating:       b.Rating,
		})
	}
	return out
}

func toPOIPage(page poi.Page) POIPage {
	out := POIPage{Data: make([]POI, 0, len(page.Data)), TotalCount: page.TotalCount}
	for _, d := range page.Data {
		out.Data = append(out.Data, POI(d))
	}
	return out
}
