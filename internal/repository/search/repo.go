package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/poisearch/internal/domain"
	"github.com/kailas-cloud/poisearch/internal/domain/search/category"
	"github.com/kailas-cloud/poisearch/internal/domain/search/filter"
	"github.com/kailas-cloud/poisearch/internal/domain/search/poi"
	"github.com/kailas-cloud/poisearch/internal/domain/search/suggestion"
)

// store is the consumer interface for the search backend (ISP).
type store interface {
	Search(ctx context.Context, index string, body, out any) error
}

// Settings holds the index names and query constants of the owning application.
type Settings struct {
	TranslationIndex string
	POIIndex         string
	Analyzer         string
	Language         string
	SuggestSize      int
	CompositeSize    int
	SourceFields     []string
}

// Repo implements usecase/explore.Repository against an Elasticsearch-compatible backend.
type Repo struct {
	store    store
	settings Settings
}

// New creates a search repository.
func New(s store, settings Settings) *Repo {
	return &Repo{store: s, settings: settings}
}

// Suggest runs the autocomplete query and projects hits in backend order.
func (r *Repo) Suggest(ctx context.Context, query string) ([]suggestion.Suggestion, error) {
	var resp hitsResponse
	if err := r.store.Search(ctx, r.settings.TranslationIndex, r.suggestBody(query), &resp); err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	if resp.Hits == nil {
		return nil, fmt.Errorf("suggest: %w: response has no hits", domain.ErrDecode)
	}

	out := make([]suggestion.Suggestion, 0, len(resp.Hits.Hits))
	for i, h := range resp.Hits.Hits {
		if h.Source == nil {
			return nil, fmt.Errorf("suggest: %w: hit %d has no _source", domain.ErrDecode, i)
		}
		var score float64
		if h.Score != nil {
			score = *h.Score
		}
		out = append(out, suggestion.New(h.Source, score))
	}
	return out, nil
}

// Categories runs one composite aggregation page and returns buckets sorted by rating.
// Page.AfterKey is set only when the page is full and more buckets may follow.
func (r *Repo) Categories(
	ctx context.Context, filters filter.Filters, after map[string]any,
) (category.Page, error) {
	var resp aggResponse
	if err := r.store.Search(ctx, r.settings.POIIndex, r.categoryBody(filters, after), &resp); err != nil {
		return category.Page{}, fmt.Errorf("categories: %w", err)
	}
	if resp.Aggregations == nil || resp.Aggregations.Categories == nil {
		return category.Page{}, fmt.Errorf(
			"categories: %w: response has no %s aggregation", domain.ErrDecode, categoryAggName,
		)
	}

	agg := resp.Aggregations.Categories
	buckets := make([]category.Bucket, 0, len(agg.Buckets))
	for i := range agg.Buckets {
		b := &agg.Buckets[i]
		buckets = append(buckets, category.Bucket{
			MainCategory: b.Key.Main,
			SubCategory:  b.Key.Sub,
			Count:        b.DocCount,
			Rating:       b.rating(),
		})
	}
	category.SortByRating(buckets)

	page := category.Page{Buckets: buckets}
	if len(agg.AfterKey) > 0 && len(buckets) >= r.settings.CompositeSize {
		page.AfterKey = agg.AfterKey
	}
	return page, nil
}

// POIs runs the filtered listing. from and size are sent unchanged.
func (r *Repo) POIs(
	ctx context.Context, filters filter.Filters, from, size int, keyword string,
) (poi.Page, error) {
	var resp hitsResponse
	if err := r.store.Search(ctx, r.settings.POIIndex, r.poiBody(filters, from, size, keyword), &resp); err != nil {
		return poi.Page{}, fmt.Errorf("pois: %w", err)
	}
	if resp.Hits == nil {
		return poi.Page{}, fmt.Errorf("pois: %w: response has no hits", domain.ErrDecode)
	}

	hits := resp.Hits.Hits
	if size >= 0 && len(hits) > size {
		hits = hits[:size]
	}
	page := poi.Page{Data: make([]poi.Document, 0, len(hits))}
	for _, h := range hits {
		page.Data = append(page.Data, poi.Project(h.Source, r.settings.SourceFields))
	}
	if resp.Hits.Total != nil {
		page.TotalCount = resp.Hits.Total.Value
	}
	return page, nil
}
