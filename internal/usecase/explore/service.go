package explore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/poisearch/internal/domain"
	"github.com/kailas-cloud/poisearch/internal/domain/search/category"
	"github.com/kailas-cloud/poisearch/internal/domain/search/filter"
	"github.com/kailas-cloud/poisearch/internal/domain/search/poi"
	"github.com/kailas-cloud/poisearch/internal/domain/search/suggestion"
)

// Paging bounds applied when the caller does not configure their own.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Paging holds the page size defaults of the owning application.
type Paging struct {
	DefaultSize int
	MaxSize     int
}

// Overview is the category breakdown and the first POI page for one filter.
type Overview struct {
	Categories          []category.Bucket
	CategoriesTruncated bool
	POIs                poi.Page
}

// Service normalizes user input and runs exploration queries.
type Service struct {
	repo   Repository
	paging Paging
}

// New creates an explore service. Zero paging values fall back to the defaults.
func New(repo Repository, paging Paging) *Service {
	if paging.DefaultSize <= 0 {
		paging.DefaultSize = DefaultPageSize
	}
	if paging.MaxSize <= 0 {
		paging.MaxSize = MaxPageSize
	}
	if paging.DefaultSize > paging.MaxSize {
		paging.DefaultSize = paging.MaxSize
	}
	return &Service{repo: repo, paging: paging}
}

// Suggest returns place name suggestions. A blank query fails with
// domain.ErrEmptyInput without touching the backend.
func (s *Service) Suggest(ctx context.Context, query string) ([]suggestion.Suggestion, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyInput
	}
	out, err := s.repo.Suggest(ctx, query)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Categories returns the first page of category buckets sorted by rating.
// When the backend has more buckets than one page holds, the page is returned
// together with an error wrapping domain.ErrCategoryLimit.
func (s *Service) Categories(ctx context.Context, filters filter.Filters) ([]category.Bucket, error) {
	page, err := s.repo.Categories(ctx, filters, nil)
	if err != nil {
		return nil, err
	}
	if page.AfterKey != nil {
		return page.Buckets, fmt.Errorf(
			"%w: %d buckets returned, more available", domain.ErrCategoryLimit, len(page.Buckets),
		)
	}
	return page.Buckets, nil
}

// CategoriesAfter returns the page of buckets following the after cursor.
// A nil cursor starts at the first page.
func (s *Service) CategoriesAfter(
	ctx context.Context, filters filter.Filters, after map[string]any,
) (category.Page, error) {
	return s.repo.Categories(ctx, filters, after)
}

// POIs returns one page of POIs ordered by rating count.
// size <= 0 selects the default page size and from < 0 becomes 0; other
// values are sent unchanged. The keyword is trimmed.
func (s *Service) POIs(
	ctx context.Context, filters filter.Filters, from, size int, keyword string,
) (poi.Page, error) {
	from, size = s.normalizePaging(from, size)
	return s.repo.POIs(ctx, filters, from, size, strings.TrimSpace(keyword))
}

// Overview runs the category aggregation and the first POI page concurrently.
// A category limit does not fail the overview; it marks it truncated.
func (s *Service) Overview(ctx context.Context, filters filter.Filters, size int) (Overview, error) {
	var out Overview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		buckets, err := s.Categories(gctx, filters)
		if errors.Is(err, domain.ErrCategoryLimit) {
			out.CategoriesTruncated = true
			err = nil
		}
		if err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		out.Categories = buckets
		return nil
	})

	g.Go(func() error {
		page, err := s.POIs(gctx, filters, 0, size, "")
		if err != nil {
			return fmt.Errorf("pois: %w", err)
		}
		out.POIs = page
		return nil
	})

	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}

// PageSizes returns the default page size and the maximum the HTTP API accepts.
func (s *Service) PageSizes() (defaultSize, maxSize int) {
	return s.paging.DefaultSize, s.paging.MaxSize
}

func (s *Service) normalizePaging(from, size int) (int, int) {
	if from < 0 {
		from = 0
	}
	if size <= 0 {
		size = s.paging.DefaultSize
	}
	return from, size
}
