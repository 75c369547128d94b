package explore

import (
	"context"

	"github.com/kailas-cloud/poisearch/internal/domain/search/category"
	"github.com/kailas-cloud/poisearch/internal/domain/search/filter"
	"github.com/kailas-cloud/poisearch/internal/domain/search/poi"
	"github.com/kailas-cloud/poisearch/internal/domain/search/suggestion"
)

// Repository defines the backend contract for POI exploration.
type Repository interface {
	Suggest(ctx context.Context, query string) ([]suggestion.Suggestion, error)

	Categories(
		ctx context.Context, filters filter.Filters, after map[string]any,
	) (category.Page, error)

	POIs(
		ctx context.Context, filters filter.Filters, from, size int, keyword string,
	) (poi.Page, error)
}
