// Package poisearch is a Go client for an Elasticsearch-compatible POI
// search backend. It turns three map exploration intents into search
// requests and reshapes the responses into UI-ready values:
//   - place name suggestions for a search box
//   - category breakdowns under a filter
//   - paginated POI listings with optional free text
//
// # Strict API
//
//	client, _ := poisearch.New(
//	    poisearch.WithBackend("https://search.example.com"),
//	    poisearch.WithAPIKey(os.Getenv("POISEARCH_API_KEY")),
//	)
//	items, err := client.Suggest(ctx, "taip")
//	if errors.Is(err, poisearch.ErrTimeout) { ... }
//
//	buckets, err := client.Categories(ctx, poisearch.Filters{"area1_keyword": "TW"})
//	if errors.Is(err, poisearch.ErrCategoryLimit) {
//	    // buckets holds the first page; continue with CategoriesAfter
//	}
//
// # Lenient API
//
// QuerySearch, QueryGroupBy and QueryPoiList never fail: errors are logged
// and an empty result is returned.
//
//	page := client.QueryPoiList(ctx, filters, 0, 20, "ramen")
//	render(page.Data, page.TotalCount)
package poisearch
