package poisearch

// Filters maps a keyword field (e.g. area1_keyword) to the exact value it must hold.
// Entries with a blank value are ignored.
type Filters map[string]string

// Suggestion is one autocomplete candidate.
type Suggestion struct {
	Value string         `json:"value"` // "Asia, Taiwan, Taipei"
	Score float64        `json:"score"`
	Raw   map[string]any `json:"raw"` // untouched backend source
}

// CategoryBucket is one (main, sub) category group.
type CategoryBucket struct {
	MainCategory string  `json:"mainCategory"`
	SubCategory  string  `json:"subCategory"`
	Count        int64   `json:"count"`
	Rating       float64 `json:"rating"` // max user_ratings_total in the group
}

// CategoryPage is one page of category buckets.
// After is non-nil when more buckets follow; pass it to CategoriesAfter.
type CategoryPage struct {
	Buckets []CategoryBucket
	After   map[string]any
}

// POI is a POI summary restricted to the source field allowlist.
type POI map[string]any

// POIPage is one page of POIs and the total number of matches.
type POIPage struct {
	Data       []POI `json:"data"`
	TotalCount int64 `json:"totalCount"`
}

// Overview is the category breakdown and the first POI page for one filter.
type Overview struct {
	Categories          []CategoryBucket
	CategoriesTruncated bool
	POIs                POIPage
}
