package category

import "sort"

// Bucket is one (main category, sub category) group of an aggregation.
type Bucket struct {
	MainCategory string  `json:"mainCategory"`
	SubCategory  string  `json:"subCategory"`
	Count        int64   `json:"count"`
	Rating       float64 `json:"rating"`
}

// Page is one composite aggregation page plus the cursor for the next one.
// AfterKey is nil when the backend reports no further pages.
type Page struct {
	Buckets  []Bucket       `json:"buckets"`
	AfterKey map[string]any `json:"afterKey,omitempty"`
}

// SortByRating orders buckets by rating, highest first.
// Buckets with equal ratings keep their relative order.
func SortByRating(buckets []Bucket) {
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Rating > buckets[j].Rating
	})
}
