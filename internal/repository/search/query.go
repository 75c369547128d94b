package search

import "github.com/kailas-cloud/poisearch/internal/domain/search/filter"

// Field and aggregation names of the POI and translation indices.
const (
	suggestField       = "translated_area0^1"
	languageField      = "language"
	mainCategoryField  = "custom_main_category"
	subCategoryField   = "custom_sub_category"
	ratingsTotalField  = "user_ratings_total"
	categoryAggName    = "custom_category_aggs"
	ratingsMaxAggName  = "ratings_max"
	matchTypeMost      = "most_fields"
	matchOperatorAnd   = "AND"
	sortDesc           = "desc"
	scoreSortField     = "_score"
	suggestMinScore    = 0
	suggestFirstOffset = 0
)

var poiTextFields = []string{"main_title^1", "category^1"}

type multiMatch struct {
	Query    string   `json:"query"`
	Fields   []string `json:"fields"`
	Type     string   `json:"type"`
	Operator string   `json:"operator"`
	Analyzer string   `json:"analyzer"`
}

type matchClause struct {
	MultiMatch multiMatch `json:"multi_match"`
}

type boolQuery struct {
	Must   *matchClause  `json:"must,omitempty"`
	Filter []filter.Term `json:"filter"`
}

type queryClause struct {
	Bool boolQuery `json:"bool"`
}

type suggestRequest struct {
	Query    queryClause         `json:"query"`
	From     int                 `json:"from"`
	Size     int                 `json:"size"`
	Sort     []map[string]string `json:"sort"`
	MinScore float64             `json:"min_score"`
}

type termsSource struct {
	Terms struct {
		Field string `json:"field"`
	} `json:"terms"`
}

type compositeSpec struct {
	Size    int                      `json:"size"`
	Sources []map[string]termsSource `json:"sources"`
	After   map[string]any           `json:"after,omitempty"`
}

type maxMetric struct {
	Max struct {
		Field   string  `json:"field"`
		Missing float64 `json:"missing"`
	} `json:"max"`
}

type compositeAgg struct {
	Composite compositeSpec        `json:"composite"`
	Aggs      map[string]maxMetric `json:"aggs"`
}

type categoryRequest struct {
	Size  int                     `json:"size"`
	Query queryClause             `json:"query"`
	Aggs  map[string]compositeAgg `json:"aggs"`
}

type poiRequest struct {
	Query       queryClause         `json:"query"`
	From        int                 `json:"from"`
	Size        int                 `json:"size"`
	Sort        []map[string]string `json:"sort"`
	Source      []string            `json:"_source"`
	TrackScores bool                `json:"track_scores"`
}

func (r *Repo) textMatch(query string, fields []string) *matchClause {
	return &matchClause{MultiMatch: multiMatch{
		Query:    query,
		Fields:   fields,
		Type:     matchTypeMost,
		Operator: matchOperatorAnd,
		Analyzer: r.settings.Analyzer,
	}}
}

// suggestBody builds the scored autocomplete query against the translation index.
func (r *Repo) suggestBody(query string) suggestRequest {
	return suggestRequest{
		Query: queryClause{Bool: boolQuery{
			Must:   r.textMatch(query, []string{suggestField}),
			Filter: []filter.Term{filter.NewTerm(languageField, r.settings.Language)},
		}},
		From:     suggestFirstOffset,
		Size:     r.settings.SuggestSize,
		Sort:     []map[string]string{{scoreSortField: sortDesc}},
		MinScore: suggestMinScore,
	}
}

// categoryBody builds the (main, sub) category composite aggregation.
// after continues from a previous page's after_key; nil starts at the beginning.
func (r *Repo) categoryBody(filters filter.Filters, after map[string]any) categoryRequest {
	var mainSrc, subSrc termsSource
	mainSrc.Terms.Field = mainCategoryField
	subSrc.Terms.Field = subCategoryField

	var ratingsMax maxMetric
	ratingsMax.Max.Field = ratingsTotalField
	ratingsMax.Max.Missing = 0

	return categoryRequest{
		Size:  0,
		Query: queryClause{Bool: boolQuery{Filter: filter.Encode(filters)}},
		Aggs: map[string]compositeAgg{
			categoryAggName: {
				Composite: compositeSpec{
					Size: r.settings.CompositeSize,
					Sources: []map[string]termsSource{
						{mainCategoryField: mainSrc},
						{subCategoryField: subSrc},
					},
					After: after,
				},
				Aggs: map[string]maxMetric{ratingsMaxAggName: ratingsMax},
			},
		},
	}
}

// poiBody builds the filtered POI listing. A blank keyword adds no must clause.
func (r *Repo) poiBody(filters filter.Filters, from, size int, keyword string) poiRequest {
	q := boolQuery{Filter: filter.Encode(filters)}
	if keyword != "" {
		q.Must = r.textMatch(keyword, poiTextFields)
	}
	return poiRequest{
		Query:       queryClause{Bool: q},
		From:        from,
		Size:        size,
		Sort:        []map[string]string{{ratingsTotalField: sortDesc}},
		Source:      r.settings.SourceFields,
		TrackScores: false,
	}
}
