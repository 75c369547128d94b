package poi

// DefaultSourceFields is the POI summary allowlist.
var DefaultSourceFields = []string{
	"place_id",
	"main_title",
	"user_ratings_total",
	"rating",
	"category",
	"custom_sub_category",
	"custom_main_category",
	"address",
	"location",
}

// Document is a POI summary: a backend source restricted to the allowlist.
type Document map[string]any

// Page is one page of POI summaries plus the total number of matches.
type Page struct {
	Data       []Document `json:"data"`
	TotalCount int64      `json:"totalCount"`
}

// EmptyPage returns a page with no data and a zero total.
func EmptyPage() Page {
	return Page{Data: []Document{}}
}

// Project copies the allowed fields of source into a new Document.
// Fields absent from source stay absent.
func Project(source map[string]any, allowed []string) Document {
	doc := make(Document, len(allowed))
	for _, f := range allowed {
		if v, ok := source[f]; ok {
			doc[f] = v
		}
	}
	return doc
}
