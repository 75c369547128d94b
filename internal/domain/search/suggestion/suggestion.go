package suggestion

import "strings"

// Separator joins the area levels of a suggestion label.
const Separator = ", "

// LabelFields are the translated area levels joined into a suggestion label, in order.
var LabelFields = []string{
	"translated_area1",
	"translated_area2",
	"translated_area3",
	"translated_area4",
}

// Suggestion is a single autocomplete candidate.
type Suggestion struct {
	Value string         `json:"value"`
	Score float64        `json:"score"`
	Raw   map[string]any `json:"raw"`
}

// New builds a suggestion from a backend hit source and its relevance score.
func New(source map[string]any, score float64) Suggestion {
	if source == nil {
		source = map[string]any{}
	}
	return Suggestion{
		Value: Label(source),
		Score: score,
		Raw:   source,
	}
}

// Label joins the non-blank translated area levels of source.
// Non-string values count as blank.
func Label(source map[string]any) string {
	parts := make([]string, 0, len(LabelFields))
	for _, f := range LabelFields {
		s, ok := source[f].(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, Separator)
}
