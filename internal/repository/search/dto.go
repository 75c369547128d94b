package search

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// hitsResponse is the hits part of a _search response envelope.
type hitsResponse struct {
	Hits *struct {
		Total *totalHits `json:"total"`
		Hits  []hitDTO   `json:"hits"`
	} `json:"hits"`
}

type hitDTO struct {
	Score  *float64       `json:"_score"`
	Source map[string]any `json:"_source"`
}

// totalHits accepts both {"value": n, "relation": "eq"} and a bare number.
type totalHits struct {
	Value int64 `json:"value"`
}

func (t *totalHits) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		if bytes.Equal(data, []byte("null")) {
			return nil
		}
		if err := json.Unmarshal(data, &t.Value); err != nil {
			return fmt.Errorf("hits.total: %w", err)
		}
		return nil
	}
	var obj struct {
		Value int64 `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("hits.total: %w", err)
	}
	t.Value = obj.Value
	return nil
}

// aggResponse is the category aggregation part of a _search response envelope.
type aggResponse struct {
	Aggregations *struct {
		Categories *struct {
			AfterKey map[string]any `json:"after_key"`
			Buckets  []bucketDTO    `json:"buckets"`
		} `json:"custom_category_aggs"`
	} `json:"aggregations"`
}

type bucketDTO struct {
	Key struct {
		Main string `json:"custom_main_category"`
		Sub  string `json:"custom_sub_category"`
	} `json:"key"`
	DocCount   int64 `json:"doc_count"`
	RatingsMax struct {
		Value *float64 `json:"value"`
	} `json:"ratings_max"`
}

// rating returns the bucket's max rating count, 0 when the backend reports null.
func (b *bucketDTO) rating() float64 {
	if b.RatingsMax.Value == nil {
		return 0
	}
	return *b.RatingsMax.Value
}
