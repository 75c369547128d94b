package search

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/poisearch/internal/domain/search/poi"
)

// mockStore implements the consumer interface for tests.
// It records the last request and answers with a canned JSON body.
type mockStore struct {
	response  string
	err       error
	calls     int
	lastIndex string
	lastBody  []byte
}

func (m *mockStore) Search(_ context.Context, index string, body, out any) error {
	m.calls++
	m.lastIndex = index
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	m.lastBody = b
	if m.err != nil {
		return m.err
	}
	return json.Unmarshal([]byte(m.response), out)
}

// lastRequest decodes the last request body into a generic map.
func (m *mockStore) lastRequest(t *testing.T) map[string]any {
	t.Helper()
	var req map[string]any
	if err := json.Unmarshal(m.lastBody, &req); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return req
}

func testSettings() Settings {
	return Settings{
		TranslationIndex: "index_poi_location_translation",
		POIIndex:         "index_poi_raw2_global",
		Analyzer:         "index_analyzer",
		Language:         "zh-tw",
		SuggestSize:      10,
		CompositeSize:    1000,
		SourceFields:     poi.DefaultSourceFields,
	}
}

func newTestRepo(t *testing.T, response string) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{response: response}
	return New(ms, testSettings()), ms
}

// dig walks nested maps by key.
func dig(t *testing.T, v any, keys ...string) any {
	t.Helper()
	for _, k := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			t.Fatalf("expected object at %q, got %T", k, v)
		}
		v, ok = m[k]
		if !ok {
			t.Fatalf("missing key %q", k)
		}
	}
	return v
}
