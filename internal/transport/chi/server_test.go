package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/poisearch/internal/domain"
	"github.com/kailas-cloud/poisearch/internal/domain/search/category"
	"github.com/kailas-cloud/poisearch/internal/domain/search/filter"
	"github.com/kailas-cloud/poisearch/internal/domain/search/poi"
	"github.com/kailas-cloud/poisearch/internal/domain/search/suggestion"
	logpkg "github.com/kailas-cloud/poisearch/internal/logger"
	exploreuc "github.com/kailas-cloud/poisearch/internal/usecase/explore"
	healthuc "github.com/kailas-cloud/poisearch/internal/usecase/health"
)

// --- Mocks ---

type mockRepo struct {
	mu sync.Mutex

	suggestions []suggestion.Suggestion
	catPage     category.Page
	poiPage     poi.Page
	err         error

	calls       int
	lastQuery   string
	lastFilters filter.Filters
	lastFrom    int
	lastSize    int
	lastKeyword string
	lastReqID   string
}

func (m *mockRepo) record(ctx context.Context, f filter.Filters) {
	m.calls++
	m.lastFilters = f
	m.lastReqID = logpkg.RequestIDFromContext(ctx)
}

func (m *mockRepo) Suggest(ctx context.Context, query string) ([]suggestion.Suggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(ctx, nil)
	m.lastQuery = query
	return m.suggestions, m.err
}

func (m *mockRepo) Categories(ctx context.Context, f filter.Filters, _ map[string]any) (category.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(ctx, f)
	return m.catPage, m.err
}

func (m *mockRepo) POIs(ctx context.Context, f filter.Filters, from, size int, keyword string) (poi.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(ctx, f)
	m.lastFrom, m.lastSize, m.lastKeyword = from, size, keyword
	return m.poiPage, m.err
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

var testFilterFields = []string{"area1_keyword", "custom_main_category"}

func newTestRouter(t *testing.T, repo *mockRepo, apiKeys ...string) (http.Handler, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	srv := NewServer(
		exploreuc.New(repo, exploreuc.Paging{DefaultSize: 20, MaxSize: 100}),
		healthuc.New(&mockPinger{}),
		testFilterFields,
		zap.New(core),
	)
	return NewRouter(srv, apiKeys), logs
}

func doGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func errorLogs(logs *observer.ObservedLogs) int {
	return logs.FilterLevelExact(zapcore.ErrorLevel).Len()
}

// --- Suggest ---

func TestSuggest_EchoesSeq(t *testing.T) {
	repo := &mockRepo{suggestions: []suggestion.Suggestion{
		suggestion.New(map[string]any{"translated_area1": "Asia", "translated_area3": "Taipei"}, 4.2),
	}}
	h, _ := newTestRouter(t, repo)

	rr := doGet(t, h, "/v1/suggest?q=tai&seq=7")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}

	resp := decode[SuggestResponse](t, rr)
	if resp.Seq != "7" {
		t.Errorf("seq = %q", resp.Seq)
	}
	if len(resp.Items) != 1 || resp.Items[0].Value != "Asia, Taipei" || resp.Items[0].Score != 4.2 {
		t.Errorf("items = %+v", resp.Items)
	}
	if repo.lastReqID == "" {
		t.Error("request id was not propagated to the backend call")
	}
}

func TestSuggest_EmptyQuery(t *testing.T) {
	repo := &mockRepo{}
	h, logs := newTestRouter(t, repo)

	for _, target := range []string{"/v1/suggest", "/v1/suggest?q=%20%20", "/v1/suggest?q=%3Cb%3E%3C%2Fb%3E"} {
		rr := doGet(t, h, target)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", target, rr.Code)
		}
		if body := strings.TrimSpace(rr.Body.String()); body != `{"seq":"","items":[]}` {
			t.Errorf("%s: body = %s", target, body)
		}
	}
	if repo.calls != 0 {
		t.Errorf("backend called %d times", repo.calls)
	}
	if errorLogs(logs) != 0 {
		t.Error("blank query must not log an error")
	}
}

func TestSuggest_SanitizesMarkup(t *testing.T) {
	repo := &mockRepo{}
	h, _ := newTestRouter(t, repo)

	doGet(t, h, "/v1/suggest?q=%3Cscript%3Ex%3C%2Fscript%3Etai%20%26%20pei")
	if repo.lastQuery != "tai & pei" {
		t.Errorf("query = %q", repo.lastQuery)
	}
}

func TestSuggest_FailureCollapses(t *testing.T) {
	repo := &mockRepo{err: domain.ErrTimeout}
	h, logs := newTestRouter(t, repo)

	rr := doGet(t, h, "/v1/suggest?q=tai&seq=3")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decode[SuggestResponse](t, rr); len(resp.Items) != 0 || resp.Seq != "3" {
		t.Errorf("resp = %+v", resp)
	}
	entries := logs.FilterMessage("query failed").All()
	if len(entries) != 1 || entries[0].ContextMap()["kind"] != "timeout" {
		t.Errorf("log entries = %+v", entries)
	}
}

// --- Categories ---

func TestCategories_FiltersFromQuery(t *testing.T) {
	repo := &mockRepo{catPage: category.Page{Buckets: []category.Bucket{
		{MainCategory: "Food", SubCategory: "Cafe", Count: 7, Rating: 450},
	}}}
	h, _ := newTestRouter(t, repo)

	rr := doGet(t, h, "/v1/categories?area1_keyword=TW&custom_main_category=&unknown_field=x")
	resp := decode[CategoriesResponse](t, rr)
	if len(resp.Items) != 1 || resp.Truncated {
		t.Errorf("resp = %+v", resp)
	}
	if len(repo.lastFilters) != 1 || repo.lastFilters["area1_keyword"] != "TW" {
		t.Errorf("filters = %v", repo.lastFilters)
	}
}

func TestCategories_Truncated(t *testing.T) {
	repo := &mockRepo{catPage: category.Page{
		Buckets:  []category.Bucket{{MainCategory: "Food"}},
		AfterKey: map[string]any{"custom_main_category": "Food"},
	}}
	h, logs := newTestRouter(t, repo)

	resp := decode[CategoriesResponse](t, doGet(t, h, "/v1/categories"))
	if !resp.Truncated || len(resp.Items) != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if logs.FilterMessage("category buckets truncated").Len() != 1 {
		t.Error("expected a truncation warning")
	}
}

func TestCategories_FailureCollapses(t *testing.T) {
	repo := &mockRepo{err: &domain.BackendError{StatusCode: 403, Reason: "forbidden"}}
	h, logs := newTestRouter(t, repo)

	rr := doGet(t, h, "/v1/categories")
	if body := strings.TrimSpace(rr.Body.String()); body != `{"items":[],"truncated":false}` {
		t.Errorf("body = %s", body)
	}
	if errorLogs(logs) != 1 {
		t.Errorf("expected 1 error log, got %d", errorLogs(logs))
	}
}

// --- POIs ---

func TestPOIs_Paging(t *testing.T) {
	repo := &mockRepo{poiPage: poi.Page{Data: []poi.Document{{"place_id": "p1"}}, TotalCount: 31}}
	h, _ := newTestRouter(t, repo)

	rr := doGet(t, h, "/v1/pois?custom_main_category=Food&from=20&size=10&keyword=sushi")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	page := decode[poi.Page](t, rr)
	if page.TotalCount != 31 || len(page.Data) != 1 {
		t.Errorf("page = %+v", page)
	}
	if repo.lastFrom != 20 || repo.lastSize != 10 || repo.lastKeyword != "sushi" {
		t.Errorf("args = %d %d %q", repo.lastFrom, repo.lastSize, repo.lastKeyword)
	}
	if repo.lastFilters["custom_main_category"] != "Food" {
		t.Errorf("filters = %v", repo.lastFilters)
	}
}

func TestPOIs_Defaults(t *testing.T) {
	repo := &mockRepo{poiPage: poi.EmptyPage()}
	h, _ := newTestRouter(t, repo)

	doGet(t, h, "/v1/pois")
	if repo.lastFrom != 0 || repo.lastSize != 20 || repo.lastKeyword != "" {
		t.Errorf("args = %d %d %q", repo.lastFrom, repo.lastSize, repo.lastKeyword)
	}
}

func TestPOIs_InvalidPaging(t *testing.T) {
	tests := []struct {
		query string
		code  string
	}{
		{"from=-1", CodeValidationFailed},
		{"size=0", CodeValidationFailed},
		{"size=101", CodeValidationFailed},
		{"size=abc", CodeBadRequest},
		{"from=1.5", CodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			repo := &mockRepo{}
			h, _ := newTestRouter(t, repo)

			rr := doGet(t, h, "/v1/pois?"+tt.query)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rr.Code)
			}
			if resp := decode[ErrorResponse](t, rr); resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
			if repo.calls != 0 {
				t.Error("invalid request reached the backend")
			}
		})
	}
}

func TestPOIs_FailureCollapses(t *testing.T) {
	repo := &mockRepo{err: errors.New("connection refused")}
	h, logs := newTestRouter(t, repo)

	rr := doGet(t, h, "/v1/pois?custom_main_category=Food&from=20&size=10&keyword=sushi")
	if body := strings.TrimSpace(rr.Body.String()); body != `{"data":[],"totalCount":0}` {
		t.Errorf("body = %s", body)
	}
	if errorLogs(logs) != 1 {
		t.Errorf("expected 1 error log, got %d", errorLogs(logs))
	}
}

// --- Overview ---

func TestOverview(t *testing.T) {
	repo := &mockRepo{
		catPage: category.Page{Buckets: []category.Bucket{{MainCategory: "Food", SubCategory: "Cafe"}}},
		poiPage: poi.Page{Data: []poi.Document{{"place_id": "p1"}}, TotalCount: 1},
	}
	h, _ := newTestRouter(t, repo)

	resp := decode[OverviewResponse](t, doGet(t, h, "/v1/overview?area1_keyword=TW&size=5"))
	if len(resp.Categories) != 1 || resp.POIs.TotalCount != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if repo.lastSize != 5 {
		t.Errorf("size = %d", repo.lastSize)
	}
}

func TestOverview_FailureCollapses(t *testing.T) {
	repo := &mockRepo{err: domain.ErrTransport}
	h, _ := newTestRouter(t, repo)

	rr := doGet(t, h, "/v1/overview")
	body := strings.TrimSpace(rr.Body.String())
	if body != `{"categories":[],"categoriesTruncated":false,"pois":{"data":[],"totalCount":0}}` {
		t.Errorf("body = %s", body)
	}
}

// --- Health, auth, routing ---

func TestHealthCheck(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	for _, tt := range []struct {
		name   string
		err    error
		status int
	}{
		{"ok", nil, http.StatusOK},
		{"down", errors.New("refused"), http.StatusServiceUnavailable},
	} {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(
				exploreuc.New(&mockRepo{}, exploreuc.Paging{}),
				healthuc.New(&mockPinger{err: tt.err}),
				nil, zap.New(core),
			)
			rr := doGet(t, NewRouter(srv, []string{"secret"}), "/health")
			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
		})
	}
}

func TestRouter_AuthRequired(t *testing.T) {
	repo := &mockRepo{poiPage: poi.EmptyPage()}
	h, _ := newTestRouter(t, repo, "secret")

	if rr := doGet(t, h, "/v1/pois"); rr.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/pois", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("with token: status = %d", rr.Code)
	}
}

func TestRouter_NotFound(t *testing.T) {
	h, _ := newTestRouter(t, &mockRepo{})

	rr := doGet(t, h, "/v1/collections")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestRouter_RequestLogLine(t *testing.T) {
	h, logs := newTestRouter(t, &mockRepo{poiPage: poi.EmptyPage()})

	doGet(t, h, "/v1/pois")
	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 request log line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/v1/pois" || fields["status"] != int64(http.StatusOK) {
		t.Errorf("fields = %v", fields)
	}
}

func TestJSONRecoverer(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := JSONRecoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := doGet(t, h, "/v1/pois")
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != CodeInternalError {
		t.Errorf("code = %q", resp.Code)
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Error("expected a panic log")
	}
}
