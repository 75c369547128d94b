package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/poisearch/internal/domain"
	"github.com/kailas-cloud/poisearch/internal/domain/search/category"
	"github.com/kailas-cloud/poisearch/internal/domain/search/filter"
	"github.com/kailas-cloud/poisearch/internal/domain/search/poi"
	"github.com/kailas-cloud/poisearch/internal/domain/search/suggestion"
	logpkg "github.com/kailas-cloud/poisearch/internal/logger"
	exploreuc "github.com/kailas-cloud/poisearch/internal/usecase/explore"
	healthuc "github.com/kailas-cloud/poisearch/internal/usecase/health"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeUnauthorized     = "unauthorized"
	CodeInternalError    = "internal_error"
)

// ErrorResponse is the JSON body of every 4xx/5xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuggestResponse is the body of GET /v1/suggest.
type SuggestResponse struct {
	Seq   string                  `json:"seq"`
	Items []suggestion.Suggestion `json:"items"`
}

// CategoriesResponse is the body of GET /v1/categories.
type CategoriesResponse struct {
	Items     []category.Bucket `json:"items"`
	Truncated bool              `json:"truncated"`
}

// OverviewResponse is the body of GET /v1/overview.
type OverviewResponse struct {
	Categories          []category.Bucket `json:"categories"`
	CategoriesTruncated bool              `json:"categoriesTruncated"`
	POIs                poi.Page          `json:"pois"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type pageParams struct {
	From int `validate:"gte=0"`
	Size int `validate:"gte=1"`
}

// Server serves the exploration API to the map frontend.
// Backend failures never surface as 5xx: they collapse into empty results.
type Server struct {
	explore      *exploreuc.Service
	health       *healthuc.Service
	logger       *zap.Logger
	filterFields []string
	policy       *bluemonday.Policy
	validate     *validator.Validate
}

// NewServer creates an HTTP API server. filterFields lists the query
// parameters accepted as exact-match filters.
func NewServer(
	explore *exploreuc.Service,
	health *healthuc.Service,
	filterFields []string,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		explore:      explore,
		health:       health,
		logger:       logger,
		filterFields: filterFields,
		policy:       bluemonday.StrictPolicy(),
		validate:     validator.New(),
	}
}

// Suggest handles GET /v1/suggest?q=&seq=.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp := SuggestResponse{
		Seq:   s.sanitize(q.Get("seq")),
		Items: []suggestion.Suggestion{},
	}

	items, err := s.explore.Suggest(r.Context(), s.sanitize(q.Get("q")))
	switch {
	case err == nil:
		resp.Items = items
	case errors.Is(err, domain.ErrEmptyInput):
	default:
		s.logFailure(r, "suggest", err)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Categories handles GET /v1/categories?<filter fields>.
func (s *Server) Categories(w http.ResponseWriter, r *http.Request) {
	resp := CategoriesResponse{Items: []category.Bucket{}}

	buckets, err := s.explore.Categories(r.Context(), s.filtersFrom(r.URL.Query()))
	switch {
	case err == nil:
		resp.Items = buckets
	case errors.Is(err, domain.ErrCategoryLimit):
		s.requestLogger(r).Warn("category buckets truncated",
			zap.Int("buckets", len(buckets)),
			zap.Error(err),
		)
		resp.Items = buckets
		resp.Truncated = true
	default:
		s.logFailure(r, "categories", err)
	}

	writeJSON(w, http.StatusOK, resp)
}

// POIs handles GET /v1/pois?<filter fields>&from=&size=&keyword=.
func (s *Server) POIs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, ok := s.pageParams(w, q)
	if !ok {
		return
	}

	page, err := s.explore.POIs(r.Context(), s.filtersFrom(q), p.From, p.Size, s.sanitize(q.Get("keyword")))
	if err != nil {
		s.logFailure(r, "pois", err)
		page = poi.EmptyPage()
	}

	writeJSON(w, http.StatusOK, page)
}

// Overview handles GET /v1/overview?<filter fields>&size=.
func (s *Server) Overview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, ok := s.pageParams(w, q)
	if !ok {
		return
	}

	resp := OverviewResponse{Categories: []category.Bucket{}, POIs: poi.EmptyPage()}
	ov, err := s.explore.Overview(r.Context(), s.filtersFrom(q), p.Size)
	if err != nil {
		s.logFailure(r, "overview", err)
	} else {
		resp.Categories = ov.Categories
		resp.CategoriesTruncated = ov.CategoriesTruncated
		resp.POIs = ov.POIs
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// pageParams parses and validates from/size. Missing values take the
// service defaults. Writes a 400 and returns false on invalid input.
func (s *Server) pageParams(w http.ResponseWriter, q url.Values) (pageParams, bool) {
	defSize, maxSize := s.explore.PageSizes()
	p := pageParams{Size: defSize}

	for _, f := range []struct {
		name string
		dst  *int
	}{{"from", &p.From}, {"size", &p.Size}} {
		raw := strings.TrimSpace(q.Get(f.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, f.name+" must be an integer")
			return pageParams{}, false
		}
		*f.dst = n
	}

	if err := s.validate.Struct(p); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, validationMessage(err))
		return pageParams{}, false
	}
	if err := s.validate.Var(p.Size, fmt.Sprintf("lte=%d", maxSize)); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("size must be at most %d", maxSize))
		return pageParams{}, false
	}
	return p, true
}

// filtersFrom collects the configured filter fields from the query string.
func (s *Server) filtersFrom(q url.Values) filter.Filters {
	values := make(map[string]string, len(s.filterFields))
	for _, f := range s.filterFields {
		if v := q.Get(f); v != "" {
			values[f] = s.sanitize(v)
		}
	}
	return filter.Select(values, s.filterFields)
}

// sanitize strips markup from user text. Entities escaped by the policy are
// decoded again since the value is sent as JSON, not rendered.
func (s *Server) sanitize(v string) string {
	if v == "" {
		return v
	}
	return html.UnescapeString(s.policy.Sanitize(v))
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if id := logpkg.RequestIDFromContext(r.Context()); id != "" {
		return s.logger.With(zap.String("request_id", id))
	}
	return s.logger
}

func (s *Server) logFailure(r *http.Request, op string, err error) {
	s.requestLogger(r).Error("query failed",
		zap.String("op", op),
		zap.String("kind", domain.Kind(err)),
		zap.Error(err),
	)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid paging parameters"
	}
	fe := verrs[0]
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
