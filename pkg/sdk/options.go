package poisearch

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	baseURL      string
	apiKey       string
	timeout      time.Duration
	rateLimitRPS float64
	httpClient   *http.Client

	translationIndex string
	poiIndex         string
	analyzer         string
	language         string
	suggestSize      int
	compositeSize    int
	defaultPageSize  int
	sourceFields     []string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithBackend sets the base URL of the search backend, e.g. https://search.example.com.
func WithBackend(baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = baseURL
	})
}

// WithAPIKey sets the credential sent as "Authorization: ApiKey <key>".
// Load it from the environment or a secret store; it is required.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithTimeout bounds every backend request. Default: 5s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithRateLimit caps outbound requests per second. 0 disables (default).
func WithRateLimit(rps float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.rateLimitRPS = rps
	})
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithIndices overrides the suggestion and POI index names.
// Defaults: index_poi_location_translation, index_poi_raw2_global.
func WithIndices(translation, poi string) Option {
	return optionFunc(func(c *clientConfig) {
		c.translationIndex = translation
		c.poiIndex = poi
	})
}

// WithAnalyzer sets the text analyzer and the suggestion language.
// Defaults: index_analyzer, zh-tw.
func WithAnalyzer(analyzer, language string) Option {
	return optionFunc(func(c *clientConfig) {
		c.analyzer = analyzer
		c.language = language
	})
}

// WithSuggestSize sets the maximum number of suggestions. Default: 10.
func WithSuggestSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.suggestSize = n
	})
}

// WithCompositeSize sets the category buckets fetched per page. Default: 1000.
func WithCompositeSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.compositeSize = n
	})
}

// WithDefaultPageSize sets the POI page size used when a call passes size <= 0.
// Default: 20. Explicit sizes are sent as given.
func WithDefaultPageSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultPageSize = n
	})
}

// WithSourceFields replaces the POI field allowlist.
func WithSourceFields(fields ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sourceFields = fields
	})
}

// WithLogger enables structured logging for SDK operations.
// The lenient Query* methods fall back to slog.Default when none is set.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
