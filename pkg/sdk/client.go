package poisearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kailas-cloud/poisearch/internal/domain/search/category"
	"github.com/kailas-cloud/poisearch/internal/domain/search/filter"
	"github.com/kailas-cloud/poisearch/internal/domain/search/poi"
	"github.com/kailas-cloud/poisearch/internal/domain/search/suggestion"
	searchrepo "github.com/kailas-cloud/poisearch/internal/repository/search"
	"github.com/kailas-cloud/poisearch/internal/transport/elastic"
	exploreuc "github.com/kailas-cloud/poisearch/internal/usecase/explore"
	healthuc "github.com/kailas-cloud/poisearch/internal/usecase/health"
)

// Default index names and query constants.
const (
	DefaultTranslationIndex = "index_poi_location_translation"
	DefaultPOIIndex         = "index_poi_raw2_global"
	DefaultAnalyzer         = "index_analyzer"
	DefaultLanguage         = "zh-tw"
	DefaultSuggestSize      = 10
	DefaultCompositeSize    = 1000
)

// Внутренний интерфейс для подмены в тестах.
type exploreUseCase interface {
	Suggest(ctx context.Context, query string) ([]suggestion.Suggestion, error)
	Categories(ctx context.Context, filters filter.Filters) ([]category.Bucket, error)
	CategoriesAfter(ctx context.Context, filters filter.Filters, after map[string]any) (category.Page, error)
	POIs(ctx context.Context, filters filter.Filters, from, size int, keyword string) (poi.Page, error)
	Overview(ctx context.Context, filters filter.Filters, size int) (exploreuc.Overview, error)
}

type backendPinger interface {
	Ping(ctx context.Context) error
}

// Client is the poisearch SDK entry point. Safe for concurrent use.
type Client struct {
	backend    backendPinger
	exploreSvc exploreUseCase
	healthSvc  healthUseCase
	obs        *observer
	log        *slog.Logger
}

// New creates a Client. WithBackend and WithAPIKey are required.
// No request is made until the first query.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	cfg.applyDefaults()

	if cfg.baseURL == "" {
		return nil, errors.New("poisearch: backend url required (use WithBackend)")
	}
	if cfg.apiKey == "" {
		return nil, errors.New("poisearch: api key required (use WithAPIKey)")
	}

	backend, err := elastic.NewClient(&elastic.Config{
		BaseURL:      cfg.baseURL,
		APIKey:       cfg.apiKey,
		Timeout:      cfg.timeout,
		RateLimitRPS: cfg.rateLimitRPS,
		PingIndex:    cfg.poiIndex,
		HTTPClient:   cfg.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("poisearch: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return wireClient(backend, cfg, obs), nil
}

func (c *clientConfig) applyDefaults() {
	if c.translationIndex == "" {
		c.translationIndex = DefaultTranslationIndex
	}
	if c.poiIndex == "" {
		c.poiIndex = DefaultPOIIndex
	}
	if c.analyzer == "" {
		c.analyzer = DefaultAnalyzer
	}
	if c.language == "" {
		c.language = DefaultLanguage
	}
	if c.suggestSize <= 0 {
		c.suggestSize = DefaultSuggestSize
	}
	if c.compositeSize <= 0 {
		c.compositeSize = DefaultCompositeSize
	}
	if len(c.sourceFields) == 0 {
		c.sourceFields = poi.DefaultSourceFields
	}
}

func wireClient(backend *elastic.Client, cfg *clientConfig, obs *observer) *Client {
	repo := searchrepo.New(backend, searchrepo.Settings{
		TranslationIndex: cfg.translationIndex,
		POIIndex:         cfg.poiIndex,
		Analyzer:         cfg.analyzer,
		Language:         cfg.language,
		SuggestSize:      cfg.suggestSize,
		CompositeSize:    cfg.compositeSize,
		SourceFields:     cfg.sourceFields,
	})

	log := cfg.logger
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		backend: backend,
		exploreSvc: exploreuc.New(repo, exploreuc.Paging{
			DefaultSize: cfg.defaultPageSize,
			MaxSize:     max(cfg.defaultPageSize, exploreuc.MaxPageSize),
		}),
		healthSvc: healthuc.New(backend),
		obs:       obs,
		log:       log,
	}
}

// Ping checks backend connectivity and credentials.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.backend.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
