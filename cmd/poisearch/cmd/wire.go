package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/poisearch/internal/config"
	searchrepo "github.com/kailas-cloud/poisearch/internal/repository/search"
	"github.com/kailas-cloud/poisearch/internal/transport/elastic"
	exploreuc "github.com/kailas-cloud/poisearch/internal/usecase/explore"
	healthuc "github.com/kailas-cloud/poisearch/internal/usecase/health"
)

// services is the composition root shared by serve and the query commands.
type services struct {
	backend *elastic.Client
	explore *exploreuc.Service
	health  *healthuc.Service
}

func wire(cfg *config.Config, logger *zap.Logger) (*services, error) {
	backend, err := elastic.NewClient(&elastic.Config{
		BaseURL:      cfg.Backend.URL,
		APIKey:       cfg.Backend.APIKey,
		Timeout:      cfg.Backend.Timeout(),
		RateLimitRPS: cfg.Backend.RateLimitRPS,
		PingIndex:    cfg.Indices.POI,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create backend client: %w", err)
	}

	repo := searchrepo.New(backend, searchrepo.Settings{
		TranslationIndex: cfg.Indices.Translation,
		POIIndex:         cfg.Indices.POI,
		Analyzer:         cfg.Query.Analyzer,
		Language:         cfg.Query.Language,
		SuggestSize:      cfg.Query.SuggestSize,
		CompositeSize:    cfg.Query.CompositeSize,
		SourceFields:     cfg.Query.POISourceFields,
	})

	return &services{
		backend: backend,
		explore: exploreuc.New(repo, exploreuc.Paging{
			DefaultSize: cfg.Query.DefaultPageSize,
			MaxSize:     cfg.Query.MaxPageSize,
		}),
		health: healthuc.New(backend),
	}, nil
}
