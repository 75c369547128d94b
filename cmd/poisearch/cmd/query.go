package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/poisearch/internal/domain"
	"github.com/kailas-cloud/poisearch/internal/domain/search/filter"
)

// runQuery wires the services and runs fn with a cancellable command context.
func runQuery(cmd *cobra.Command, g *globalFlags, fn func(ctx context.Context, svc *services) (any, error)) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	svc, err := wire(&cfg, logger)
	if err != nil {
		return err
	}

	result, err := fn(cmd.Context(), svc)
	if err != nil {
		logger.Debug("query failed", zap.String("kind", domain.Kind(err)), zap.Error(err))
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func newSuggestCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <query>",
		Short: "Suggest place names for a typed fragment",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runQuery(cmd, g, func(ctx context.Context, svc *services) (any, error) {
				return svc.explore.Suggest(ctx, query)
			})
		},
	}
}

func newCategoriesCommand(g *globalFlags) *cobra.Command {
	var filters map[string]string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Break POIs down by (main, sub) category, ranked by rating",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, g, func(ctx context.Context, svc *services) (any, error) {
				buckets, err := svc.explore.Categories(ctx, filter.Filters(filters))
				if errors.Is(err, domain.ErrCategoryLimit) {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
					return buckets, nil
				}
				return buckets, err
			})
		},
	}

	cmd.Flags().StringToStringVar(&filters, "filter", nil, "exact-match filter, e.g. --filter area1_keyword=TW")
	return cmd
}

func newPOIsCommand(g *globalFlags) *cobra.Command {
	var (
		filters    map[string]string
		from, size int
		keyword    string
	)

	cmd := &cobra.Command{
		Use:   "pois",
		Short: "List POIs under a filter, ordered by rating count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, g, func(ctx context.Context, svc *services) (any, error) {
				return svc.explore.POIs(ctx, filter.Filters(filters), from, size, keyword)
			})
		},
	}

	cmd.Flags().StringToStringVar(&filters, "filter", nil, "exact-match filter, e.g. --filter custom_main_category=Food")
	cmd.Flags().IntVar(&from, "from", 0, "offset of the first result")
	cmd.Flags().IntVar(&size, "size", 0, "page size (default: query.default_page_size)")
	cmd.Flags().StringVar(&keyword, "keyword", "", "free text matched against title and category")
	return cmd
}
