// Package trends aggregates candidate news items from all configured sources,
// deduplicates them, and guarantees the pipeline always has input.
package trends

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/trendwise/trendbot/internal/sources"
)

// CrawlResult is the outcome of one aggregation pass.
type CrawlResult struct {
	// Success is false when live sources produced nothing and the result
	// is entirely backfilled.
	Success bool           `json:"success"`
	Trends  []sources.Trend `json:"trends"`
	Sources map[string]int `json:"sources"`
}

// Aggregator fans out to the source registry and merges the results.
type Aggregator struct {
	registry *sources.Registry
	query    string
	logger   *slog.Logger
}

// NewAggregator creates an aggregator over the given registry. query is the
// default search term used for every crawl.
func NewAggregator(registry *sources.Registry, query string) *Aggregator {
	return &Aggregator{
		registry: registry,
		query:    query,
		logger:   slog.Default(),
	}
}

// CrawlTrends gathers up to limit trends. Live results below limit/2 are
// padded with shuffled built-in fallback trends. The combined sequence is
// deduplicated by case-insensitive trimmed title, first occurrence winning,
// then truncated to limit. CrawlTrends never returns an empty slice.
func (a *Aggregator) CrawlTrends(ctx context.Context, limit int) CrawlResult {
	if limit <= 0 {
		limit = 6
	}

	live, counts := a.registry.SearchAll(ctx, a.query, limit)
	result := CrawlResult{
		Success: len(live) > 0,
		Sources: counts,
	}

	combined := live
	if len(combined) < limit/2 || len(combined) == 0 {
		backfill := fallbackTrends(limit - len(combined))
		combined = append(combined, backfill...)
		result.Sources[FallbackSourceName] = len(backfill)
		a.logger.Info("padding trends from fallback list",
			"live", len(live), "backfill", len(backfill))
	}

	deduped := Dedupe(combined)
	if len(deduped) > limit {
		deduped = deduped[:limit]
	}
	result.Trends = deduped
	return result
}

// Headlines fetches top items from all sources, deduplicated and truncated.
func (a *Aggregator) Headlines(ctx context.Context, limit int) []sources.Trend {
	all, _ := a.registry.HeadlinesAll(ctx, limit)
	deduped := Dedupe(all)
	if len(deduped) > limit {
		deduped = deduped[:limit]
	}
	return deduped
}

// Dedupe removes trends whose case-insensitive trimmed title was already
// seen, preserving insertion order. First occurrence wins.
func Dedupe(trends []sources.Trend) []sources.Trend {
	seen := make(map[string]bool, len(trends))
	out := make([]sources.Trend, 0, len(trends))
	for _, t := range trends {
		key := strings.ToLower(strings.TrimSpace(t.Title))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

func syntheticURL(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Join(strings.Fields(slug), "-")
	return fmt.Sprintf("https://trendwise.internal/topics/%s", slug)
}
