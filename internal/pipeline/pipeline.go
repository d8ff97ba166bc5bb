// Package pipeline orchestrates one full publication cycle:
// crawl trends, generate drafts, resolve images, and persist articles.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/trendwise/trendbot/internal/generator"
	"github.com/trendwise/trendbot/internal/images"
	"github.com/trendwise/trendbot/internal/sources"
	"github.com/trendwise/trendbot/internal/store"
	"github.com/trendwise/trendbot/internal/trends"
)

// Config tunes a pipeline.
type Config struct {
	TrendLimit int           // trends requested per cycle
	BatchSize  int           // concurrent outbound calls per batch
	BatchDelay time.Duration // pause between batches
	Author     string        // byline on generated articles
}

// CycleResult summarizes one pipeline pass.
type CycleResult struct {
	TrendsSeen int     `json:"trends_seen"`
	Generated  int     `json:"generated"`
	Skipped    int     `json:"skipped"`
	Failed     int     `json:"failed"`
	TokensUsed int     `json:"tokens_used"`
	Cost       float64 `json:"cost"`
}

// Pipeline wires the aggregator, generator, image resolver, and store.
type Pipeline struct {
	agg      *trends.Aggregator
	gen      *generator.Generator
	resolver *images.Resolver
	store    *store.Store
	cfg      Config
	logger   *slog.Logger
}

// New constructs a Pipeline. All dependencies are required.
func New(agg *trends.Aggregator, gen *generator.Generator, resolver *images.Resolver, st *store.Store, cfg Config) *Pipeline {
	if cfg.TrendLimit <= 0 {
		cfg.TrendLimit = 6
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 3
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = 2 * time.Second
	}
	if cfg.Author == "" {
		cfg.Author = "TrendBot"
	}
	return &Pipeline{
		agg:      agg,
		gen:      gen,
		resolver: resolver,
		store:    st,
		cfg:      cfg,
		logger:   slog.Default(),
	}
}

// RunCycle performs one publication pass. A single trend's failure is
// isolated; only an empty trend set fails the whole cycle.
func (p *Pipeline) RunCycle(ctx context.Context) (CycleResult, error) {
	crawl := p.agg.CrawlTrends(ctx, p.cfg.TrendLimit)
	trendSet := crawl.Trends
	if len(trendSet) < p.cfg.TrendLimit/2 {
		p.logger.Warn("crawl came up short, pulling headlines", "got", len(trendSet))
		trendSet = append(trendSet, p.agg.Headlines(ctx, p.cfg.TrendLimit-len(trendSet))...)
		trendSet = trends.Dedupe(trendSet)
	}
	if len(trendSet) == 0 {
		return CycleResult{}, fmt.Errorf("no trends available from any source")
	}

	result := CycleResult{TrendsSeen: len(trendSet)}
	for start := 0; start < len(trendSet); start += p.cfg.BatchSize {
		end := start + p.cfg.BatchSize
		if end > len(trendSet) {
			end = len(trendSet)
		}
		p.runBatch(ctx, trendSet[start:end], &result)

		if end < len(trendSet) {
			// Throttle external API load between batches.
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(p.cfg.BatchDelay):
			}
		}
	}

	p.logger.Info("cycle complete",
		"trends", result.TrendsSeen,
		"generated", result.Generated,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"tokens", result.TokensUsed,
	)
	return result, nil
}

type trendOutcome struct {
	generated  bool
	skipped    bool
	tokensUsed int
	cost       float64
	err        error
}

// runBatch processes one batch of trends concurrently, fan-out/join.
func (p *Pipeline) runBatch(ctx context.Context, batch []sources.Trend, result *CycleResult) {
	ch := make(chan trendOutcome, len(batch))
	for _, t := range batch {
		go func(trend sources.Trend) {
			ch <- p.processTrend(ctx, trend)
		}(t)
	}

	for range batch {
		out := <-ch
		result.TokensUsed += out.tokensUsed
		result.Cost += out.cost
		switch {
		case out.err != nil:
			result.Failed++
		case out.skipped:
			result.Skipped++
		case out.generated:
			result.Generated++
		}
	}
}

func (p *Pipeline) processTrend(ctx context.Context, trend sources.Trend) (out trendOutcome) {
	// Dedup gate: query-before-insert on title or canonical source URL.
	// Not transactional; the slug unique index is the last line of defense.
	exists, err := p.store.ArticleExists(ctx, trend.Title, trend.URL)
	if err != nil {
		p.logger.Error("dedup check failed", "title", trend.Title, "error", err)
		return trendOutcome{err: err}
	}
	if exists {
		p.logger.Debug("trend already published, skipping", "title", trend.Title)
		return trendOutcome{skipped: true}
	}

	genRes := p.gen.Generate(ctx, trend)
	out.tokensUsed = genRes.TokensUsed
	out.cost = genRes.Cost
	draft := genRes.Draft

	topic := draft.Category
	if topic == "" {
		topic = trend.Category
	}
	thumbs := p.resolver.ImagesForTopic(ctx, topic, 1)

	article := &store.Article{
		ID:          uuid.NewString(),
		Title:       draft.Title,
		Excerpt:     draft.Excerpt,
		Content:     draft.Content,
		Category:    draft.Category,
		Tags:        draft.Tags,
		Thumbnail:   thumbs[0],
		Author:      p.cfg.Author,
		ReadMinutes: draft.ReadMinutes,
		Status:      "published",
		Source: store.TrendSource{
			SourceName:  trend.Source,
			SourceURL:   trend.URL,
			PublishedAt: trend.PublishedAt,
			CrawledAt:   time.Now().UTC(),
		},
	}

	if err := p.saveWithUniqueSlug(ctx, article, draft.Slug); err != nil {
		p.logger.Error("article save failed", "title", draft.Title, "error", err)
		return trendOutcome{err: err, tokensUsed: out.tokensUsed, cost: out.cost}
	}

	p.logger.Info("article published",
		"slug", article.Slug,
		"category", article.Category,
		"fallback", genRes.Fallback,
		"placeholder_thumb", article.Thumbnail.IsPlaceholder,
	)
	out.generated = true
	return out
}

// saveWithUniqueSlug assigns base, then base-1, base-2, ... until the insert
// lands. The unique index turns check-then-insert races into another retry
// instead of a duplicate.
func (p *Pipeline) saveWithUniqueSlug(ctx context.Context, article *store.Article, base string) error {
	if base == "" {
		base = "article"
	}

	candidate := base
	for n := 1; ; n++ {
		taken, err := p.store.SlugExists(ctx, candidate)
		if err != nil {
			return err
		}
		if !taken {
			article.Slug = candidate
			err := p.store.SaveArticle(ctx, article)
			if err == nil {
				return nil
			}
			if !errors.Is(err, store.ErrSlugTaken) {
				return err
			}
			// Lost a race for this slug; keep counting.
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
