package sources

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSSSource fetches trends from any RSS/Atom feed.
type RSSSource struct {
	name     string
	url      string
	category string
	parser   *gofeed.Parser
	logger   *slog.Logger
}

// NewRSSSource creates an RSS-backed trend source.
func NewRSSSource(name, feedURL, category string) *RSSSource {
	parser := gofeed.NewParser()
	parser.UserAgent = "TrendBot/1.0 (compatible; Bot)"
	if category == "" {
		category = "Technology"
	}
	return &RSSSource{
		name:     name,
		url:      feedURL,
		category: category,
		parser:   parser,
		logger:   slog.Default(),
	}
}

func (r *RSSSource) Name() string { return r.name }

// Search filters the feed's items by a case-insensitive match on the query.
// Fails soft.
func (r *RSSSource) Search(ctx context.Context, query string, limit int) []Trend {
	items := r.fetch(ctx)
	query = strings.ToLower(query)

	var trends []Trend
	for _, t := range items {
		if len(trends) >= limit {
			break
		}
		if query == "" ||
			strings.Contains(strings.ToLower(t.Title), query) ||
			strings.Contains(strings.ToLower(t.Description), query) {
			trends = append(trends, t)
		}
	}
	return trends
}

// Headlines returns the newest feed items. Fails soft.
func (r *RSSSource) Headlines(ctx context.Context, limit int) []Trend {
	items := r.fetch(ctx)
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func (r *RSSSource) fetch(ctx context.Context) []Trend {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	feed, err := r.parser.ParseURLWithContext(r.url, ctx)
	if err != nil {
		r.logger.Warn("rss fetch failed", "feed", r.name, "error", err)
		return nil
	}

	trends := make([]Trend, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}

		var publishedAt time.Time
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		}

		var imageURL string
		if item.Image != nil {
			imageURL = item.Image.URL
		}

		trends = append(trends, Trend{
			Title:       item.Title,
			Description: item.Description,
			Content:     item.Content,
			URL:         item.Link,
			PublishedAt: publishedAt,
			ImageURL:    imageURL,
			Source:      r.name,
			Category:    r.category,
			Tags:        item.Categories,
			Score:       DefaultScore,
		})
	}
	return trends
}
