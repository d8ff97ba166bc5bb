// Package generator turns a trend into a structured article draft, using a
// hosted LLM when configured and a deterministic template otherwise.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/trendwise/trendbot/internal/sources"
	"github.com/trendwise/trendbot/pkg/llm"
	"github.com/trendwise/trendbot/pkg/scraper"
)

// Draft is a generated article before persistence.
type Draft struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Excerpt     string   `json:"excerpt"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
	ReadMinutes int      `json:"read_minutes"`
}

// Result carries a draft plus generation metadata.
type Result struct {
	Draft      Draft
	Fallback   bool // template path, not model output
	TokensUsed int
	Cost       float64
}

// Generator produces article drafts from trends.
type Generator struct {
	client  llm.Client // nil when no credentials are configured
	fetcher scraper.Fetcher
	logger  *slog.Logger
}

// New creates a Generator. client may be nil, in which case every draft
// comes from the template fallback. fetcher may be nil to disable
// content enrichment.
func New(client llm.Client, fetcher scraper.Fetcher) *Generator {
	return &Generator{
		client:  client,
		fetcher: fetcher,
		logger:  slog.Default(),
	}
}

// enrichThreshold is the content length below which the trend's URL is
// fetched for more context before prompting.
const enrichThreshold = 280

// Generate produces a draft for the trend. It is total: every failure on
// the model path routes to the deterministic template, and the returned
// draft is always structurally valid.
func (g *Generator) Generate(ctx context.Context, trend sources.Trend) Result {
	if g.client == nil {
		return Result{Draft: g.fallbackDraft(trend), Fallback: true}
	}

	trend = g.enrich(ctx, trend)

	resp, err := g.client.Generate(ctx, &llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: "user", Content: buildPrompt(trend)}},
		Temperature: 0.7,
		JSONMode:    true,
	})
	if err != nil {
		g.logger.Warn("draft generation failed, using template", "title", trend.Title, "error", err)
		return Result{Draft: g.fallbackDraft(trend), Fallback: true}
	}

	draft, ok := ParseDraft(resp.Content)
	if !ok {
		g.logger.Warn("model output did not match schema, using template", "title", trend.Title)
		return Result{
			Draft:      g.fallbackDraft(trend),
			Fallback:   true,
			TokensUsed: resp.TokensIn + resp.TokensOut,
			Cost:       resp.Cost,
		}
	}

	draft.Category = categoryOrDefault(trend.Category)
	draft.Slug = Slugify(draft.Title)
	if len(draft.Tags) == 0 {
		draft.Tags = defaultTags(trend)
	}
	return Result{
		Draft:      draft,
		TokensUsed: resp.TokensIn + resp.TokensOut,
		Cost:       resp.Cost,
	}
}

// enrich fetches the trend's source page when the feed carried only a
// headline. Failure is soft; the trend passes through unchanged.
func (g *Generator) enrich(ctx context.Context, trend sources.Trend) sources.Trend {
	if g.fetcher == nil || trend.URL == "" || len(trend.Content) >= enrichThreshold {
		return trend
	}

	res, err := g.fetcher.Fetch(ctx, trend.URL, nil)
	if err != nil || res.StatusCode != 200 {
		g.logger.Debug("trend enrichment skipped", "url", trend.URL, "error", err)
		return trend
	}

	text := res.CleanText
	if len(text) > 4000 {
		text = text[:4000]
	}
	if len(text) > len(trend.Content) {
		trend.Content = text
	}
	return trend
}

const systemPrompt = `You are a senior editor for TrendWise, a technology and culture publication.
Given a news trend, write an original, well-structured article in Markdown.
Respond with a single JSON object, no prose around it:
{
  "title": "engaging article title",
  "excerpt": "1-2 sentence hook, max 240 characters",
  "content": "full Markdown article body with ## section headings",
  "tags": ["3-6", "lowercase", "tags"],
  "readTime": <estimated minutes as integer>
}`

func buildPrompt(trend sources.Trend) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Trend: %s\n", trend.Title)
	fmt.Fprintf(&sb, "Category: %s\n", categoryOrDefault(trend.Category))
	if trend.Description != "" {
		fmt.Fprintf(&sb, "Summary: %s\n", trend.Description)
	}
	if trend.URL != "" {
		fmt.Fprintf(&sb, "Source: %s (%s)\n", trend.Source, trend.URL)
	}
	if trend.Content != "" {
		content := trend.Content
		if len(content) > 4000 {
			content = content[:4000]
		}
		fmt.Fprintf(&sb, "\nSource material:\n%s\n", content)
	}
	sb.WriteString("\nWrite the article now.")
	return sb.String()
}

// FallbackTitle is the deterministic title used on the template path.
func FallbackTitle(title, category string) string {
	return fmt.Sprintf("%s: Transforming %s in %d",
		topicOrDefault(title), categoryOrDefault(category), time.Now().Year())
}

// fallbackDraft builds a complete draft from nothing but the trend's title
// and category. It never fails, including on empty input.
func (g *Generator) fallbackDraft(trend sources.Trend) Draft {
	topic := topicOrDefault(trend.Title)
	category := categoryOrDefault(trend.Category)
	title := FallbackTitle(trend.Title, trend.Category)

	content := fmt.Sprintf(`## What's Happening With %[1]s

%[1]s has been gaining significant attention across the %[2]s landscape. Analysts, practitioners, and everyday readers are all watching closely as the story develops.

## Why It Matters

Developments like %[1]s rarely stay contained to one niche. The ripple effects reach product roadmaps, budgets, and the way teams plan for the next quarter. Understanding the context now pays off later.

## The Bigger Picture in %[2]s

The %[2]s space moves quickly, and %[1]s is the latest reminder of that pace. Established players are re-evaluating their positions while newcomers see an opening worth pursuing.

## What to Watch Next

Expect follow-up announcements, sharper analysis, and real-world results over the coming weeks. We will keep tracking %[1]s as the picture becomes clearer.
`, topic, category)

	excerpt := fmt.Sprintf("%s is making waves in %s. Here's what's happening and why it matters.", topic, category)

	return Draft{
		Title:       title,
		Slug:        Slugify(title),
		Excerpt:     excerpt,
		Content:     content,
		Tags:        defaultTags(trend),
		Category:    category,
		ReadMinutes: EstimateReadMinutes(content),
	}
}

// EstimateReadMinutes assumes a 200 words-per-minute reader.
func EstimateReadMinutes(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

func defaultTags(trend sources.Trend) []string {
	tags := []string{strings.ToLower(categoryOrDefault(trend.Category))}
	for _, t := range trend.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && t != tags[0] && len(tags) < 6 {
			tags = append(tags, t)
		}
	}
	if len(tags) < 2 {
		tags = append(tags, "trending")
	}
	return tags
}

func topicOrDefault(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return "Today's Top Story"
}

func categoryOrDefault(category string) string {
	if c := strings.TrimSpace(category); c != "" {
		return c
	}
	return "Technology"
}
