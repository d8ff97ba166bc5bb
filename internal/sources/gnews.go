package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const gnewsDefaultBase = "https://gnews.io/api/v4"

// GNewsSource wraps the GNews search/top-headlines API.
type GNewsSource struct {
	apiKey   string
	base     string
	language string
	category string
	client   *http.Client
	logger   *slog.Logger
}

// NewGNewsSource creates a GNews-backed trend source. An empty apiKey is
// allowed; every call then degrades to an empty result.
func NewGNewsSource(apiKey, baseURL, language, category string) *GNewsSource {
	if baseURL == "" {
		baseURL = gnewsDefaultBase
	}
	if language == "" {
		language = "en"
	}
	if category == "" {
		category = "Technology"
	}
	return &GNewsSource{
		apiKey:   apiKey,
		base:     baseURL,
		language: language,
		category: category,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   slog.Default(),
	}
}

func (g *GNewsSource) Name() string { return "gnews" }

// Search queries the news-search endpoint. Fails soft.
func (g *GNewsSource) Search(ctx context.Context, query string, limit int) []Trend {
	if g.apiKey == "" {
		g.logger.Debug("news API key not configured, skipping search")
		return nil
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("max", fmt.Sprintf("%d", limit))
	q.Set("lang", g.language)
	q.Set("token", g.apiKey)

	return g.fetch(ctx, g.base+"/search?"+q.Encode())
}

// Headlines queries the top-headlines endpoint. Fails soft.
func (g *GNewsSource) Headlines(ctx context.Context, limit int) []Trend {
	if g.apiKey == "" {
		g.logger.Debug("news API key not configured, skipping headlines")
		return nil
	}

	q := url.Values{}
	q.Set("max", fmt.Sprintf("%d", limit))
	q.Set("lang", g.language)
	q.Set("token", g.apiKey)

	return g.fetch(ctx, g.base+"/top-headlines?"+q.Encode())
}

type gnewsResponse struct {
	TotalArticles int            `json:"totalArticles"`
	Articles      []gnewsArticle `json:"articles"`
}

type gnewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

func (g *GNewsSource) fetch(ctx context.Context, endpoint string) []Trend {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		g.logger.Warn("news request build failed", "error", err)
		return nil
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("news request failed", "error", err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		g.logger.Warn("news response read failed", "error", err)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("news provider returned error", "status", resp.StatusCode)
		return nil
	}

	var parsed gnewsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		g.logger.Warn("news response unmarshal failed", "error", err)
		return nil
	}

	trends := make([]Trend, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		if a.Title == "" || a.URL == "" {
			continue
		}
		publishedAt, _ := time.Parse(time.RFC3339, a.PublishedAt)
		trends = append(trends, Trend{
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         a.URL,
			PublishedAt: publishedAt,
			ImageURL:    a.Image,
			Source:      a.Source.Name,
			Category:    g.category,
			Score:       DefaultScore,
		})
	}
	return trends
}

// TestConnection probes the provider with a one-item search. It distinguishes
// network failures from HTTP error responses via the Status field.
func (g *GNewsSource) TestConnection(ctx context.Context) ConnStatus {
	if g.apiKey == "" {
		return ConnStatus{Success: false, Error: "no API key configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q := url.Values{}
	q.Set("q", "test")
	q.Set("max", "1")
	q.Set("token", g.apiKey)

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, "GET", g.base+"/search?"+q.Encode(), nil)
	if err != nil {
		return ConnStatus{Success: false, Error: err.Error()}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return ConnStatus{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	status := ConnStatus{
		LatencyMs: time.Since(start).Milliseconds(),
		Status:    resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		status.Error = fmt.Sprintf("provider returned %d", resp.StatusCode)
		return status
	}
	status.Success = true
	return status
}
