// Package sources defines the trend source interface and implementations
// for pulling candidate news items from external providers.
package sources

import (
	"context"
	"time"
)

// DefaultScore is the display weight attached to every fetched trend.
// It is informational only and never used for ranking.
const DefaultScore = 0.5

// Trend is a candidate news item considered for article generation.
// Records are immutable once produced and are not persisted standalone.
type Trend struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	ImageURL    string    `json:"image_url,omitempty"`
	Source      string    `json:"source"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags,omitempty"`
	Score       float64   `json:"score"`
}

// Source is the interface all trend providers implement.
//
// Both operations fail soft: missing credentials, network errors, and
// non-success provider responses all yield an empty slice, never an error.
// Callers are responsible for resilience via fallback sources.
type Source interface {
	// Name returns the human-readable name of the source.
	Name() string

	// Search retrieves trends matching a query.
	Search(ctx context.Context, query string, limit int) []Trend

	// Headlines retrieves the provider's current top items.
	Headlines(ctx context.Context, limit int) []Trend
}

// ConnStatus is the result of a connectivity probe.
type ConnStatus struct {
	Success   bool   `json:"success"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
	Status    int    `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ConnectionTester is implemented by sources that support health probes.
type ConnectionTester interface {
	TestConnection(ctx context.Context) ConnStatus
}

// Registry holds all configured trend sources.
type Registry struct {
	sources []Source
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a source to the registry.
func (r *Registry) Register(s Source) {
	r.sources = append(r.sources, s)
}

// Sources returns the registered sources in registration order.
func (r *Registry) Sources() []Source {
	return r.sources
}

// SearchAll queries every registered source concurrently and returns the
// concatenated results in registration order, plus a per-source count.
// Sources that return nothing simply contribute zero records.
func (r *Registry) SearchAll(ctx context.Context, query string, limit int) ([]Trend, map[string]int) {
	return r.fanOut(func(s Source) []Trend { return s.Search(ctx, query, limit) })
}

// HeadlinesAll fetches top items from every registered source concurrently.
func (r *Registry) HeadlinesAll(ctx context.Context, limit int) ([]Trend, map[string]int) {
	return r.fanOut(func(s Source) []Trend { return s.Headlines(ctx, limit) })
}

func (r *Registry) fanOut(fetch func(Source) []Trend) ([]Trend, map[string]int) {
	type result struct {
		idx    int
		trends []Trend
	}

	ch := make(chan result, len(r.sources))
	for i, s := range r.sources {
		go func(idx int, src Source) {
			ch <- result{idx: idx, trends: fetch(src)}
		}(i, s)
	}

	byIdx := make([][]Trend, len(r.sources))
	for range r.sources {
		res := <-ch
		byIdx[res.idx] = res.trends
	}

	var all []Trend
	counts := make(map[string]int)
	for i, trends := range byIdx {
		all = append(all, trends...)
		counts[r.sources[i].Name()] = len(trends)
	}
	return all, counts
}
