package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gnewsBody = `{
  "totalArticles": 2,
  "articles": [
    {
      "title": "AI Breakthrough",
      "description": "A major step forward",
      "content": "Full body",
      "url": "https://example.com/ai",
      "image": "https://example.com/ai.jpg",
      "publishedAt": "2026-08-01T09:00:00Z",
      "source": {"name": "Example Wire", "url": "https://example.com"}
    },
    {
      "title": "",
      "url": "https://example.com/untitled"
    }
  ]
}`

func TestGNewsSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "ai", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("max"))
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		w.Write([]byte(gnewsBody))
	}))
	defer srv.Close()

	src := NewGNewsSource("secret", srv.URL, "en", "Technology")
	trends := src.Search(context.Background(), "ai", 5)

	require.Len(t, trends, 1, "untitled articles are dropped")
	assert.Equal(t, "AI Breakthrough", trends[0].Title)
	assert.Equal(t, "Example Wire", trends[0].Source)
	assert.Equal(t, "Technology", trends[0].Category)
	assert.Equal(t, DefaultScore, trends[0].Score)
	assert.Equal(t, 2026, trends[0].PublishedAt.Year())
}

func TestGNewsSearch_NoCredentials(t *testing.T) {
	src := NewGNewsSource("", "", "en", "")
	assert.Empty(t, src.Search(context.Background(), "ai", 5))
	assert.Empty(t, src.Headlines(context.Background(), 5))
}

func TestGNewsSearch_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":["quota exceeded"]}`, http.StatusForbidden)
	}))
	defer srv.Close()

	src := NewGNewsSource("secret", srv.URL, "en", "")
	assert.Empty(t, src.Search(context.Background(), "ai", 5), "non-2xx degrades to empty")
}

func TestGNewsSearch_NetworkError(t *testing.T) {
	src := NewGNewsSource("secret", "http://127.0.0.1:1", "en", "")
	assert.Empty(t, src.Search(context.Background(), "ai", 5))
}

func TestGNewsTestConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalArticles":0,"articles":[]}`))
	}))
	defer srv.Close()

	src := NewGNewsSource("secret", srv.URL, "en", "")
	status := src.TestConnection(context.Background())
	assert.True(t, status.Success)
	assert.Equal(t, http.StatusOK, status.Status)
}

func TestGNewsTestConnection_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	src := NewGNewsSource("bad", srv.URL, "en", "")
	status := src.TestConnection(context.Background())
	assert.False(t, status.Success)
	assert.Equal(t, http.StatusUnauthorized, status.Status, "HTTP errors carry a status, network errors do not")
}

func TestGNewsTestConnection_NoKey(t *testing.T) {
	src := NewGNewsSource("", "", "en", "")
	status := src.TestConnection(context.Background())
	assert.False(t, status.Success)
	assert.NotEmpty(t, status.Error)
}

func TestRegistrySearchAll_OrderAndCounts(t *testing.T) {
	reg := NewRegistry()
	reg.Register(stubSource{name: "a", trends: []Trend{{Title: "first"}, {Title: "second"}}})
	reg.Register(stubSource{name: "b", trends: []Trend{{Title: "third"}}})
	reg.Register(stubSource{name: "c"})

	all, counts := reg.SearchAll(context.Background(), "x", 10)

	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Title, "concatenation preserves registration order")
	assert.Equal(t, "third", all[2].Title)
	assert.Equal(t, map[string]int{"a": 2, "b": 1, "c": 0}, counts)
}

type stubSource struct {
	name   string
	trends []Trend
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Search(ctx context.Context, query string, limit int) []Trend {
	return s.trends
}

func (s stubSource) Headlines(ctx context.Context, limit int) []Trend {
	return s.trends
}
