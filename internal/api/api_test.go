package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trendwise/trendbot/internal/pipeline"
	"github.com/trendwise/trendbot/internal/scheduler"
	"github.com/trendwise/trendbot/internal/sources"
	"github.com/trendwise/trendbot/internal/store"
)

type noopRunner struct{}

func (noopRunner) RunCycle(ctx context.Context) (pipeline.CycleResult, error) {
	return pipeline.CycleResult{Generated: 1}, nil
}

func newTestServer(t *testing.T, testers map[string]sources.ConnectionTester) (*Server, *store.Store) {
	t.Helper()

	st, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	sched := scheduler.New(noopRunner{}, time.Hour)
	t.Cleanup(sched.Stop)

	return NewServer(st, sched, testers, "test-secret", string(hash)), st
}

func seedArticle(t *testing.T, st *store.Store, slug, title string) {
	t.Helper()
	err := st.SaveArticle(context.Background(), &store.Article{
		ID:       slug + "-id",
		Title:    title,
		Slug:     slug,
		Excerpt:  "An excerpt.",
		Content:  "Body text.",
		Category: "Technology",
		Author:   "TrendBot",
		Status:   "published",
	})
	require.NoError(t, err)
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := GenerateToken([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestListArticles(t *testing.T) {
	srv, st := newTestServer(t, nil)
	seedArticle(t, st, "first-post", "First Post")
	seedArticle(t, st, "second-post", "Second Post")

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/api/articles", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Articles []store.Article `json:"articles"`
		Total    int             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Len(t, body.Articles, 2)
}

func TestGetArticle(t *testing.T) {
	srv, st := newTestServer(t, nil)
	seedArticle(t, st, "hello-world", "Hello World")

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/api/articles/hello-world", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var article store.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &article))
	assert.Equal(t, "Hello World", article.Title)

	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/api/articles/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCounters(t *testing.T) {
	srv, st := newTestServer(t, nil)
	seedArticle(t, st, "counted", "Counted")

	for _, action := range []string{"view", "like", "save"} {
		rec := httptest.NewRecorder()
		srv.Routes().ServeHTTP(rec, httptest.NewRequest("POST", "/api/articles/counted/"+action, nil))
		assert.Equal(t, http.StatusOK, rec.Code, action)
	}

	article, err := st.GetBySlug(context.Background(), "counted")
	require.NoError(t, err)
	assert.Equal(t, 1, article.Views)
	assert.Equal(t, 1, article.Likes)
	assert.Equal(t, 1, article.Saves)

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("POST", "/api/articles/missing/view", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTokenEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	body, _ := json.Marshal(map[string]string{"password": "hunter2"})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("POST", "/api/auth/token", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])

	body, _ = json.Marshal(map[string]string{"password": "wrong"})
	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("POST", "/api/auth/token", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBotStatusRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/api/bot/status", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest("GET", "/api/bot/status", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBotLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	token := adminToken(t)

	do := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.Routes().ServeHTTP(rec, req)
		return rec
	}

	rec := do("POST", "/api/bot/start")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do("GET", "/api/bot/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var status botStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.IsRunning)

	rec = do("POST", "/api/bot/stop")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do("GET", "/api/bot/status")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.IsRunning)
}

type fakeTester struct {
	status sources.ConnStatus
}

func (f fakeTester) TestConnection(ctx context.Context) sources.ConnStatus {
	return f.status
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, map[string]sources.ConnectionTester{
		"gnews": fakeTester{status: sources.ConnStatus{Success: true, LatencyMs: 12}},
	})

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Sources["gnews"].Success)
}

func TestHealthDegraded(t *testing.T) {
	srv, _ := newTestServer(t, map[string]sources.ConnectionTester{
		"gnews": fakeTester{status: sources.ConnStatus{Success: false, Error: "timeout"}},
	})

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
}

func TestPlaceholderImage(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/images/placeholder/technology?w=320&h=180", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte("\x89PNG"), rec.Body.Bytes()[:4])
}
