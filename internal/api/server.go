// Package api provides the operator-facing REST API: article reads,
// interaction counters, bot control, and health.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/trendwise/trendbot/internal/scheduler"
	"github.com/trendwise/trendbot/internal/sources"
	"github.com/trendwise/trendbot/internal/store"
)

// Server holds the dependencies for the API.
type Server struct {
	store     *store.Store
	sched     *scheduler.Scheduler
	testers   map[string]sources.ConnectionTester
	jwtSecret []byte
	adminHash string
	logger    *slog.Logger
}

// NewServer creates a new API Server instance. testers maps source names to
// their connectivity probes for the health endpoint.
func NewServer(st *store.Store, sched *scheduler.Scheduler, testers map[string]sources.ConnectionTester, jwtSecret, adminHash string) *Server {
	return &Server{
		store:     st,
		sched:     sched,
		testers:   testers,
		jwtSecret: []byte(jwtSecret),
		adminHash: adminHash,
		logger:    slog.Default(),
	}
}

// Routes returns the configured http.Handler for the API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /api/articles", s.handleListArticles())
	mux.HandleFunc("GET /api/articles/{slug}", s.handleGetArticle())
	mux.HandleFunc("POST /api/articles/{slug}/view", s.handleCounter("views"))
	mux.HandleFunc("POST /api/articles/{slug}/like", s.handleCounter("likes"))
	mux.HandleFunc("POST /api/articles/{slug}/save", s.handleCounter("saves"))
	mux.HandleFunc("GET /api/health", s.handleHealth())
	mux.HandleFunc("GET /images/placeholder/{topic}", s.handlePlaceholderImage())
	mux.HandleFunc("POST /api/auth/token", s.handleToken())

	// Bot control (admin JWT required)
	mux.Handle("GET /api/bot/status", s.requireAdmin(http.HandlerFunc(s.handleBotStatus())))
	mux.Handle("POST /api/bot/start", s.requireAdmin(http.HandlerFunc(s.handleBotStart())))
	mux.Handle("POST /api/bot/stop", s.requireAdmin(http.HandlerFunc(s.handleBotStop())))
	mux.Handle("POST /api/bot/trigger", s.requireAdmin(http.HandlerFunc(s.handleBotTrigger())))

	return mux
}

// --- Helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
