package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func (s *Server) handleListArticles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit", 20)
		if limit > 100 {
			limit = 100
		}
		offset := queryInt(r, "offset", 0)

		articles, err := s.store.List(r.Context(), limit, offset)
		if err != nil {
			s.logger.Error("listing articles failed", "error", err)
			respondError(w, http.StatusInternalServerError, "could not list articles")
			return
		}

		total, err := s.store.Count(r.Context())
		if err != nil {
			s.logger.Error("counting articles failed", "error", err)
			respondError(w, http.StatusInternalServerError, "could not list articles")
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"articles": articles,
			"total":    total,
			"limit":    limit,
			"offset":   offset,
		})
	}
}

func (s *Server) handleGetArticle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")
		article, err := s.store.GetBySlug(r.Context(), slug)
		if err != nil {
			s.logger.Error("fetching article failed", "slug", slug, "error", err)
			respondError(w, http.StatusInternalServerError, "could not fetch article")
			return
		}
		if article == nil {
			respondError(w, http.StatusNotFound, "article not found")
			return
		}
		respondJSON(w, http.StatusOK, article)
	}
}

// handleCounter increments one of the interaction counters for an article.
func (s *Server) handleCounter(column string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")
		if err := s.store.IncrementCounter(r.Context(), slug, column); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondError(w, http.StatusNotFound, "article not found")
				return
			}
			s.logger.Error("incrementing counter failed", "slug", slug, "counter", column, "error", err)
			respondError(w, http.StatusInternalServerError, "could not update counter")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
