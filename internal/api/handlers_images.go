package api

import (
	"net/http"

	"github.com/trendwise/trendbot/internal/images"
)

// handlePlaceholderImage renders a branded placeholder PNG for a topic.
func (s *Server) handlePlaceholderImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := r.PathValue("topic")

		width := queryInt(r, "w", 1200)
		height := queryInt(r, "h", 800)
		if width < 16 || width > 4096 {
			width = 1200
		}
		if height < 16 || height > 4096 {
			height = 800
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		if err := images.RenderPlaceholder(w, topic, width, height); err != nil {
			s.logger.Error("rendering placeholder failed", "topic", topic, "error", err)
		}
	}
}
