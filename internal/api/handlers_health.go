package api

import (
	"net/http"

	"github.com/trendwise/trendbot/internal/sources"
)

type healthResponse struct {
	Status  string                        `json:"status"`
	Sources map[string]sources.ConnStatus `json:"sources,omitempty"`
}

// handleHealth probes each registered source's connectivity. Source
// failures degrade the status but never fail the endpoint itself.
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}

		if len(s.testers) > 0 {
			resp.Sources = make(map[string]sources.ConnStatus, len(s.testers))
			for name, tester := range s.testers {
				status := tester.TestConnection(r.Context())
				resp.Sources[name] = status
				if !status.Success {
					resp.Status = "degraded"
				}
			}
		}

		respondJSON(w, http.StatusOK, resp)
	}
}
