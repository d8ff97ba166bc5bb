package api

import (
	"context"
	"net/http"
	"time"
)

type botStatusResponse struct {
	IsRunning bool       `json:"isRunning"`
	Stats     statsBlock `json:"stats"`
	NextRun   *time.Time `json:"nextRunTimestamp,omitempty"`
}

type statsBlock struct {
	ArticlesGenerated  int        `json:"articlesGenerated"`
	Errors             int        `json:"errors"`
	SuccessRatePercent float64    `json:"successRatePercent"`
	LastRun            *time.Time `json:"lastRun,omitempty"`
}

func (s *Server) handleBotStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := s.sched.Stats()
		respondJSON(w, http.StatusOK, botStatusResponse{
			IsRunning: stats.IsRunning,
			Stats: statsBlock{
				ArticlesGenerated:  stats.ArticlesGenerated,
				Errors:             stats.Errors,
				SuccessRatePercent: stats.SuccessRatePercent,
				LastRun:            stats.LastRun,
			},
			NextRun: stats.NextRun,
		})
	}
}

func (s *Server) handleBotStart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sched.Start(context.Background())
		respondJSON(w, http.StatusOK, map[string]string{"status": "started"})
	}
}

func (s *Server) handleBotStop() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sched.Stop()
		respondJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
	}
}

// handleBotTrigger kicks off a single cycle without waiting for it.
func (s *Server) handleBotTrigger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			s.sched.TriggerNow(ctx)
		}()
		respondJSON(w, http.StatusAccepted, map[string]string{"status": "triggered"})
	}
}
