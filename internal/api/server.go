// Package api serves the read-side stats endpoints over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/zedalytics/internal/models"
	"github.com/yourusername/zedalytics/internal/stats"
)

// Server exposes horse and stable performance stats
type Server struct {
	stats  *stats.Service
	logger *logrus.Logger
	server *http.Server
}

// NewServer creates the stats API server
func NewServer(statsSvc *stats.Service, port int, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}

	s := &Server{
		stats:  statsSvc,
		logger: logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/horses/{id}/stats", s.handleHorseStats).Methods(http.MethodGet)
	r.HandleFunc("/api/stables/{userId}/stats", s.handleStableStats).Methods(http.MethodGet)
	r.HandleFunc("/api/horses/top", s.handleTopHorses).Methods(http.MethodGet)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start serves requests until the server is shut down
func (s *Server) Start() error {
	s.logger.WithField("addr", s.server.Addr).Info("Stats API server starting")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHorseStats(w http.ResponseWriter, r *http.Request) {
	horseID := mux.Vars(r)["id"]

	result, err := s.stats.HorseStats(r.Context(), horseID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStableStats(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	result, err := s.stats.StableStats(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTopHorses(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	minRaces := queryInt(r, "min_races", 5)
	if limit > 100 {
		limit = 100
	}

	result, err := s.stats.TopHorses(r.Context(), minRaces, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if result == nil {
		result = []*stats.HorseStats{}
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrNotFound) {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	s.logger.WithError(err).Error("Stats query failed")
	s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
