// Package api exposes the scoring engine over HTTP: single and batch
// prediction, running statistics (snapshot and websocket stream), health,
// and model info.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"fraudscore/internal/artifact"
	"fraudscore/internal/scoring"
	"fraudscore/internal/txn"
)

// Server serves the prediction API for one loaded artifact.
type Server struct {
	engine         *scoring.Engine
	art            *artifact.Artifact
	streamInterval time.Duration
	upgrader       websocket.Upgrader
	server         *http.Server
}

// NewServer wires the HTTP routes around an engine and its loaded artifact.
func NewServer(engine *scoring.Engine, art *artifact.Artifact, port int, streamInterval time.Duration) *Server {
	s := &Server{
		engine:         engine,
		art:            art,
		streamInterval: streamInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/predict", s.handlePredict)
	mux.HandleFunc("/predict/batch", s.handlePredictBatch)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/stats/stream", s.handleStatsStream)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/model/info", s.handleModelInfo)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the underlying HTTP handler (used by tests).
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), nil)
		return
	}

	tx, err := req.toTransaction()
	if err != nil {
		writeValidationError(w, err)
		return
	}

	p, err := s.engine.ScoreOne(tx)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := s.engine.ScoreBatch(r.Body)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"predictions": result.Predictions,
		"skipped":     result.Skipped,
		"total":       len(result.Predictions),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Statistics())
}

// handleStatsStream upgrades to a websocket and pushes statistics
// snapshots on a fixed interval until the client goes away.
func (s *Server) handleStatsStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	for {
		if err := conn.WriteJSON(s.engine.Statistics()); err != nil {
			return
		}
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "healthy",
		"model_loaded":  true,
		"model_version": s.art.Version,
		"threshold":     s.engine.Threshold(),
	})
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version":    s.art.Version,
		"run_id":     s.art.RunID,
		"trained_at": s.art.TrainedAt,
		"trees":      len(s.art.Forest.Trees),
		"max_depth":  s.art.Forest.Params.MaxDepth,
		"seed":       s.art.Forest.Params.Seed,
		"threshold":  s.engine.Threshold(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string, fields []string) {
	writeJSON(w, status, map[string]any{
		"error":  msg,
		"fields": fields,
	})
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verr *txn.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Msg, verr.Fields)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error(), nil)
}
