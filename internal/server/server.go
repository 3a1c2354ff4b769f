// Package server exposes stored run reports and on-demand analysis as a JSON
// data feed for dashboards.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielolaszy/opsintel/internal/analyzer"
	"github.com/danielolaszy/opsintel/internal/store"
)

const (
	maxBodyBytes    = 10 << 20
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	store  store.Store
	logger *slog.Logger
}

func NewServer(s store.Store, logger *slog.Logger) *Server {
	return &Server{
		store:  s,
		logger: logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type runsResponse struct {
	Runs []store.Object `json:"runs"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// writeRaw sends a stored report body unchanged.
func (s *Server) writeRaw(w http.ResponseWriter, key string, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Run-Key", key)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.Error("failed to write run body", "key", key, "error", err)
	}
}

func (s *Server) handleStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrInvalidKey):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("store request failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (s *Server) HandleRunsList(w http.ResponseWriter, r *http.Request) {
	objects, err := s.store.List(r.Context())
	if err != nil {
		s.handleStoreError(w, err)
		return
	}
	if objects == nil {
		objects = []store.Object{}
	}
	s.writeJSON(w, http.StatusOK, runsResponse{Runs: objects})
}

func (s *Server) HandleRunsLatest(w http.ResponseWriter, r *http.Request) {
	obj, body, err := store.Latest(r.Context(), s.store)
	if err != nil {
		s.handleStoreError(w, err)
		return
	}
	s.writeRaw(w, obj.Key, body)
}

func (s *Server) HandleRunGet(w http.ResponseWriter, r *http.Request) {
	key := runKeyParam(r)
	body, err := s.store.Get(r.Context(), key)
	if err != nil {
		s.handleStoreError(w, err)
		return
	}
	s.writeRaw(w, key, body)
}

func (s *Server) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	text, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		s.logger.Warn("failed to read request body", "error", err)
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
		return
	}

	outcome := analyzer.Evaluate(analyzer.Raw(text))
	if !outcome.OK() {
		s.writeJSON(w, http.StatusBadRequest, outcome)
		return
	}
	s.writeJSON(w, http.StatusOK, outcome)
}

// Serve runs handler on addr until ctx is cancelled, then drains in-flight
// requests.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", "error", err)
		return err
	}

	logger.Info("server exited")
	return nil
}
