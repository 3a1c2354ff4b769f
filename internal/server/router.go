package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(server *Server, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", server.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/runs", server.HandleRunsList)
		r.Get("/runs/latest", server.HandleRunsLatest)
		r.Get("/runs/{key}", server.HandleRunGet)
		r.Post("/analyze", server.HandleAnalyze)
	})

	return r
}

func runKeyParam(r *http.Request) string {
	return chi.URLParam(r, "key")
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}
