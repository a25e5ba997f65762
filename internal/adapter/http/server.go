// Package http exposes the service's operational endpoints and a small
// read-only JSON API over the stored forecasts.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/weatherwatch/internal/domain"
	"github.com/couchcryptid/weatherwatch/internal/store"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// WeatherReader is the read surface the API handlers need from the
// persistent store.
type WeatherReader interface {
	LocationInfo(ctx context.Context, locationID string) (domain.Location, error)
	FutureWeather(ctx context.Context, locationID string, ref time.Time, hours int) ([]domain.HourlyReading, error)
	FutureConditions(ctx context.Context, locationID string, ref time.Time, days int) ([]domain.DailyCondition, error)
	FutureWarnings(ctx context.Context, locationID string, ref time.Time) ([]domain.Warning, error)
}

// Server exposes health, readiness, metrics, and forecast read endpoints.
type Server struct {
	httpServer *http.Server
	reader     WeatherReader
	logger     *slog.Logger
}

// NewServer wires the routes. The reader may be the store directly.
func NewServer(addr string, ready ReadinessChecker, reader WeatherReader, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		reader: reader,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/locations/{id}", s.handleLocation)
	mux.HandleFunc("GET /api/locations/{id}/weather", s.handleWeather)
	mux.HandleFunc("GET /api/locations/{id}/conditions", s.handleConditions)
	mux.HandleFunc("GET /api/locations/{id}/warnings", s.handleWarnings)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := s.reader.LocationInfo(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newLocationJSON(loc))
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	hours, err := queryInt(r, "hours", 8)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	readings, err := s.reader.FutureWeather(r.Context(), r.PathValue("id"), time.Now().UTC(), hours)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]hourlyJSON, 0, len(readings))
	for _, reading := range readings {
		out = append(out, newHourlyJSON(reading))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleConditions(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 5)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	conditions, err := s.reader.FutureConditions(r.Context(), r.PathValue("id"), time.Now().UTC(), days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]dailyJSON, 0, len(conditions))
	for _, c := range conditions {
		out = append(out, newDailyJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleWarnings(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	warnings, err := s.reader.FutureWarnings(r.Context(), r.PathValue("id"), now)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]warningJSON, 0, len(warnings))
	for _, warning := range warnings {
		out = append(out, newWarningJSON(warning, now))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown location"})
		return
	}
	s.logger.Error("read failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
