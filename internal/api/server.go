// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/fieldscale/povd/internal/common"
	"github.com/fieldscale/povd/internal/data/orchestrator"
	"github.com/fieldscale/povd/internal/pov"
	"github.com/fieldscale/povd/internal/store"
)

type Server struct {
	router chi.Router
	orch   *orchestrator.Orchestrator
	apiKey string
}

// NewServer builds the HTTP surface over an orchestrator. When apiKey is
// non-empty every /v1 route requires a matching X-API-Key header.
func NewServer(orch *orchestrator.Orchestrator, apiKey string) (*Server, error) {
	logger := common.Logger()
	if orch == nil {
		return nil, fmt.Errorf("orchestrator required")
	}
	if orch.Store() == nil {
		return nil, fmt.Errorf("store unavailable")
	}
	srv := &Server{
		router: chi.NewRouter(),
		orch:   orch,
		apiKey: apiKey,
	}
	if apiKey == "" {
		logger.Warn("api: no API key configured, requests are unauthenticated")
	}
	srv.routes()
	logger.Info("api: server ready", "provider", orch.Provider().Name())
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Route("/v1", func(r chi.Router) {
		r.Use(s.requireAPIKey)

		r.Post("/reports/generate", s.handleGenerateReport)
		r.Post("/reports/titles", s.handleGenerateTitles)
		r.Get("/reports", s.handleListReports)
		r.Route("/reports/{reportID}", func(r chi.Router) {
			r.Get("/", s.handleGetReport)
			r.Delete("/", s.handleDeleteReport)
			r.Get("/titles", s.handleGetTitles)
			r.Put("/selection", s.handleUpdateSelection)
			r.Get("/selection-summary", s.handleSelectionSummary)
			r.Post("/outcomes", s.handleGenerateOutcomes)
			r.Get("/document", s.handleDownloadDocument)
			r.Post("/outreach", s.handleGenerateOutreach)
			r.Get("/outreach", s.handleListOutreach)
		})
		r.Route("/outreach/{emailID}", func(r chi.Router) {
			r.Get("/", s.handleGetOutreach)
			r.Put("/status", s.handleUpdateOutreachStatus)
			r.Delete("/", s.handleDeleteOutreach)
		})
		r.Get("/logs", s.handleLogs)
	})
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("X-API-Key") != s.apiKey {
			writeError(w, http.StatusUnauthorized, fmt.Errorf("missing or invalid API key"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	entries := append([]common.LogEntry(nil), common.LogEntries()...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.Before(entries[j].Time)
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps domain errors onto HTTP statuses; anything unrecognized
// is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, pov.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, pov.ErrNoSelection):
		return http.StatusBadRequest
	case errors.Is(err, pov.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, pov.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
