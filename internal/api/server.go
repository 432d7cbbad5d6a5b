// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"projectvault/internal/auth"
	"projectvault/internal/common"
	"projectvault/internal/save"
	"projectvault/internal/store"
)

// Server exposes the save path and the project read surface over HTTP.
type Server struct {
	router chi.Router
	store  *store.Store
	writer *save.Writer
	auth   *auth.Resolver
}

// Config controls request handling behaviour.
type Config struct {
	SaveTimeout time.Duration
}

// DefaultConfig returns the standard configuration used when no
// overrides are provided.
func DefaultConfig() Config {
	return Config{SaveTimeout: 30 * time.Second}
}

// Merge overlays non-zero fields from the override onto the base
// configuration.
func (c Config) Merge(override Config) Config {
	result := c
	if override.SaveTimeout > 0 {
		result.SaveTimeout = override.SaveTimeout
	}
	return result
}

// NewServer wires the router, the snapshot writer and the credential
// resolver over the given store.
func NewServer(st *store.Store, cfg *Config) (*Server, error) {
	if st == nil {
		return nil, fmt.Errorf("store required")
	}
	configuration := DefaultConfig()
	if cfg != nil {
		configuration = configuration.Merge(*cfg)
	}
	srv := &Server{
		router: chi.NewRouter(),
		store:  st,
		writer: save.NewWriter(st, configuration.SaveTimeout),
		auth:   auth.NewResolver(st),
	}
	srv.routes()
	common.Logger().Info("api: server ready", "save_timeout", configuration.SaveTimeout)
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
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

	s.router.Post("/projects/save", s.handleSaveProject)
	s.router.Post("/files/save", s.handleSaveFiles)

	s.router.Post("/v1/projects", s.handleCreateProject)
	s.router.Get("/v1/projects", s.handleListProjects)
	s.router.Get("/v1/projects/{projectID}", s.handleGetProject)
	s.router.Get("/v1/projects/{projectID}/files", s.handleProjectFiles)
	s.router.Get("/v1/projects/{projectID}/versions", s.handleProjectVersions)
	s.router.Get("/v1/projects/{projectID}/versions/{versionID}/files", s.handleVersionFiles)
	s.router.Get("/v1/projects/{projectID}/revisions", s.handleProjectRevisions)
	s.router.Get("/v1/projects/{projectID}/conversations", s.handleProjectConversations)
	s.router.Get("/v1/projects/{projectID}/sandbox", s.handleProjectSandbox)
	s.router.Get("/v1/projects/{projectID}/analytics", s.handleProjectAnalytics)
	s.router.Get("/v1/logs", s.handleLogs)
	s.router.Get("/debug/vars", expvar.Handler().ServeHTTP)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": common.LogEntries()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	logger := common.Logger()
	status := http.StatusInternalServerError
	kind := "internal"
	switch {
	case errors.Is(err, save.ErrInvalidRequest):
		status = http.StatusBadRequest
		kind = "invalid_request"
	case errors.Is(err, save.ErrUnauthenticated):
		status = http.StatusUnauthorized
		kind = "unauthenticated"
	case store.IsNotFound(err):
		status = http.StatusNotFound
		kind = "not_found"
	case store.IsConstraintViolation(err):
		status = http.StatusConflict
		kind = "conflict"
	case errors.Is(err, save.ErrStoreUnavailable):
		kind = "store_unavailable"
	case errors.Is(err, save.ErrTransactionAborted):
		kind = "transaction_aborted"
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": kind, "details": err.Error()})
}
