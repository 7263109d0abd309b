// Package api exposes a MindfulU session as a small JSON HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"mindfulu/internal/app"
	"mindfulu/internal/logger"
	"mindfulu/internal/orchestration"
	"mindfulu/pkg/mindtypes"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// Server routes HTTP requests to one App.
type Server struct {
	app    *app.App
	router *mux.Router
}

// NewServer creates a server for a and registers its routes.
func NewServer(a *app.App) *Server {
	s := &Server{
		app:    a,
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(loggingMiddleware)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.router.Handle("/metrics", s.app.Metrics.Handler()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/signin", s.handleSignIn).Methods(http.MethodPost)
	api.HandleFunc("/signout", s.handleSignOut).Methods(http.MethodPost)
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(s.requireUser)
	protected.HandleFunc("/journal", s.handleListEntries).Methods(http.MethodGet)
	protected.HandleFunc("/journal", s.handleSaveEntry).Methods(http.MethodPost)
	protected.HandleFunc("/chat", s.handleChatHistory).Methods(http.MethodGet)
	protected.HandleFunc("/chat", s.handleSendMessage).Methods(http.MethodPost)
	protected.HandleFunc("/insights", s.handleInsights).Methods(http.MethodGet)
	protected.HandleFunc("/export", s.handleExport).Methods(http.MethodGet)
}

// requireUser rejects requests while no user is signed in.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.app.Store.State().SignedIn() {
			writeError(w, http.StatusUnauthorized, "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		logger.Debug("HTTP request", "method", r.Method, "path", path, "status", wrapped.statusCode, "duration", time.Since(start))
	})
}

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeFailure maps a domain error to a status code.
func writeFailure(w http.ResponseWriter, err error) {
	var validationErr *mindtypes.ValidationError
	var authErr *mindtypes.AuthError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validationErr.Message, Field: validationErr.Field})
	case errors.As(err, &authErr):
		writeError(w, http.StatusUnauthorized, authErr.Error())
	case errors.Is(err, orchestration.ErrCancelled):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, orchestration.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return mindtypes.NewValidationError("", "invalid request body: "+err.Error())
	}
	return nil
}
