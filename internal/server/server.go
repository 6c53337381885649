// Package server provides the HTTP surface of the hand tracker: capture
// control, the rendered video stream and live panel updates.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/panel"
)

// startTimeout bounds how long a capture request waits for the camera.
const startTimeout = 10 * time.Second

// Tracker is the application behind the capture and panel endpoints.
type Tracker interface {
	StartCapture(ctx context.Context) error
	SwitchFacing(ctx context.Context) error
	StopCapture() error
	Snapshot() panel.Snapshot
	Subscribe() (<-chan panel.Snapshot, func())
	SetContainer(width, height int)
	LatestFrame() []byte
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Tracker   Tracker
	Metrics   *metrics.Metrics
	Log       *slog.Logger
}

// Server represents the HTTP server for the hand tracker.
type Server struct {
	config Config
	router chi.Router
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Log == nil {
		config.Log = slog.Default()
	}
	s := &Server{
		config: config,
		router: chi.NewRouter(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	r := s.router
	r.Use(logger.RequestLogger(s.config.Log))
	if s.config.Metrics != nil {
		r.Use(metrics.RequestMiddleware(s.config.Metrics))
		r.Method(http.MethodGet, "/metrics", s.config.Metrics.Handler(nil))
	}

	r.Get("/api/health", s.handleHealth)

	if t := s.config.Tracker; t != nil {
		r.Get("/api/status", s.handleStatus)
		r.Route("/api/capture", func(r chi.Router) {
			r.Post("/start", s.handleCapture(t.StartCapture))
			r.Post("/switch", s.handleCapture(t.SwitchFacing))
			r.Post("/stop", s.handleStop)
		})
		r.Method(http.MethodGet, "/api/stream", NewStreamHandler(t))
		r.Method(http.MethodGet, "/api/panel", NewPanelHandler(t, s.config.Log))
	}

	if s.config.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// Status is the body of /api/status and of successful capture requests.
type Status struct {
	Capturing       bool           `json:"capturing"`
	SessionID       string         `json:"session_id,omitempty"`
	Facing          capture.Facing `json:"facing"`
	PreviewMirrored bool           `json:"preview_mirrored"`
	HandCount       int            `json:"hand_count"`
	Summary         string         `json:"summary"`
	Error           string         `json:"error,omitempty"`
}

func statusOf(s panel.Snapshot) Status {
	return Status{
		Capturing:       s.Capture.Capturing,
		SessionID:       s.Capture.SessionID,
		Facing:          s.Capture.Facing,
		PreviewMirrored: s.Capture.PreviewMirrored,
		HandCount:       s.HandCount,
		Summary:         s.Summary,
		Error:           s.Error,
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusOf(s.config.Tracker.Snapshot()))
}

// handleCapture runs a camera (re)start and reports 503 when no camera
// could be opened.
func (s *Server) handleCapture(start func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), startTimeout)
		defer cancel()

		if err := start(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeJSON(w, http.StatusOK, statusOf(s.config.Tracker.Snapshot()))
	}
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	err := s.config.Tracker.StopCapture()
	switch {
	case errors.Is(err, capture.ErrNotCapturing):
		writeError(w, http.StatusConflict, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, statusOf(s.config.Tracker.Snapshot()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
