// Package web provides an HTTP status server for the watchface daemon.
package web

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/sweeney/watchface/internal/face"
	"github.com/sweeney/watchface/internal/status"
	"github.com/sweeney/watchface/internal/xslog"
)

// FrameSource renders the current face as a PNG.
type FrameSource interface {
	PNG(w io.Writer) error
}

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	frame      FrameSource
	events     chan<- face.Event
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithFrame serves /face.png from src.
func WithFrame(src FrameSource) Option {
	return func(s *Server) { s.frame = src }
}

// WithTaps lets POST /tap deliver a tap to the event loop through events.
func WithTaps(events chan<- face.Event) Option {
	return func(s *Server) { s.events = events }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a Server that reads state from the given tracker.
func New(addr string, tracker *status.Tracker, opts ...Option) *Server {
	s := &Server{tracker: tracker, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/face.png", s.handleFace)
	mux.HandleFunc("/tap", s.handleTap)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, snap, s.frame != nil, s.events != nil); err != nil {
		s.logger.Warn("render index failed", xslog.Error(err))
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleFace(w http.ResponseWriter, r *http.Request) {
	if s.frame == nil {
		http.NotFound(w, r)
		return
	}
	var buf bytes.Buffer
	if err := s.frame.PNG(&buf); err != nil {
		s.logger.Error("encode frame failed", xslog.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	select {
	case s.events <- face.Tapped{}:
		w.WriteHeader(http.StatusAccepted)
	default:
		s.logger.Warn("event queue full, tap dropped")
		http.Error(w, "event queue full", http.StatusServiceUnavailable)
	}
}
