// Package server exposes the brightness state over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/scheerer/sunset/internal/brightness"
	"github.com/scheerer/sunset/internal/logging"
)

var logger = logging.New("server")

// State is the part of display.State the handlers drive.
type State interface {
	Get() float64
	Set(ctx context.Context, v float64) error
	Brighter(ctx context.Context) error
	Darker(ctx context.Context) error
}

type Config struct {
	ListenAddr string
}

type Server struct {
	config  Config
	state   State
	metrics http.Handler
	router  *mux.Router
	server  *http.Server
}

// New wires the routes. metrics may be nil, in which case /metrics is not served.
func New(config Config, state State, metrics http.Handler) *Server {
	s := &Server{
		config:  config,
		state:   state,
		metrics: metrics,
	}
	s.setupRoutes()
	s.server = &http.Server{
		Addr:              config.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()
	s.router.Use(logRequests)

	s.router.HandleFunc("/get", s.handleGet).Methods(http.MethodGet)
	s.router.HandleFunc("/set", s.handleSet).Methods(http.MethodGet)
	s.router.HandleFunc("/brighter", s.handleBrighter).Methods(http.MethodGet)
	s.router.HandleFunc("/darker", s.handleDarker).Methods(http.MethodGet)

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe binds the configured address and serves until Shutdown.
// A bind failure is returned before anything is served.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.config.ListenAddr, err)
	}
	return s.Serve(l)
}

func (s *Server) Serve(l net.Listener) error {
	logger.With(zap.String("addr", l.Addr().String())).Info("HTTP server listening")
	if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, brightness.FormatFloat(s.state.Get()))
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("brightness")
	if raw == "" {
		writeText(w, http.StatusBadRequest, "missing brightness query parameter")
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeText(w, http.StatusBadRequest, fmt.Sprintf("invalid brightness %q", raw))
		return
	}

	s.apply(w, r, func(ctx context.Context) error { return s.state.Set(ctx, v) })
}

func (s *Server) handleBrighter(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.state.Brighter)
}

func (s *Server) handleDarker(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.state.Darker)
}

// apply runs a mutation and reports a restart failure as a 500.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, mutate func(context.Context) error) {
	if err := mutate(r.Context()); err != nil {
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
