// Package web serves the energy consumption predictor: the single-page form,
// a JSON API over the same predictor, and a websocket that re-runs the
// prediction whenever the client sends an edited input.
package web

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"energy-predictor/internal/ml"
	"energy-predictor/internal/storage"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// MetricsInterface defines the HTTP metrics the server records.
type MetricsInterface interface {
	HTTPRequestInc(route string, code int)
	ErrorsInc()
	WSClients() prometheus.Gauge
}

// HistoryStore returns served predictions.
type HistoryStore interface {
	Recent(limit int) ([]storage.PredictionRecord, error)
	GetPredictions(model string, start, end time.Time) ([]storage.PredictionRecord, error)
	Count() (int, error)
}

// Options configures a Server. Predictor is required; the rest may be zero.
type Options struct {
	Port           int
	Predictor      *ml.Predictor
	Metrics        MetricsInterface
	History        HistoryStore
	HistoryLimit   int
	PredictTimeout time.Duration
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
}

// Server is the HTTP front end of the predictor.
type Server struct {
	predictor      *ml.Predictor
	metrics        MetricsInterface
	history        HistoryStore
	historyLimit   int
	predictTimeout time.Duration

	router    *mux.Router
	server    *http.Server
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	isRunning bool
	mu        sync.Mutex
}

// NewServer builds the router and HTTP server. It does not listen until Start.
func NewServer(opts Options) (*Server, error) {
	if opts.Predictor == nil {
		return nil, errors.New("web server requires a predictor")
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}
	if opts.PredictTimeout <= 0 {
		opts.PredictTimeout = 5 * time.Second
	}

	s := &Server{
		predictor:      opts.Predictor,
		metrics:        opts.Metrics,
		history:        opts.History,
		historyLimit:   opts.HistoryLimit,
		predictTimeout: opts.PredictTimeout,
		upgrader:       websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:        make(map[*websocket.Conn]bool),
	}

	r := mux.NewRouter()
	r.Use(s.instrument)
	r.HandleFunc("/", s.handleForm).Methods("GET")
	r.HandleFunc("/predict", s.handleFormPredict).Methods("POST")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/ws", s.handleWebSocket).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/predict", s.handleAPIPredict).Methods("POST")
	api.HandleFunc("/features", s.handleAPIFeatures).Methods("POST")
	api.HandleFunc("/models", s.handleAPIModels).Methods("GET")
	api.HandleFunc("/history", s.handleAPIHistory).Methods("GET")

	if opts.MetricsHandler != nil {
		r.Handle("/metrics", opts.MetricsHandler).Methods("GET")
	}

	s.router = r
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("web server is already running")
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}

	go func() {
		log.Info().
			Str("address", s.server.Addr).
			Msg("Starting web server")

		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Web server failed")
		}
	}()

	s.isRunning = true
	return nil
}

// Shutdown closes websocket clients and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.clientsMu.Lock()
	for client := range s.clients {
		client.Close()
	}
	s.clients = make(map[*websocket.Conn]bool)
	s.clientsMu.Unlock()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown web server")
		return err
	}

	s.isRunning = false
	log.Info().Msg("Web server stopped")
	return nil
}

// statusRecorder captures the response code. It forwards Hijack so the
// websocket upgrade still works behind the middleware.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rec.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rec.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		if s.metrics != nil {
			s.metrics.HTTPRequestInc(route, rec.status)
			if rec.status >= http.StatusInternalServerError {
				s.metrics.ErrorsInc()
			}
		}
		log.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
