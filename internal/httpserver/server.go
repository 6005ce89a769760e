package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davidbz/pressroom/internal/config"
	"github.com/davidbz/pressroom/internal/httpserver/middleware"
	"github.com/davidbz/pressroom/internal/observability"
)

// Server represents the HTTP server.
type Server struct {
	config  *config.ServerConfig
	handler *Handler
	router  http.Handler
	srv     *http.Server
}

// NewServer creates a new HTTP server (DI constructor).
func NewServer(cfg *config.ServerConfig, corsCfg *config.CORSConfig, handler *Handler) *Server {
	router := NewRouter(handler, middleware.BuildMiddlewareChain(corsCfg))
	return &Server{
		config:  cfg,
		handler: handler,
		router:  router,
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		},
	}
}

// NewRouter mounts every route behind the given middleware chain.
func NewRouter(h *Handler, chain middleware.Middleware) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chain)

	r.Get("/health", h.HandleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Post("/generate-questions", h.HandleGenerateQuestions)
		api.Post("/simulate/start", h.HandleSimulateStart)
		api.Post("/simulate/turn", h.HandleSimulateTurn)
		api.Post("/follow-up", h.HandleFollowUp)
		api.Post("/risk-analysis", h.HandleRiskAnalysis)

		api.Get("/prompts", h.HandleGetPrompts)
		api.Post("/update-prompts", h.HandleUpdatePrompts)

		api.Get("/preferences", h.HandleGetPreferences)
		api.Put("/preferences", h.HandlePutPreferences)
		api.Delete("/preferences", h.HandleDeletePreferences)
	})

	return r
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
// It returns nil once Shutdown has been called, even if Shutdown came first.
func (s *Server) Start() error {
	observability.FromContext(context.Background()).Info("starting server",
		observability.Int("port", s.config.Port))

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
