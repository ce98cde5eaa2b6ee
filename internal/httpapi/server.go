package httpapi

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/agentmatrix-dev/agentmatrix/internal/activity"
	"github.com/agentmatrix-dev/agentmatrix/internal/httpapi/handlers"
	"github.com/agentmatrix-dev/agentmatrix/internal/nlp"
	"github.com/agentmatrix-dev/agentmatrix/internal/registry/importer"
	"github.com/agentmatrix-dev/agentmatrix/internal/simulate"
	"github.com/agentmatrix-dev/agentmatrix/internal/state"
	"github.com/agentmatrix-dev/agentmatrix/internal/version"
)

// Deps are the services the HTTP API serves.
type Deps struct {
	Store      *state.Store
	Feed       *activity.Feed
	Importer   *importer.Service
	Simulator  *simulate.Simulator
	Classifier nlp.Classifier
	Embedder   nlp.Embedder
	// CORSOrigins defaults to any origin.
	CORSOrigins []string
}

// Server is the HTTP API server over the in-memory registry
type Server struct {
	deps   Deps
	logger zerolog.Logger
	mux    *http.ServeMux
	api    huma.API
}

// NewServer creates a new HTTP API server
func NewServer(deps Deps, logger zerolog.Logger) *Server {
	if deps.Importer == nil {
		deps.Importer = importer.NewService()
	}
	if deps.Simulator == nil {
		deps.Simulator = simulate.New(nil)
	}

	mux := http.NewServeMux()

	config := huma.DefaultConfig("AgentMatrix Registry API", version.Version)
	config.Info.Description = "Query engine for a registry of AI agents and MCP servers"

	api := humago.New(mux, config)

	s := &Server{
		deps:   deps,
		logger: logger,
		mux:    mux,
		api:    api,
	}

	s.registerRoutes()

	return s
}

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	d := s.deps

	handlers.NewItemHandler(d.Store, d.Feed, d.Simulator, s.logger).RegisterRoutes(s.api, "/v0")
	handlers.NewInsightsHandler(d.Store, d.Feed, s.logger).RegisterRoutes(s.api, "/v0")
	handlers.NewTransferHandler(d.Store, d.Importer, s.logger).RegisterRoutes(s.api, "/v0")
	handlers.NewNLPHandler(d.Store, d.Classifier, d.Embedder, s.logger).RegisterRoutes(s.api, "/v0")
	handlers.NewWorkflowHandler(d.Store, s.logger).RegisterRoutes(s.api, "/v0")

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/v0/version",
		Summary:     "Build information",
		Tags:        []string{"utility"},
	}, func(ctx context.Context, input *struct{}) (*VersionResponse, error) {
		return &VersionResponse{Body: VersionInfo{
			Version:   version.Version,
			GitCommit: version.GitCommit,
			BuildDate: version.BuildDate,
		}}, nil
	})

	// Health endpoint
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Ready endpoint
	s.mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.mux.Handle("/metrics", promhttp.Handler())
}

type VersionResponse struct {
	Body VersionInfo
}

type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
}

// Handler returns the mux wrapped with CORS and request metrics.
func (s *Server) Handler() http.Handler {
	origins := s.deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return withMetrics(c.Handler(s.mux))
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start listening
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.logger.Info().Str("addr", addr).Msg("starting HTTP API server")

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down HTTP API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
