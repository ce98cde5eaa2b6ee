package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agentmatrix-dev/agentmatrix/internal/activity"
	"github.com/agentmatrix-dev/agentmatrix/internal/config"
	"github.com/agentmatrix-dev/agentmatrix/internal/httpapi"
	"github.com/agentmatrix-dev/agentmatrix/internal/mcp"
	"github.com/agentmatrix-dev/agentmatrix/internal/nlp"
	"github.com/agentmatrix-dev/agentmatrix/internal/persistence"
	"github.com/agentmatrix-dev/agentmatrix/internal/registry/importer"
	"github.com/agentmatrix-dev/agentmatrix/internal/simulate"
	"github.com/agentmatrix-dev/agentmatrix/internal/state"
	"github.com/agentmatrix-dev/agentmatrix/internal/version"
)

const (
	activityBuffer = 256
	activityRecent = 200
)

// OpenSink opens the persistence backend selected by cfg.
func OpenSink(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*persistence.Sink, error) {
	backend, err := persistence.Open(ctx, persistence.Options{
		Backend:     cfg.Store,
		FilePath:    cfg.FilePath,
		RedisURL:    cfg.RedisURL,
		RedisPrefix: cfg.RedisPrefix,
		PostgresDSN: cfg.PostgresDSN,
		SQLitePath:  cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	return persistence.NewSink(backend, logger), nil
}

// App runs the HTTP API, the MCP server and the usage simulator until ctx is
// cancelled or one of them fails.
func App(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	logger.Info().
		Str("version", version.Version).
		Str("commit", version.GitCommit).
		Str("store", cfg.Store).
		Str("http-addr", cfg.HTTPAddr).
		Bool("mcp-enabled", cfg.MCPEnabled).
		Bool("simulator-enabled", cfg.SimulatorEnabled).
		Msg("starting agentmatrix")

	sink, err := OpenSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close store")
		}
	}()

	feed := activity.NewFeed(activityBuffer, activityRecent)
	store := state.New(sink.Load(ctx), sink, feed, logger)
	sim := simulate.New(nil)

	llm := nlp.NewOpenAIClient(nlp.OpenAIConfig{
		BaseURL:        cfg.LLMBaseURL,
		APIKey:         cfg.LLMAPIKey,
		ChatModel:      cfg.LLMChatModel,
		EmbeddingModel: cfg.LLMEmbeddingModel,
		Timeout:        cfg.LLMTimeout,
	})
	if !llm.Configured() {
		logger.Warn().Msg("no LLM API key configured, NLP registration and semantic search are disabled")
	}

	imp := importer.NewService()
	imp.SetTimeout(cfg.ImportTimeout)

	api := httpapi.NewServer(httpapi.Deps{
		Store:       store,
		Feed:        feed,
		Importer:    imp,
		Simulator:   sim,
		Classifier:  llm,
		Embedder:    llm,
		CORSOrigins: cfg.CORSOrigins,
	}, logger)

	g, ctx := errgroup.WithContext(ctx)
	run := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}

	run("activity", func(ctx context.Context) error {
		LogActivity(ctx, feed, logger)
		return nil
	})
	run("http", func(ctx context.Context) error { return api.Start(ctx, cfg.HTTPAddr) })
	if cfg.MCPEnabled {
		mcpServer := mcp.NewMCPServer(store, logger)
		run("mcp", func(ctx context.Context) error { return mcpServer.Start(ctx, cfg.MCPAddr) })
	}
	if cfg.SimulatorEnabled {
		telemetry := simulate.NewTelemetry(store, sim, cfg.SimulatorInterval, logger)
		run("simulator", func(ctx context.Context) error {
			telemetry.Run(ctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("agentmatrix stopped")
	return nil
}

// LogActivity writes every published registry event to logger until ctx is
// cancelled.
func LogActivity(ctx context.Context, feed *activity.Feed, logger zerolog.Logger) {
	logger = logger.With().Str("component", "activity").Logger()
	for {
		event, ok := feed.Next(ctx)
		if !ok {
			return
		}
		ev := logger.Info()
		if event.Type == activity.TypeError {
			ev = logger.Warn()
		}
		ev.Str("type", event.Type).
			Str("item", event.ItemID).
			Str("user", event.User).
			Msg(event.Message)
	}
}
