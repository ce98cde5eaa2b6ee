package mcp

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/agentmatrix-dev/agentmatrix/internal/version"
	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

// Registry is the read side of the registry store.
type Registry interface {
	Snapshot() models.Snapshot
	Get(id string) (*models.Item, models.Kind, error)
}

// MCPServer wraps the mcp-go server with registry query tools, resources, and prompts.
type MCPServer struct {
	registry   Registry
	logger     zerolog.Logger
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

// NewMCPServer creates a new MCP server with all registry tools, resources, and prompts registered.
func NewMCPServer(registry Registry, logger zerolog.Logger) *MCPServer {
	s := &MCPServer{
		registry: registry,
		logger:   logger.With().Str("component", "mcp").Logger(),
	}

	mcpServer := server.NewMCPServer(
		"agentmatrix",
		version.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions("AgentMatrix registry - search, filter and analyze the AI agents and MCP servers it catalogues."),
	)
	mcpServer.EnableSampling()

	s.mcpServer = mcpServer

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	s.httpServer = server.NewStreamableHTTPServer(mcpServer)

	return s
}

// Handler returns an http.Handler for the streamable HTTP transport.
func (s *MCPServer) Handler() http.Handler {
	return s.httpServer
}

// Start serves the MCP endpoint on its own port until ctx is cancelled.
func (s *MCPServer) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.httpServer,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      0, // streaming responses and sampling callbacks hold the connection open
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.logger.Info().Str("addr", addr).Msg("starting MCP server")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down MCP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// requestSampling is a helper to call sampling on the MCP server from tool handlers.
func (s *MCPServer) requestSampling(ctx context.Context, systemPrompt string, userMessage string) (string, error) {
	result, err := s.mcpServer.RequestSampling(ctx, mcp.CreateMessageRequest{
		CreateMessageParams: mcp.CreateMessageParams{
			Messages: []mcp.SamplingMessage{
				{
					Role:    mcp.RoleUser,
					Content: mcp.TextContent{Type: "text", Text: userMessage},
				},
			},
			SystemPrompt: systemPrompt,
			MaxTokens:    4096,
		},
	})
	if err != nil {
		return "", err
	}

	if textContent, ok := result.Content.(mcp.TextContent); ok {
		return textContent.Text, nil
	}
	return "Sampling returned non-text content", nil
}
