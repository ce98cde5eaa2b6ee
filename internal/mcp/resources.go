package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/agentmatrix-dev/agentmatrix/internal/query"
	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

func (s *MCPServer) registerResources() {
	// Static resources
	s.mcpServer.AddResource(
		mcp.NewResource("registry://stats", "Registry statistics", mcp.WithMIMEType("application/json")),
		s.handleResourceStats,
	)
	s.mcpServer.AddResource(
		mcp.NewResource("registry://agents", "All agents", mcp.WithMIMEType("application/json")),
		s.handleResourceAgents,
	)
	s.mcpServer.AddResource(
		mcp.NewResource("registry://servers", "All MCP servers", mcp.WithMIMEType("application/json")),
		s.handleResourceServers,
	)

	// Resource templates
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate("registry://agents/{id}", "Agent details"),
		s.handleResourceItem,
	)
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate("registry://servers/{id}", "MCP server details"),
		s.handleResourceItem,
	)
}

// extractNameFromURI extracts the last path segment from a resource URI.
// e.g., "registry://servers/github-mcp" -> "github-mcp"
func extractNameFromURI(uri, prefix string) string {
	name, _ := strings.CutPrefix(uri, prefix)
	return name
}

func marshalToResourceContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *MCPServer) handleResourceStats(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	snap := s.registry.Snapshot()
	return marshalToResourceContents(request.Params.URI, query.Aggregate(snap.Agents, snap.MCPServers))
}

func (s *MCPServer) handleResourceAgents(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return marshalToResourceContents(request.Params.URI, summarize(s.registry.Snapshot().Agents, models.KindAgent))
}

func (s *MCPServer) handleResourceServers(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return marshalToResourceContents(request.Params.URI, summarize(s.registry.Snapshot().MCPServers, models.KindMCP))
}

func (s *MCPServer) handleResourceItem(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	want := models.KindAgent
	id := extractNameFromURI(uri, "registry://agents/")
	if strings.HasPrefix(uri, "registry://servers/") {
		want = models.KindMCP
		id = extractNameFromURI(uri, "registry://servers/")
	}
	if id == "" || id == uri {
		return nil, fmt.Errorf("id parameter required")
	}

	it, kind, err := s.registry.Get(id)
	if err != nil || kind != want {
		return nil, fmt.Errorf("%s '%s' not found", want.Label(), id)
	}
	return marshalToResourceContents(uri, it)
}
