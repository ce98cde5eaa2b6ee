package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/agentmatrix-dev/agentmatrix/internal/metrics"
	"github.com/agentmatrix-dev/agentmatrix/internal/query"
	"github.com/agentmatrix-dev/agentmatrix/internal/validation"
	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("query_registry",
		mcp.WithDescription("Filter, sort and group the agents and MCP servers in the registry"),
		mcp.WithString("q", mcp.Description("Free text matched against name, description and tags")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags that must all be present")),
		mcp.WithString("pricing", mcp.Description("Comma-separated accepted pricing models")),
		mcp.WithBoolean("verified", mcp.Description("Only verified items")),
		mcp.WithString("type", mcp.Description("Exact item type, e.g. rag")),
		mcp.WithString("governance", mcp.Description("pending, approved or rejected")),
		mcp.WithString("visibility", mcp.Description("public or private; unset items count as public")),
		mcp.WithString("sort", mcp.Description("Field to sort by, e.g. name or usageStats.invocations")),
		mcp.WithString("order", mcp.Description("asc (default) or desc")),
		mcp.WithString("group", mcp.Description("Field to group by (default: none)")),
	), s.handleQueryRegistry)

	s.mcpServer.AddTool(mcp.NewTool("get_item",
		mcp.WithDescription("Get an agent or MCP server by id"),
		mcp.WithString("id", mcp.Description("Item id"), mcp.Required()),
	), s.handleGetItem)

	s.mcpServer.AddTool(mcp.NewTool("registry_stats",
		mcp.WithDescription("Registry analytics: counts, usage totals, leaderboards and top tags"),
	), s.handleRegistryStats)

	s.mcpServer.AddTool(mcp.NewTool("recommend_pairings",
		mcp.WithDescription("List agent to MCP server pairings derived from declared dependencies"),
	), s.handleRecommendPairings)

	s.mcpServer.AddTool(mcp.NewTool("list_facets",
		mcp.WithDescription("List the tags, types and pricing models available for filtering"),
	), s.handleListFacets)

	// Sampling-powered tools
	s.mcpServer.AddTool(mcp.NewTool("suggest_servers",
		mcp.WithDescription("Suggest MCP servers for a use case (uses LLM sampling to analyze the registry)"),
		mcp.WithString("description", mcp.Description("Describe what you need the MCP server(s) for"), mcp.Required()),
	), s.handleSuggestServers)
}

// --- Helper functions ---

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to marshal result: %v", err))
	}
	return textResult(string(data))
}

func getStringArg(args map[string]any, key string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getBoolArg(args map[string]any, key string) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}

func splitArg(args map[string]any, key string) []string {
	var out []string
	for _, part := range strings.Split(getStringArg(args, key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type itemSummary struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Kind         models.Kind `json:"kind"`
	Type         string      `json:"type,omitempty"`
	Description  string      `json:"description,omitempty"`
	Tags         []string    `json:"tags,omitempty"`
	Status       string      `json:"status"`
	Governance   string      `json:"governanceStatus"`
	PricingModel string      `json:"pricingModel,omitempty"`
	Latest       string      `json:"latestVersion,omitempty"`
}

func summarize(items []*models.Item, kind models.Kind) []itemSummary {
	out := make([]itemSummary, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, itemSummary{
			ID:           it.ID,
			Name:         it.Name,
			Kind:         kind,
			Type:         it.Type,
			Description:  it.Description,
			Tags:         it.Tags,
			Status:       string(models.StatusOf(it)),
			Governance:   string(models.GovernanceStatusOf(it)),
			PricingModel: it.PricingModel,
			Latest:       validation.LatestVersion(it.Versions),
		})
	}
	return out
}

type groupSummary struct {
	Name  string        `json:"name"`
	Items []itemSummary `json:"items"`
}

type querySummary struct {
	Matched    int            `json:"matched"`
	Total      int            `json:"total"`
	Agents     []groupSummary `json:"agents"`
	MCPServers []groupSummary `json:"mcpServers"`
}

func summarizeBuckets(buckets []query.Bucket, kind models.Kind) []groupSummary {
	out := make([]groupSummary, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, groupSummary{Name: b.Name, Items: summarize(b.Items, kind)})
	}
	return out
}

// --- Query Handlers ---

func (s *MCPServer) handleQueryRegistry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	metrics.Queries.WithLabelValues("mcp").Inc()

	params := query.Params{
		Filter: query.Filter{
			Query:        getStringArg(args, "q"),
			Tags:         splitArg(args, "tags"),
			Pricing:      splitArg(args, "pricing"),
			VerifiedOnly: getBoolArg(args, "verified"),
			Type:         getStringArg(args, "type"),
			Governance:   getStringArg(args, "governance"),
			Visibility:   getStringArg(args, "visibility"),
		},
		SortKey: getStringArg(args, "sort"),
		Order:   query.ParseOrder(getStringArg(args, "order")),
		GroupBy: getStringArg(args, "group"),
	}
	view := query.Run(s.registry.Snapshot(), params)

	return jsonResult(querySummary{
		Matched:    view.Matched,
		Total:      view.Total,
		Agents:     summarizeBuckets(view.Agents, models.KindAgent),
		MCPServers: summarizeBuckets(view.MCPServers, models.KindMCP),
	}), nil
}

func (s *MCPServer) handleGetItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := getStringArg(request.GetArguments(), "id")
	if id == "" {
		return errorResult("id is required"), nil
	}
	it, kind, err := s.registry.Get(id)
	if err != nil {
		return errorResult(fmt.Sprintf("Item '%s' not found", id)), nil
	}
	return jsonResult(struct {
		Kind models.Kind  `json:"kind"`
		Item *models.Item `json:"item"`
	}{kind, it}), nil
}

func (s *MCPServer) handleRegistryStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := s.registry.Snapshot()
	return jsonResult(query.Aggregate(snap.Agents, snap.MCPServers)), nil
}

func (s *MCPServer) handleRecommendPairings(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := s.registry.Snapshot()
	edges := query.Edges(query.Recommend(snap.Agents, snap.MCPServers))
	if len(edges) == 0 {
		return textResult("No agent declares a dependency on a registered MCP server."), nil
	}
	lines := make([]string, 0, len(edges))
	for _, e := range edges {
		lines = append(lines, e.String())
	}
	return textResult(strings.Join(lines, "\n")), nil
}

func (s *MCPServer) handleListFacets(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(query.Run(s.registry.Snapshot(), query.Params{}).Facets), nil
}

// --- Sampling-Powered Handlers ---

func (s *MCPServer) handleSuggestServers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description := getStringArg(request.GetArguments(), "description")
	if strings.TrimSpace(description) == "" {
		return errorResult("description is required"), nil
	}

	servers := summarize(s.registry.Snapshot().MCPServers, models.KindMCP)
	catalogJSON, _ := json.MarshalIndent(servers, "", "  ")
	userMsg := fmt.Sprintf("User needs: %s\n\nAvailable MCP servers in the registry:\n%s\n\nRecommend the best matching servers and explain why each is relevant. If none match, say so.", description, string(catalogJSON))

	result, err := s.requestSampling(ctx, "You are an AgentMatrix registry advisor. Analyze the MCP server list and recommend the best matches for the user's needs. Be concise and specific.", userMsg)
	if err != nil {
		s.logger.Debug().Err(err).Msg("sampling unavailable, falling back to text search")
		matches := query.Apply(s.registry.Snapshot().MCPServers, query.Filter{Query: description})
		if len(matches) == 0 {
			return textResult(fmt.Sprintf("Sampling unavailable (client may not support it). Here are all %d servers:\n%s", len(servers), string(catalogJSON))), nil
		}
		return jsonResult(summarize(matches, models.KindMCP)), nil
	}

	return textResult(result), nil
}
