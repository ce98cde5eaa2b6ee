package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *MCPServer) registerPrompts() {
	s.mcpServer.AddPrompt(
		mcp.NewPrompt("agentmatrix_guide",
			mcp.WithPromptDescription("How to search and analyze the AgentMatrix registry of AI agents and MCP servers. Use when browsing, filtering or comparing registry items."),
		),
		s.handlePromptGuide,
	)

	s.mcpServer.AddPrompt(
		mcp.NewPrompt("find_agents",
			mcp.WithPromptDescription("Guided workflow for discovering agents by use case or capability. Use when asked to find, search, or recommend agents."),
			mcp.WithArgument("use_case",
				mcp.ArgumentDescription("Optional: describe your use case"),
			),
		),
		s.handlePromptFindAgents,
	)

	s.mcpServer.AddPrompt(
		mcp.NewPrompt("registry_overview",
			mcp.WithPromptDescription("Snapshot of registry contents, usage and governance. Use when asked for a summary of what's in the registry."),
		),
		s.handlePromptRegistryOverview,
	)
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.TextContent{Type: "text", Text: text},
			},
		},
	}
}

func (s *MCPServer) handlePromptGuide(_ context.Context, _ mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return userPrompt("AgentMatrix Registry - Guide", `You have access to AgentMatrix, a registry of AI agents and MCP servers.

## Workflows

### Browse the registry
1. Call list_facets to see the tags, types and pricing models in use
2. Call query_registry with any of q, tags, pricing, verified, type, governance
   - sort="usageStats.invocations" order="desc" ranks by usage
   - group="type" or group="pricingModel" buckets the results
3. Call get_item with an id for the full record (versions, comments, audit log)

### Analyze
- registry_stats: totals, success rate, top used and most failing items, top tags
- recommend_pairings: agent → MCP server pairs from declared dependencies
- suggest_servers: describe a use case and get matching MCP servers (uses sampling, falls back to text search)

## Key details
- Items without a governance status count as pending
- Filters combine with AND; tags must all be present
- Resources registry://agents and registry://servers list every item`), nil
}

func (s *MCPServer) handlePromptFindAgents(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	useCase := request.Params.Arguments["use_case"]

	var steps string
	if useCase != "" {
		steps = fmt.Sprintf(`Find agents in the AgentMatrix registry for this use case: %s

Steps:
1. query_registry q=<keywords from the use case>: search agents
2. list_facets: pick relevant tags, then narrow with query_registry tags=<tags>
3. get_item id=<agent>: check details: compatible frameworks, dependencies, pricing
4. recommend_pairings: confirm the MCP servers it depends on are registered
5. Summarize: agent name, what it does, its dependencies, and whether all deps are satisfied`, useCase)
	} else {
		steps = `Help me find agents in the AgentMatrix registry.

Steps:
1. query_registry group="type": show all agents grouped by type
2. Present a summary of each agent: name, type, description
3. When I pick one, get_item id=<agent> for full details
4. recommend_pairings: verify its MCP server dependencies are registered`
	}

	return userPrompt("Find Agents Workflow", steps), nil
}

func (s *MCPServer) handlePromptRegistryOverview(_ context.Context, _ mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return userPrompt("Registry Overview", `Give me an overview of the AgentMatrix registry.

Gather data by calling these tools (run independent calls in parallel where possible):
1. registry_stats: counts, usage totals and leaderboards
2. query_registry group="governanceStatus": items by approval state
3. recommend_pairings: dependency graph

Present a structured summary:
- Item counts (agents, MCP servers, online)
- Most used and most failing items
- Governance backlog (pending items)
- Agent → MCP server dependencies`), nil
}
