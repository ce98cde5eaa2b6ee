package query

import "github.com/agentmatrix-dev/agentmatrix/pkg/models"

// Pairing links an agent to an MCP server it declares as a dependency.
type Pairing struct {
	Agent *models.Item `json:"agent"`
	MCP   *models.Item `json:"mcp"`
}

// Edge is the id/name projection of a pairing used by the dependency graph.
type Edge struct {
	AgentID   string `json:"agentId"`
	AgentName string `json:"agentName"`
	MCPID     string `json:"mcpId"`
	MCPName   string `json:"mcpName"`
}

// String renders the edge as "agent → mcp".
func (e Edge) String() string {
	return e.AgentName + " → " + e.MCPName
}

// Recommend resolves every agent dependency against mcpServers by id.
// Pairings follow agent order, then dependency order. Ids that resolve to
// nothing are skipped; duplicates across agents are kept.
func Recommend(agents, mcpServers []*models.Item) []Pairing {
	byID := make(map[string]*models.Item, len(mcpServers))
	for _, m := range mcpServers {
		if m == nil {
			continue
		}
		if _, ok := byID[m.ID]; !ok {
			byID[m.ID] = m
		}
	}

	pairings := []Pairing{}
	for _, a := range agents {
		for _, dep := range models.DependenciesOf(a) {
			if m, ok := byID[dep]; ok {
				pairings = append(pairings, Pairing{Agent: a, MCP: m})
			}
		}
	}
	return pairings
}

// Edges projects pairings onto graph edges.
func Edges(pairings []Pairing) []Edge {
	edges := make([]Edge, 0, len(pairings))
	for _, p := range pairings {
		edges = append(edges, Edge{
			AgentID:   p.Agent.ID,
			AgentName: p.Agent.Name,
			MCPID:     p.MCP.ID,
			MCPName:   p.MCP.Name,
		})
	}
	return edges
}
