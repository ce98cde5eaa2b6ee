package query

import "github.com/agentmatrix-dev/agentmatrix/pkg/models"

// Params are the user selected controls of a registry view.
type Params struct {
	Filter  Filter `json:"filter"`
	SortKey string `json:"sortKey,omitempty"`
	Order   Order  `json:"order,omitempty"`
	GroupBy string `json:"groupBy,omitempty"`
}

// Facets are the values offered by the filter controls, taken from the
// unfiltered registry.
type Facets struct {
	Tags          []string `json:"tags"`
	Types         []string `json:"types"`
	PricingModels []string `json:"pricingModels"`
}

// View is the filtered, ordered and grouped registry.
type View struct {
	Agents     []Bucket `json:"agents"`
	MCPServers []Bucket `json:"mcpServers"`
	Matched    int      `json:"matched"`
	Total      int      `json:"total"`
	Facets     Facets   `json:"facets"`
}

// Run applies filter, sort and group to each collection of snap.
func Run(snap models.Snapshot, p Params) View {
	all := snap.All()
	v := View{
		Total: len(all),
		Facets: Facets{
			Tags:          Distinct(all, "tags"),
			Types:         Distinct(all, "type"),
			PricingModels: models.PricingModels,
		},
	}
	agents := Sort(Apply(snap.Agents, p.Filter), p.SortKey, p.Order)
	servers := Sort(Apply(snap.MCPServers, p.Filter), p.SortKey, p.Order)
	v.Matched = len(agents) + len(servers)
	v.Agents = Group(agents, p.GroupBy)
	v.MCPServers = Group(servers, p.GroupBy)
	return v
}
