package models

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Kind identifies which collection a registry item belongs to.
type Kind string

const (
	KindAgent Kind = "agent"
	KindMCP   Kind = "mcp"
)

// ParseKind maps loose user input ("agents", "server", "MCP") to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "agent", "agents":
		return KindAgent, true
	case "mcp", "mcps", "server", "servers", "mcpserver", "mcpservers":
		return KindMCP, true
	}
	return "", false
}

// Label returns the display name for the kind.
func (k Kind) Label() string {
	if k == KindAgent {
		return "Agent"
	}
	return "MCP Server"
}

// Status is the reachability state of an item.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusUnknown Status = "unknown"
)

// GovernanceStatus is the approval lifecycle state of an item.
type GovernanceStatus string

const (
	GovernancePending  GovernanceStatus = "pending"
	GovernanceApproved GovernanceStatus = "approved"
	GovernanceRejected GovernanceStatus = "rejected"
)

// GovernanceStatuses lists every governance state in display order.
var GovernanceStatuses = []GovernanceStatus{GovernanceApproved, GovernancePending, GovernanceRejected}

// Visibility controls whether an item is listed publicly.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// PricingModels lists the known pricing models.
var PricingModels = []string{"Free", "Subscription", "Pay-per-use", "Enterprise", "Custom"}

// UsageStats holds invocation counters. success+error <= invocations is not enforced.
type UsageStats struct {
	Invocations int64 `json:"invocations"`
	Success     int64 `json:"success"`
	Error       int64 `json:"error"`
}

// AuditLog is a single append-only audit record.
type AuditLog struct {
	Time   string `json:"time"`
	Action string `json:"action"`
	User   string `json:"user"`
}

// Version is a release entry; slice order is chronological.
type Version struct {
	V         string `json:"v"`
	Changelog string `json:"changelog"`
}

// Position is a node location on the builder canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is the display payload of a workflow node.
type NodeData struct {
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
	// Ref optionally points at the id of a registered item.
	Ref string `json:"ref,omitempty"`
}

// WorkflowNode is a node of a builder graph.
type WorkflowNode struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Data     NodeData  `json:"data"`
	Position *Position `json:"position,omitempty"`
}

// WorkflowEdge connects two workflow nodes.
type WorkflowEdge struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Animated bool   `json:"animated,omitempty"`
}

// Workflow is the graph saved from the builder.
type Workflow struct {
	Nodes []WorkflowNode `json:"nodes"`
	Edges []WorkflowEdge `json:"edges"`
}

// Item is a registered agent or MCP server. Every field is optional on the
// wire; read through the *Of accessors to get defaults applied.
type Item struct {
	ID               string           `json:"id,omitempty"`
	Name             string           `json:"name,omitempty"`
	Description      string           `json:"description,omitempty"`
	Type             string           `json:"type,omitempty"`
	Endpoint         string           `json:"endpoint,omitempty"`
	Compatible       []string         `json:"compatible,omitempty"`
	Instructions     string           `json:"instructions,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
	Status           Status           `json:"status,omitempty"`
	PricingModel     string           `json:"pricingModel,omitempty"`
	Verified         bool             `json:"verified,omitempty"`
	GovernanceStatus GovernanceStatus `json:"governanceStatus,omitempty"`
	Visibility       Visibility       `json:"visibility,omitempty"`
	Dependencies     []string         `json:"dependencies,omitempty"`
	UsageStats       *UsageStats      `json:"usageStats,omitempty"`
	AuditLogs        []AuditLog       `json:"auditLogs,omitempty"`
	Comments         []string         `json:"comments,omitempty"`
	Versions         []Version        `json:"versions,omitempty"`
	Workflow         *Workflow        `json:"workflow,omitempty"`

	// Extra keeps fields this type does not model so imports survive export.
	Extra map[string]json.RawMessage `json:"-"`
}

// Top-level document keys for the two collections.
const (
	KeyAgents     = "agents"
	KeyMCPServers = "mcpServers"
)

// Snapshot is the pair of collections that make up the registry.
type Snapshot struct {
	Agents     []*Item `json:"agents"`
	MCPServers []*Item `json:"mcpServers"`
}

// Collection returns the slice for kind.
func (s Snapshot) Collection(kind Kind) []*Item {
	if kind == KindAgent {
		return s.Agents
	}
	return s.MCPServers
}

// All returns agents followed by MCP servers.
func (s Snapshot) All() []*Item {
	all := make([]*Item, 0, len(s.Agents)+len(s.MCPServers))
	all = append(all, s.Agents...)
	return append(all, s.MCPServers...)
}

// Clone deep-copies both collections.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{Agents: CloneItems(s.Agents), MCPServers: CloneItems(s.MCPServers)}
}

var knownFields = func() map[string]bool {
	known := make(map[string]bool)
	t := reflect.TypeOf(Item{})
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			known[name] = true
		}
	}
	return known
}()

type itemAlias Item

// UnmarshalJSON decodes an item and stashes unmodelled fields in Extra.
// Known fields with a value of the wrong type are coerced where possible and
// otherwise kept in Extra as they were; only a non-object fails.
func (it *Item) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var alias itemAlias
	var rejected map[string]json.RawMessage
	if err := json.Unmarshal(data, &alias); err != nil {
		if alias, rejected, err = decodeLenient(raw); err != nil {
			return err
		}
	}
	for k := range raw {
		if knownFields[k] && rejected[k] == nil {
			delete(raw, k)
		}
	}
	*it = Item(alias)
	if len(raw) > 0 {
		it.Extra = raw
	}
	return nil
}

// MarshalJSON encodes an item including any Extra fields.
func (it Item) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(itemAlias(it))
	if err != nil || len(it.Extra) == 0 {
		return data, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range it.Extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// Clone returns a deep copy of the item. A nil item clones to nil.
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	c := *it
	c.Compatible = cloneStrings(it.Compatible)
	c.Tags = cloneStrings(it.Tags)
	c.Dependencies = cloneStrings(it.Dependencies)
	c.Comments = cloneStrings(it.Comments)
	if it.UsageStats != nil {
		u := *it.UsageStats
		c.UsageStats = &u
	}
	if it.AuditLogs != nil {
		c.AuditLogs = append([]AuditLog(nil), it.AuditLogs...)
	}
	if it.Versions != nil {
		c.Versions = append([]Version(nil), it.Versions...)
	}
	if it.Workflow != nil {
		w := Workflow{
			Nodes: append([]WorkflowNode(nil), it.Workflow.Nodes...),
			Edges: append([]WorkflowEdge(nil), it.Workflow.Edges...),
		}
		for i := range w.Nodes {
			if w.Nodes[i].Position != nil {
				p := *w.Nodes[i].Position
				w.Nodes[i].Position = &p
			}
		}
		c.Workflow = &w
	}
	if it.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(it.Extra))
		for k, v := range it.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &c
}

// CloneItems deep-copies a slice of items, preserving nil entries.
func CloneItems(items []*Item) []*Item {
	if items == nil {
		return nil
	}
	out := make([]*Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
