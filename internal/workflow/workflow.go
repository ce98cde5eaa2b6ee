// Package workflow validates builder graphs and turns them into registry
// items.
package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

// Node types understood by the builder.
const (
	NodeAgent   = "agent"
	NodeMCP     = "mcp"
	NodeDefault = "default"
)

// ExportFilename is the download name of an exported graph.
const ExportFilename = "workflow.json"

// Description is set on every item saved from the builder.
const Description = "Created via Builder"

// Messages shown to the user.
const (
	MsgIncomplete  = "Please add at least one Agent and one MCP Server node before saving."
	MsgInvalidFile = "Invalid workflow file."
)

var (
	// ErrIncomplete is returned when a graph lacks an agent or an MCP node.
	ErrIncomplete = errors.New("workflow needs an agent node and an MCP server node")
	// ErrInvalidGraph is returned for structural problems such as dangling edges.
	ErrInvalidGraph = errors.New("invalid workflow graph")
	// ErrInvalidFile is returned when an imported graph cannot be parsed.
	ErrInvalidFile = errors.New("invalid workflow file")
)

// Default returns the starter graph: one agent wired to one MCP server.
func Default() models.Workflow {
	return models.Workflow{
		Nodes: []models.WorkflowNode{
			{ID: "1", Type: NodeAgent, Data: models.NodeData{Label: "Agent", Icon: "🤖", Color: "#4f8cff"}, Position: &models.Position{X: 100, Y: 100}},
			{ID: "2", Type: NodeMCP, Data: models.NodeData{Label: "MCP Server", Icon: "🗄️", Color: "#ffb84f"}, Position: &models.Position{X: 400, Y: 100}},
		},
		Edges: []models.WorkflowEdge{
			{ID: "e1-2", Source: "1", Target: "2", Animated: true},
		},
	}
}

// Validate checks that the graph has an agent node and an MCP node, that node
// ids are unique and that every edge joins existing nodes.
func Validate(w models.Workflow) error {
	var errs []error
	hasAgent, hasMCP := false, false
	seen := make(map[string]bool, len(w.Nodes))
	for _, n := range w.Nodes {
		switch n.Type {
		case NodeAgent:
			hasAgent = true
		case NodeMCP:
			hasMCP = true
		}
		if n.ID == "" {
			errs = append(errs, fmt.Errorf("%w: node without id", ErrInvalidGraph))
			continue
		}
		if seen[n.ID] {
			errs = append(errs, fmt.Errorf("%w: duplicate node id %q", ErrInvalidGraph, n.ID))
		}
		seen[n.ID] = true
	}
	if !hasAgent || !hasMCP {
		errs = append([]error{ErrIncomplete}, errs...)
	}
	for _, e := range w.Edges {
		if !seen[e.Source] || !seen[e.Target] {
			errs = append(errs, fmt.Errorf("%w: edge %q references an unknown node", ErrInvalidGraph, e.ID))
		}
	}
	return errors.Join(errs...)
}

// SaveRequest describes a builder save.
type SaveRequest struct {
	Kind models.Kind `json:"kind"`
	// Name defaults to "New Agent" or "New MCP Server".
	Name string `json:"name,omitempty"`
	// Type is the item type, e.g. "rag"; it defaults to "default".
	Type  string          `json:"type,omitempty"`
	Graph models.Workflow `json:"workflow"`
}

// ToItem validates req.Graph and builds the item to register. Dependencies
// are the MCP servers referenced by MCP nodes that an agent node points at;
// a node reference resolves by id or, case-insensitively, by name.
func ToItem(req SaveRequest, mcpServers []*models.Item, now time.Time) (*models.Item, error) {
	if req.Kind != models.KindAgent && req.Kind != models.KindMCP {
		return nil, fmt.Errorf("%w: kind must be agent or mcp", ErrInvalidGraph)
	}
	if err := Validate(req.Graph); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "New " + req.Kind.Label()
	}
	itemType := req.Type
	if itemType == "" {
		itemType = NodeDefault
	}
	graph := Clone(req.Graph)
	return &models.Item{
		ID:           fmt.Sprintf("%s-%d", req.Kind, now.UnixMilli()),
		Name:         name,
		Description:  Description,
		Type:         itemType,
		Dependencies: dependencies(graph, mcpServers),
		Workflow:     &graph,
	}, nil
}

func dependencies(w models.Workflow, mcpServers []*models.Item) []string {
	nodes := make(map[string]models.WorkflowNode, len(w.Nodes))
	for _, n := range w.Nodes {
		nodes[n.ID] = n
	}
	var deps []string
	added := map[string]bool{}
	for _, e := range w.Edges {
		src, dst := nodes[e.Source], nodes[e.Target]
		if src.Type != NodeAgent || dst.Type != NodeMCP {
			continue
		}
		if id := resolve(dst.Data.Ref, mcpServers); id != "" && !added[id] {
			added[id] = true
			deps = append(deps, id)
		}
	}
	return deps
}

func resolve(ref string, mcpServers []*models.Item) string {
	if ref == "" {
		return ""
	}
	for _, m := range mcpServers {
		if m != nil && m.ID == ref {
			return m.ID
		}
	}
	for _, m := range mcpServers {
		if m != nil && strings.EqualFold(m.Name, ref) {
			return m.ID
		}
	}
	return ""
}

// Clone deep-copies a graph.
func Clone(w models.Workflow) models.Workflow {
	out := models.Workflow{
		Nodes: make([]models.WorkflowNode, len(w.Nodes)),
		Edges: make([]models.WorkflowEdge, len(w.Edges)),
	}
	copy(out.Edges, w.Edges)
	for i, n := range w.Nodes {
		if n.Position != nil {
			p := *n.Position
			n.Position = &p
		}
		out.Nodes[i] = n
	}
	return out
}

// Encode renders a graph for export.
func Encode(w models.Workflow) ([]byte, error) {
	w = Clone(w)
	return json.MarshalIndent(w, "", "  ")
}

// Decode parses an exported graph. Missing node or edge lists become empty.
func Decode(data []byte) (models.Workflow, error) {
	var w models.Workflow
	if err := json.Unmarshal(data, &w); err != nil {
		return models.Workflow{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if w.Nodes == nil {
		w.Nodes = []models.WorkflowNode{}
	}
	if w.Edges == nil {
		w.Edges = []models.WorkflowEdge{}
	}
	return w, nil
}
