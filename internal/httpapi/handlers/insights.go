package handlers

import (
	"context"
	"net/http"
	"slices"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"

	"github.com/agentmatrix-dev/agentmatrix/internal/activity"
	"github.com/agentmatrix-dev/agentmatrix/internal/query"
	"github.com/agentmatrix-dev/agentmatrix/internal/state"
)

// InsightsHandler serves read-only analytics over the registry.
type InsightsHandler struct {
	store  *state.Store
	feed   *activity.Feed
	logger zerolog.Logger
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(store *state.Store, feed *activity.Feed, logger zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{
		store:  store,
		feed:   feed,
		logger: logger.With().Str("handler", "insights").Logger(),
	}
}

type ActivityInput struct {
	Limit int `query:"limit" default:"20" minimum:"0" maximum:"500"`
}

type ActivityResult struct {
	Events  []activity.Event `json:"events"`
	Total   int64            `json:"total"`
	Dropped int64            `json:"dropped"`
}

type Dependencies struct {
	Pairings []query.Pairing `json:"pairings"`
	Edges    []query.Edge    `json:"edges"`
}

// RegisterRoutes registers insight endpoints
func (h *InsightsHandler) RegisterRoutes(api huma.API, pathPrefix string) {
	tags := []string{"insights"}

	huma.Register(api, huma.Operation{
		OperationID: "get-stats",
		Method:      http.MethodGet,
		Path:        pathPrefix + "/stats",
		Summary:     "Registry analytics",
		Tags:        tags,
	}, func(ctx context.Context, input *struct{}) (*Response[query.Stats], error) {
		snap := h.store.Snapshot()
		return &Response[query.Stats]{Body: query.Aggregate(snap.Agents, snap.MCPServers)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-recommendations",
		Method:      http.MethodGet,
		Path:        pathPrefix + "/recommendations",
		Summary:     "Agent to MCP server pairings",
		Tags:        tags,
	}, func(ctx context.Context, input *struct{}) (*Response[[]query.Pairing], error) {
		snap := h.store.Snapshot()
		pairings := query.Recommend(snap.Agents, snap.MCPServers)
		if pairings == nil {
			pairings = []query.Pairing{}
		}
		return &Response[[]query.Pairing]{Body: pairings}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-dependencies",
		Method:      http.MethodGet,
		Path:        pathPrefix + "/dependencies",
		Summary:     "Dependency graph edges",
		Tags:        tags,
	}, func(ctx context.Context, input *struct{}) (*Response[Dependencies], error) {
		snap := h.store.Snapshot()
		pairings := query.Recommend(snap.Agents, snap.MCPServers)
		deps := Dependencies{Pairings: pairings, Edges: query.Edges(pairings)}
		if deps.Pairings == nil {
			deps.Pairings = []query.Pairing{}
		}
		if deps.Edges == nil {
			deps.Edges = []query.Edge{}
		}
		return &Response[Dependencies]{Body: deps}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-activity",
		Method:      http.MethodGet,
		Path:        pathPrefix + "/activity",
		Summary:     "Recent registry activity, newest first",
		Tags:        tags,
	}, func(ctx context.Context, input *ActivityInput) (*Response[ActivityResult], error) {
		events := h.feed.Recent(input.Limit)
		slices.Reverse(events)
		return &Response[ActivityResult]{Body: ActivityResult{
			Events:  events,
			Total:   h.feed.Total(),
			Dropped: h.feed.Dropped(),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-audit",
		Method:      http.MethodGet,
		Path:        pathPrefix + "/audit",
		Summary:     "Audit trail across all items",
		Tags:        tags,
	}, func(ctx context.Context, input *struct{}) (*Response[[]query.AuditEntry], error) {
		entries := query.AuditTrail(h.store.Snapshot())
		if entries == nil {
			entries = []query.AuditEntry{}
		}
		return &Response[[]query.AuditEntry]{Body: entries}, nil
	})
}
