package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"

	"github.com/agentmatrix-dev/agentmatrix/internal/activity"
	"github.com/agentmatrix-dev/agentmatrix/internal/metrics"
	"github.com/agentmatrix-dev/agentmatrix/internal/query"
	"github.com/agentmatrix-dev/agentmatrix/internal/simulate"
	"github.com/agentmatrix-dev/agentmatrix/internal/snippet"
	"github.com/agentmatrix-dev/agentmatrix/internal/state"
	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

// ItemHandler serves registry queries and item lifecycle operations.
type ItemHandler struct {
	store  *state.Store
	feed   *activity.Feed
	sim    *simulate.Simulator
	logger zerolog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(store *state.Store, feed *activity.Feed, sim *simulate.Simulator, logger zerolog.Logger) *ItemHandler {
	return &ItemHandler{
		store:  store,
		feed:   feed,
		sim:    sim,
		logger: logger.With().Str("handler", "items").Logger(),
	}
}

// Input types
type QueryItemsInput struct {
	Q          string   `query:"q" doc:"Free text matched against name, description and tags"`
	Tags       []string `query:"tags" doc:"Tags that must all be present"`
	Pricing    []string `query:"pricing" doc:"Accepted pricing models"`
	Verified   bool     `query:"verified"`
	Type       string   `query:"type"`
	Governance string   `query:"governance" enum:"pending,approved,rejected"`
	Visibility string   `query:"visibility" enum:"public,private"`
	Sort       string   `query:"sort" doc:"Field to sort by, e.g. name or usageStats.invocations"`
	Order      string   `query:"order" enum:"asc,desc" default:"asc"`
	Group      string   `query:"group" default:"none" doc:"Field to group by, or none"`
}

type ItemIDInput struct {
	ID string `path:"id"`
}

type ItemActionInput struct {
	UserHeaders
	ID string `path:"id"`
}

type RegisterItem struct {
	Name         string   `json:"name,omitempty"`
	Description  string   `json:"description,omitempty"`
	Type         string   `json:"type,omitempty"`
	Endpoint     string   `json:"endpoint,omitempty"`
	Compatible   []string `json:"compatible,omitempty" doc:"Compatible frameworks; comma separated entries are split"`
	Tags         []string `json:"tags,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	PricingModel string   `json:"pricingModel,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
	Visibility   string   `json:"visibility,omitempty" enum:"public,private"`
}

type RegisterInput struct {
	UserHeaders
	Body RegisterItem
}

type CommentInput struct {
	UserHeaders
	ID   string `path:"id"`
	Body struct {
		Text string `json:"text" minLength:"1"`
	}
}

type VisibilityInput struct {
	UserHeaders
	ID   string `path:"id"`
	Body struct {
		Visibility string `json:"visibility,omitempty" enum:"public,private" doc:"Omit to toggle"`
	}
}

type VersionInput struct {
	UserHeaders
	ID   string `path:"id"`
	Body models.Version
}

type SandboxInput struct {
	ID   string `path:"id"`
	Body struct {
		Input string `json:"input"`
	}
}

type SandboxResult struct {
	Output string `json:"output"`
}

type SnippetResult struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type GovernanceInput struct {
	Status string `query:"status" enum:"pending,approved,rejected"`
}

// RegisterRoutes registers item endpoints
func (h *ItemHandler) RegisterRoutes(api huma.API, pathPrefix string) {
	tags := []string{"items"}

	huma.Register(api, huma.Operation{
		OperationID: "query-items",
		Method:      http.MethodGet,
		Path:        pathPrefix + "/items",
		Summary:     "Filter, sort and group the registry",
		Tags:        tags,
	}, h.queryItems)

	huma.Register(api, huma.Operation{
		OperationID: "get-item",
		Method:      http.MethodGet,
		Path:        pathPrefix + "/items/{id}",
		Summary:     "Get an agent or MCP server by id",
		Tags:        tags,
	}, h.getItem)

	huma.Register(api, huma.Operation{
		OperationID:   "register-agent",
		Method:        http.MethodPost,
		Path:          pathPrefix + "/agents",
		Summary:       "Register an agent",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RegisterInput) (*Response[ItemResponse], error) {
		return h.register(ctx, models.KindAgent, input)
	})

	huma.Register(api, huma.Operation{
		OperationID:   "register-server",
		Method:        http.MethodPost,
		Path:          pathPrefix + "/servers",
		Summary:       "Register an MCP server",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RegisterInput) (*Response[ItemResponse], error) {
		return h.register(ctx, models.KindMCP, input)
	})

	huma.Register(api, huma.Operation{
		OperationID: "unregister-item",
		Method:      http.MethodDelete,
		Path:        pathPrefix + "/items/{id}",
		Summary:     "Unregister an item (admin)",
		Tags:        tags,
	}, h.unregister)

	huma.Register(api, huma.Operation{
		OperationID: "approve-item",
		Method:      http.MethodPost,
		Path:        pathPrefix + "/items/{id}/approve",
		Summary:     "Approve an item (admin)",
		Tags:        []string{"governance"},
	}, func(ctx context.Context, input *ItemActionInput) (*Response[ItemResponse], error) {
		return h.itemResult(h.store.Approve(ctx, input.ID, input.Identity()))
	})

	huma.Register(api, huma.Operation{
		OperationID: "reject-item",
		Method:      http.MethodPost,
		Path:        pathPrefix + "/items/{id}/reject",
		Summary:     "Reject an item (admin)",
		Tags:        []string{"governance"},
	}, func(ctx context.Context, input *ItemActionInput) (*Response[ItemResponse], error) {
		return h.itemResult(h.store.Reject(ctx, input.ID, input.Identity()))
	})

	huma.Register(api, huma.Operation{
		OperationID: "governance-view",
		Method:      http.MethodGet,
		Path:        pathPrefix + "/governance",
		Summary:     "List items by governance status",
		Tags:        []string{"governance"},
	}, func(ctx context.Context, input *GovernanceInput) (*Response[models.Snapshot], error) {
		return &Response[models.Snapshot]{Body: query.GovernanceView(h.store.Snapshot(), input.Status)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "comment-item",
		Method:        http.MethodPost,
		Path:          pathPrefix + "/items/{id}/comments",
		Summary:       "Add a comment",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CommentInput) (*Response[ItemResponse], error) {
		return h.itemResult(h.store.AddComment(ctx, input.ID, input.Identity(), input.Body.Text))
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-visibility",
		Method:      http.MethodPut,
		Path:        pathPrefix + "/items/{id}/visibility",
		Summary:     "Set or toggle public/private visibility",
		Tags:        tags,
	}, func(ctx context.Context, input *VisibilityInput) (*Response[ItemResponse], error) {
		if input.Body.Visibility == "" {
			return h.itemResult(h.store.ToggleVisibility(ctx, input.ID, input.Identity()))
		}
		return h.itemResult(h.store.SetVisibility(ctx, input.ID, models.Visibility(input.Body.Visibility), input.Identity()))
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-version",
		Method:        http.MethodPost,
		Path:          pathPrefix + "/items/{id}/versions",
		Summary:       "Publish a version",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *VersionInput) (*Response[ItemResponse], error) {
		return h.itemResult(h.store.AddVersion(ctx, input.ID, input.Identity(), input.Body.V, input.Body.Changelog))
	})

	huma.Register(api, huma.Operation{
		OperationID: "check-health",
		Method:      http.MethodGet,
		Path:        pathPrefix + "/items/{id}/health",
		Summary:     "Run a simulated health check",
		Tags:        []string{"monitoring"},
	}, h.checkHealth)

	huma.Register(api, huma.Operation{
		OperationID: "monitor",
		Method:      http.MethodGet,
		Path:        pathPrefix + "/monitor",
		Summary:     "Simulated monitoring rows for every item",
		Tags:        []string{"monitoring"},
	}, func(ctx context.Context, input *struct{}) (*Response[[]simulate.Metric], error) {
		return &Response[[]simulate.Metric]{Body: h.sim.Monitor(h.store.Snapshot())}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "sandbox",
		Method:      http.MethodPost,
		Path:        pathPrefix + "/items/{id}/sandbox",
		Summary:     "Send a test input to the item (simulated)",
		Tags:        []string{"monitoring"},
	}, func(ctx context.Context, input *SandboxInput) (*Response[SandboxResult], error) {
		it, _, err := h.store.Get(input.ID)
		if err != nil {
			return nil, toHTTPError("Failed to get item", err)
		}
		return &Response[SandboxResult]{Body: SandboxResult{Output: simulate.Sandbox(it, input.Body.Input)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "sdk-example",
		Method:      http.MethodGet,
		Path:        pathPrefix + "/items/{id}/sdk",
		Summary:     "SDK example for the item",
		Tags:        []string{"integration"},
	}, func(ctx context.Context, input *ItemIDInput) (*Response[SnippetResult], error) {
		return h.snippet(input.ID, snippet.SDKExample, snippet.SDKFilename)
	})

	huma.Register(api, huma.Operation{
		OperationID: "integration-instructions",
		Method:      http.MethodGet,
		Path:        pathPrefix + "/items/{id}/instructions",
		Summary:     "Integration instructions as markdown",
		Tags:        []string{"integration"},
	}, func(ctx context.Context, input *ItemIDInput) (*Response[SnippetResult], error) {
		return h.snippet(input.ID, snippet.Instructions, snippet.InstructionsFilename)
	})
}

func (h *ItemHandler) queryItems(ctx context.Context, input *QueryItemsInput) (*Response[query.View], error) {
	metrics.Queries.WithLabelValues("http").Inc()
	params := query.Params{
		Filter: query.Filter{
			Query:        input.Q,
			Tags:         splitList(input.Tags),
			Pricing:      splitList(input.Pricing),
			VerifiedOnly: input.Verified,
			Type:         input.Type,
			Governance:   input.Governance,
			Visibility:   input.Visibility,
		},
		SortKey: input.Sort,
		Order:   query.ParseOrder(input.Order),
		GroupBy: input.Group,
	}
	return &Response[query.View]{Body: query.Run(h.store.Snapshot(), params)}, nil
}

func (h *ItemHandler) getItem(ctx context.Context, input *ItemIDInput) (*Response[ItemResponse], error) {
	it, kind, err := h.store.Get(input.ID)
	if err != nil {
		return nil, toHTTPError("Failed to get item", err)
	}
	return &Response[ItemResponse]{Body: ItemResponse{Kind: kind, Item: it}}, nil
}

func (h *ItemHandler) register(ctx context.Context, kind models.Kind, input *RegisterInput) (*Response[ItemResponse], error) {
	b := input.Body
	draft := &models.Item{
		Name:         b.Name,
		Description:  b.Description,
		Type:         b.Type,
		Endpoint:     b.Endpoint,
		Compatible:   splitList(b.Compatible),
		Tags:         splitList(b.Tags),
		Dependencies: splitList(b.Dependencies),
		PricingModel: b.PricingModel,
		Instructions: b.Instructions,
		Visibility:   models.Visibility(b.Visibility),
	}
	it, err := h.store.Register(ctx, kind, draft, input.Identity())
	if err != nil {
		return nil, toHTTPError("Failed to register item", err)
	}
	h.logger.Info().Str("id", it.ID).Str("kind", string(kind)).Str("name", it.Name).Msg("item registered")
	return &Response[ItemResponse]{Body: ItemResponse{Kind: kind, Item: it}}, nil
}

func (h *ItemHandler) unregister(ctx context.Context, input *ItemActionInput) (*Response[EmptyResponse], error) {
	if err := h.store.Unregister(ctx, input.ID, input.Identity()); err != nil {
		return nil, toHTTPError("Failed to unregister item", err)
	}
	return &Response[EmptyResponse]{Body: EmptyResponse{Message: "Item unregistered"}}, nil
}

func (h *ItemHandler) checkHealth(ctx context.Context, input *ItemIDInput) (*Response[simulate.HealthResult], error) {
	it, kind, err := h.store.Get(input.ID)
	if err != nil {
		return nil, toHTTPError("Failed to get item", err)
	}
	result := h.sim.HealthCheck(it)
	if _, err := h.store.SetStatus(ctx, it.ID, result.Status); err != nil {
		h.logger.Warn().Err(err).Str("id", it.ID).Msg("failed to record health status")
	}
	h.feed.Publish(activity.Event{
		Type:     activity.TypeHealth,
		ItemID:   it.ID,
		ItemName: it.Name,
		Kind:     string(kind),
		Message:  string(result.Status),
	})
	return &Response[simulate.HealthResult]{Body: result}, nil
}

func (h *ItemHandler) snippet(id string, render func(*models.Item) (string, error), filename func(*models.Item) string) (*Response[SnippetResult], error) {
	it, _, err := h.store.Get(id)
	if err != nil {
		return nil, toHTTPError("Failed to get item", err)
	}
	content, err := render(it)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to render snippet", err)
	}
	return &Response[SnippetResult]{Body: SnippetResult{Filename: filename(it), Content: content}}, nil
}

func (h *ItemHandler) itemResult(it *models.Item, err error) (*Response[ItemResponse], error) {
	if err != nil {
		return nil, toHTTPError("Failed to update item", err)
	}
	_, kind, getErr := h.store.Get(it.ID)
	if getErr != nil {
		kind = ""
	}
	return &Response[ItemResponse]{Body: ItemResponse{Kind: kind, Item: it}}, nil
}
