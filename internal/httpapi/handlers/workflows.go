package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"

	"github.com/agentmatrix-dev/agentmatrix/internal/state"
	"github.com/agentmatrix-dev/agentmatrix/internal/workflow"
	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

// WorkflowHandler backs the visual builder.
type WorkflowHandler struct {
	store  *state.Store
	now    func() time.Time
	logger zerolog.Logger
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(store *state.Store, logger zerolog.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		store:  store,
		now:    time.Now,
		logger: logger.With().Str("handler", "workflows").Logger(),
	}
}

// Graphs from the canvas carry layout fields the models do not describe, so
// bodies are decoded by hand rather than validated against a strict schema.
type WorkflowSaveInput struct {
	UserHeaders
	RawBody []byte `contentType:"application/json"`
}

type WorkflowFileInput struct {
	RawBody []byte `contentType:"application/json"`
}

// RegisterRoutes registers builder endpoints
func (h *WorkflowHandler) RegisterRoutes(api huma.API, pathPrefix string) {
	tags := []string{"builder"}

	huma.Register(api, huma.Operation{
		OperationID: "default-workflow",
		Method:      http.MethodGet,
		Path:        pathPrefix + "/workflows/default",
		Summary:     "Starter graph for the builder",
		Tags:        tags,
	}, func(ctx context.Context, input *struct{}) (*Response[models.Workflow], error) {
		return &Response[models.Workflow]{Body: workflow.Default()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "load-workflow",
		Method:      http.MethodPost,
		Path:        pathPrefix + "/workflows/load",
		Summary:     "Parse and check an exported workflow file",
		Tags:        tags,
	}, func(ctx context.Context, input *WorkflowFileInput) (*Response[models.Workflow], error) {
		w, err := workflow.Decode(input.RawBody)
		if err != nil {
			return nil, huma.Error400BadRequest(workflow.MsgInvalidFile)
		}
		return &Response[models.Workflow]{Body: w}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "save-workflow",
		Method:        http.MethodPost,
		Path:          pathPrefix + "/workflows",
		Summary:       "Save a builder graph as a new agent or MCP server",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, h.save)
}

func (h *WorkflowHandler) save(ctx context.Context, input *WorkflowSaveInput) (*Response[ItemResponse], error) {
	user := input.Identity()
	if !user.CanBuild() {
		return nil, huma.Error403Forbidden("only admins and developers can save workflows")
	}

	var req workflow.SaveRequest
	if err := json.Unmarshal(input.RawBody, &req); err != nil {
		return nil, huma.Error400BadRequest(workflow.MsgInvalidFile)
	}

	it, err := workflow.ToItem(req, h.store.Snapshot().MCPServers, h.now())
	if err != nil {
		if errors.Is(err, workflow.ErrIncomplete) {
			h.store.Report(user, workflow.MsgIncomplete)
			return nil, huma.Error422UnprocessableEntity(workflow.MsgIncomplete)
		}
		return nil, huma.Error400BadRequest(err.Error())
	}

	saved, err := h.store.Add(ctx, req.Kind, it, user)
	if err != nil {
		return nil, toHTTPError("Failed to save workflow", err)
	}
	h.logger.Info().Str("id", saved.ID).Str("kind", string(req.Kind)).Msg("workflow saved")
	return &Response[ItemResponse]{Body: ItemResponse{Kind: req.Kind, Item: saved}}, nil
}
