package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"

	"github.com/agentmatrix-dev/agentmatrix/internal/metrics"
	"github.com/agentmatrix-dev/agentmatrix/internal/registry/exporter"
	"github.com/agentmatrix-dev/agentmatrix/internal/registry/importer"
	"github.com/agentmatrix-dev/agentmatrix/internal/state"
	"github.com/agentmatrix-dev/agentmatrix/internal/validation"
	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

// TransferHandler imports and exports whole registry documents.
type TransferHandler struct {
	store    *state.Store
	importer *importer.Service
	exporter *exporter.Service
	logger   zerolog.Logger
}

// NewTransferHandler creates a new import/export handler
func NewTransferHandler(store *state.Store, imp *importer.Service, logger zerolog.Logger) *TransferHandler {
	return &TransferHandler{
		store:    store,
		importer: imp,
		exporter: exporter.NewService(store),
		logger:   logger.With().Str("handler", "transfer").Logger(),
	}
}

type ExportInput struct {
	Format string `query:"format" enum:"json,yaml,yml" default:"json"`
}

type ExportOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

type ImportInput struct {
	UserHeaders
	RawBody []byte `contentType:"application/json"`
}

type ImportURLInput struct {
	UserHeaders
	Body struct {
		URL string `json:"url" doc:"HTTP(S) location of a registry document"`
	}
}

type ImportResult struct {
	Agents     int    `json:"agents"`
	MCPServers int    `json:"mcpServers"`
	Message    string `json:"message"`
}

// RegisterRoutes registers import and export endpoints
func (h *TransferHandler) RegisterRoutes(api huma.API, pathPrefix string) {
	tags := []string{"transfer"}

	huma.Register(api, huma.Operation{
		OperationID: "export-registry",
		Method:      http.MethodGet,
		Path:        pathPrefix + "/export",
		Summary:     "Download the registry as JSON or YAML",
		Tags:        tags,
	}, h.export)

	huma.Register(api, huma.Operation{
		OperationID: "import-registry",
		Method:      http.MethodPost,
		Path:        pathPrefix + "/import",
		Summary:     "Replace the registry with an uploaded document",
		Tags:        tags,
	}, func(ctx context.Context, input *ImportInput) (*Response[ImportResult], error) {
		snap, err := h.importer.ImportBytes(input.RawBody)
		return h.apply(ctx, input.Identity(), snap, err)
	})

	huma.Register(api, huma.Operation{
		OperationID: "import-registry-url",
		Method:      http.MethodPost,
		Path:        pathPrefix + "/import/url",
		Summary:     "Replace the registry with a document fetched from a URL",
		Tags:        tags,
	}, func(ctx context.Context, input *ImportURLInput) (*Response[ImportResult], error) {
		if err := validation.ValidateURL(input.Body.URL); err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		snap, err := h.importer.ImportURL(ctx, input.Body.URL)
		return h.apply(ctx, input.Identity(), snap, err)
	})
}

func (h *TransferHandler) export(ctx context.Context, input *ExportInput) (*ExportOutput, error) {
	format, err := exporter.ParseFormat(input.Format)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	data, err := h.exporter.Export(format)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to export registry", err)
	}
	return &ExportOutput{
		ContentType:        format.ContentType(),
		ContentDisposition: "attachment; filename=" + strconv.Quote(format.Filename()),
		Body:               data,
	}, nil
}

func (h *TransferHandler) apply(ctx context.Context, user state.User, snap models.Snapshot, err error) (*Response[ImportResult], error) {
	if err != nil {
		metrics.Imports.WithLabelValues("failed").Inc()
		msg := err.Error()
		var ierr *importer.Error
		if errors.As(err, &ierr) {
			msg = ierr.Message
		}
		h.store.Report(user, msg)
		h.logger.Warn().Err(err).Msg("import failed")
		return nil, huma.Error400BadRequest(msg)
	}

	h.store.Replace(ctx, snap, user)
	metrics.Imports.WithLabelValues("ok").Inc()
	return &Response[ImportResult]{Body: ImportResult{
		Agents:     len(snap.Agents),
		MCPServers: len(snap.MCPServers),
		Message:    fmt.Sprintf("Imported %d agents and %d MCP servers", len(snap.Agents), len(snap.MCPServers)),
	}}, nil
}
