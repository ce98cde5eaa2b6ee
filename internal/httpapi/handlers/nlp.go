package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"

	"github.com/agentmatrix-dev/agentmatrix/internal/metrics"
	"github.com/agentmatrix-dev/agentmatrix/internal/nlp"
	"github.com/agentmatrix-dev/agentmatrix/internal/query"
	"github.com/agentmatrix-dev/agentmatrix/internal/state"
)

// MsgNLPFailed is shown when the language model call fails.
const MsgNLPFailed = "NLP registration failed. Please check your API key and try again."

// NLPHandler registers items from free text and ranks items by meaning.
type NLPHandler struct {
	store      *state.Store
	classifier nlp.Classifier
	embedder   nlp.Embedder
	logger     zerolog.Logger
}

// NewNLPHandler creates a new NLP handler. Either model may be nil, in which
// case its endpoint answers 503.
func NewNLPHandler(store *state.Store, classifier nlp.Classifier, embedder nlp.Embedder, logger zerolog.Logger) *NLPHandler {
	return &NLPHandler{
		store:      store,
		classifier: classifier,
		embedder:   embedder,
		logger:     logger.With().Str("handler", "nlp").Logger(),
	}
}

type NLPRegisterInput struct {
	UserHeaders
	Body struct {
		Text string `json:"text" minLength:"1" doc:"Plain language description of the agent or MCP server"`
	}
}

type SemanticSearchInput struct {
	Q     string `query:"q" required:"true" minLength:"1"`
	Limit int    `query:"limit" default:"10" minimum:"0"`
}

// RegisterRoutes registers NLP endpoints
func (h *NLPHandler) RegisterRoutes(api huma.API, pathPrefix string) {
	tags := []string{"nlp"}

	huma.Register(api, huma.Operation{
		OperationID:   "nlp-register",
		Method:        http.MethodPost,
		Path:          pathPrefix + "/nlp/register",
		Summary:       "Register an item from a natural language description",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, h.register)

	huma.Register(api, huma.Operation{
		OperationID: "semantic-search",
		Method:      http.MethodGet,
		Path:        pathPrefix + "/search/semantic",
		Summary:     "Rank items by embedding similarity to a query",
		Tags:        tags,
	}, h.search)
}

func (h *NLPHandler) register(ctx context.Context, input *NLPRegisterInput) (*Response[ItemResponse], error) {
	user := input.Identity()
	if h.classifier == nil {
		return nil, huma.Error503ServiceUnavailable(MsgNLPFailed)
	}

	draft, kind, err := h.classifier.Classify(ctx, input.Body.Text)
	if err != nil {
		h.logger.Warn().Err(err).Msg("nlp classification failed")
		switch {
		case errors.Is(err, nlp.ErrUnknownKind):
			h.store.Report(user, nlp.MsgUnknownKind)
			return nil, huma.Error422UnprocessableEntity(nlp.MsgUnknownKind)
		case errors.Is(err, nlp.ErrNotConfigured):
			h.store.Report(user, MsgNLPFailed)
			return nil, huma.Error503ServiceUnavailable(MsgNLPFailed)
		}
		h.store.Report(user, MsgNLPFailed)
		return nil, huma.Error502BadGateway(MsgNLPFailed, err)
	}

	it, err := h.store.Add(ctx, kind, draft, user)
	if err != nil {
		return nil, toHTTPError("Failed to register item", err)
	}
	metrics.Registrations.WithLabelValues(string(kind), "nlp").Inc()
	return &Response[ItemResponse]{Body: ItemResponse{Kind: kind, Item: it}}, nil
}

func (h *NLPHandler) search(ctx context.Context, input *SemanticSearchInput) (*Response[[]query.Scored], error) {
	if h.embedder == nil {
		return nil, huma.Error503ServiceUnavailable("Semantic search is not configured")
	}
	metrics.Queries.WithLabelValues("semantic").Inc()

	items := h.store.Snapshot().All()
	texts := make([]string, 0, len(items)+1)
	texts = append(texts, input.Q)
	for _, it := range items {
		texts = append(texts, query.SearchText(it))
	}

	vectors, err := h.embedder.Embed(ctx, texts)
	if err != nil {
		if errors.Is(err, nlp.ErrNotConfigured) {
			return nil, huma.Error503ServiceUnavailable("Semantic search is not configured")
		}
		h.logger.Warn().Err(err).Msg("embedding failed")
		return nil, huma.Error502BadGateway("Embedding request failed", err)
	}

	return &Response[[]query.Scored]{Body: query.RankBySimilarity(vectors[0], items, vectors[1:], input.Limit)}, nil
}
