// Package nlp turns free-text descriptions into registry drafts and texts
// into embedding vectors, using an OpenAI-compatible endpoint.
package nlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

// SystemPrompt instructs the model to extract registry fields.
const SystemPrompt = "You are an expert at extracting structured agent/MCP details from natural language."

// MsgUnknownKind is shown when the reply names neither an agent nor an MCP server.
const MsgUnknownKind = "Could not determine type. Please specify agent or MCP in your description."

var (
	// ErrUnknownKind is returned when the extracted details do not say whether
	// the item is an agent or an MCP server.
	ErrUnknownKind = errors.New("could not determine item kind")
	// ErrNotConfigured is returned when no API key is configured.
	ErrNotConfigured = errors.New("language model is not configured")
)

// Classifier extracts a draft item and its collection from a description.
type Classifier interface {
	Classify(ctx context.Context, text string) (*models.Item, models.Kind, error)
}

// Embedder maps texts to vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// ParseDetails converts a model reply into a draft item. A reply that is not
// a JSON object becomes an item named after the reply. The kind comes from
// the "type" or "role" field; ids are "<kind>-<unix millis>".
func ParseDetails(content string, now time.Time) (*models.Item, models.Kind, error) {
	content = strings.TrimSpace(content)
	raw := []byte(stripFence(content))

	var head map[string]any
	var item models.Item
	if err := json.Unmarshal(raw, &head); err != nil || head == nil {
		item = models.Item{Name: content}
		head = map[string]any{}
	} else if err := json.Unmarshal(raw, &item); err != nil {
		return nil, "", fmt.Errorf("decode details: %w", err)
	}

	kind, ok := kindOf(head["type"])
	if !ok {
		kind, ok = kindOf(head["role"])
	}
	if !ok {
		return nil, "", ErrUnknownKind
	}
	item.ID = fmt.Sprintf("%s-%d", kind, now.UnixMilli())
	return &item, kind, nil
}

func kindOf(v any) (models.Kind, bool) {
	s, _ := v.(string)
	switch s {
	case string(models.KindAgent):
		return models.KindAgent, true
	case string(models.KindMCP):
		return models.KindMCP, true
	}
	return "", false
}

// stripFence removes a ```json fenced block wrapper if present.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
