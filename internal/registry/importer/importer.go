// Package importer reads registry documents of the form
// {"agents": [...], "mcpServers": [...]} from files, raw bytes or URLs.
// JSON and YAML are both accepted.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

// DefaultTimeout bounds a URL import.
const DefaultTimeout = 30 * time.Second

// maxDocumentSize caps the response body read from a URL.
const maxDocumentSize = 32 << 20

var (
	// ErrInvalidFormat means the document parsed but lacks an "agents" or
	// "mcpServers" array.
	ErrInvalidFormat = errors.New("invalid registry document")
	// ErrUnreadable means the document could not be fetched or parsed.
	ErrUnreadable = errors.New("unreadable registry document")
)

// Messages shown to the user for each failure.
const (
	MsgFileInvalid = "Invalid file format."
	MsgFileParse   = "Failed to parse file."
	MsgURLInvalid  = "Invalid data format from URL."
	MsgURLFetch    = "Failed to fetch or parse data from URL."
)

// Error is an import failure with a user-facing message.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + " (" + e.Err.Error() + ")"
}

func (e *Error) Unwrap() error { return e.Err }

// Service imports registry documents.
type Service struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewService creates an importer with the default URL timeout.
func NewService() *Service {
	return &Service{
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
	}
}

// SetHTTPClient replaces the client used for URL imports.
func (s *Service) SetHTTPClient(c *http.Client) {
	if c != nil {
		s.httpClient = c
	}
}

// SetTimeout overrides the URL import timeout.
func (s *Service) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// ImportBytes decodes an uploaded document.
func (s *Service) ImportBytes(data []byte) (models.Snapshot, error) {
	snap, err := Decode(data)
	if err != nil {
		return models.Snapshot{}, wrap(err, MsgFileInvalid, MsgFileParse)
	}
	return snap, nil
}

// ImportFile reads and decodes the document at path.
func (s *Service) ImportFile(path string) (models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Snapshot{}, &Error{Message: MsgFileParse, Err: fmt.Errorf("%w: %v", ErrUnreadable, err)}
	}
	return s.ImportBytes(data)
}

// ImportURL fetches and decodes the document at rawURL.
func (s *Service) ImportURL(ctx context.Context, rawURL string) (models.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.fetch(ctx, rawURL)
	if err != nil {
		return models.Snapshot{}, &Error{Message: MsgURLFetch, Err: fmt.Errorf("%w: %v", ErrUnreadable, err)}
	}
	snap, err := Decode(data)
	if err != nil {
		return models.Snapshot{}, wrap(err, MsgURLInvalid, MsgURLFetch)
	}
	return snap, nil
}

func (s *Service) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

func wrap(err error, invalidMsg, parseMsg string) error {
	if errors.Is(err, ErrInvalidFormat) {
		return &Error{Message: invalidMsg, Err: err}
	}
	return &Error{Message: parseMsg, Err: err}
}

// Decode parses a JSON or YAML registry document. Both top-level fields must
// be arrays; the items themselves are not validated. Item fields of the wrong
// type are coerced or carried verbatim (see models.Item.UnmarshalJSON); null
// and non-object array entries are dropped.
func Decode(data []byte) (models.Snapshot, error) {
	doc, err := toJSONObject(data)
	if err != nil {
		return models.Snapshot{}, err
	}

	agents, err := decodeCollection(doc, models.KeyAgents)
	if err != nil {
		return models.Snapshot{}, err
	}
	mcpServers, err := decodeCollection(doc, models.KeyMCPServers)
	if err != nil {
		return models.Snapshot{}, err
	}
	return models.Snapshot{Agents: agents, MCPServers: mcpServers}, nil
}

func toJSONObject(data []byte) (map[string]json.RawMessage, error) {
	var doc map[string]json.RawMessage
	jsonErr := json.Unmarshal(data, &doc)
	if jsonErr == nil {
		if doc == nil {
			return nil, fmt.Errorf("%w: document is not an object", ErrInvalidFormat)
		}
		return doc, nil
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(jsonErr, &syntaxErr) {
		// valid JSON of the wrong shape, e.g. an array
		return nil, fmt.Errorf("%w: document is not an object", ErrInvalidFormat)
	}

	var y any
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, jsonErr)
	}
	m, ok := y.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, jsonErr)
	}
	converted, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: convert yaml: %v", ErrUnreadable, err)
	}
	if err := json.Unmarshal(converted, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return doc, nil
}

func decodeCollection(doc map[string]json.RawMessage, key string) ([]*models.Item, error) {
	raw, ok := doc[key]
	trimmed := bytes.TrimSpace(raw)
	if !ok || len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: %q must be an array", ErrInvalidFormat, key)
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, key, err)
	}
	out := make([]*models.Item, 0, len(elems))
	for _, e := range elems {
		// null and non-object entries are not items
		if bytes.Equal(bytes.TrimSpace(e), []byte("null")) {
			continue
		}
		var it models.Item
		if err := json.Unmarshal(e, &it); err != nil {
			continue
		}
		out = append(out, &it)
	}
	return out, nil
}
