// Package exporter writes the registry as a single document holding both
// collections, in JSON or YAML.
package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Filename returns the default download name for the format.
func (f Format) Filename() string {
	return "agentmatrix-registry." + string(f)
}

// Source provides the registry to export.
type Source interface {
	Snapshot() models.Snapshot
}

// Service exports registry snapshots.
type Service struct {
	source Source
}

// NewService creates an exporter reading from source.
func NewService(source Source) *Service {
	return &Service{source: source}
}

// Export encodes the current registry.
func (s *Service) Export(format Format) ([]byte, error) {
	return Encode(s.source.Snapshot(), format)
}

// ExportToPath writes the current registry to outputPath, creating parent
// directories. It returns the number of items written.
func (s *Service) ExportToPath(ctx context.Context, outputPath string, format Format) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	snap := s.source.Snapshot()
	data, err := Encode(snap, format)
	if err != nil {
		return 0, err
	}
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write export file: %w", err)
	}
	return len(snap.Agents) + len(snap.MCPServers), nil
}

// Encode renders snap. Missing collections are written as empty arrays.
func Encode(snap models.Snapshot, format Format) ([]byte, error) {
	if snap.Agents == nil {
		snap.Agents = []*models.Item{}
	}
	if snap.MCPServers == nil {
		snap.MCPServers = []*models.Item{}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal registry: %w", err)
	}
	if format != FormatYAML {
		return data, nil
	}

	// route through JSON so item field names and unknown fields match
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal registry: %w", err)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return buf.Bytes(), nil
}
