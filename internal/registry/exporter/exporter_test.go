package exporter

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

type stubSource struct {
	snap models.Snapshot
}

func (s stubSource) Snapshot() models.Snapshot { return s.snap }

func testSnapshot(t *testing.T) models.Snapshot {
	t.Helper()
	var snap models.Snapshot
	doc := `{
		"agents": [{"id": "a1", "name": "RAG Agent", "tags": ["rag"], "owner": "team-x"}],
		"mcpServers": [{"id": "m1", "name": "Vector DB", "usageStats": {"invocations": 1200, "success": 1100, "error": 100}}]
	}`
	if err := json.Unmarshal([]byte(doc), &snap); err != nil {
		t.Fatalf("failed to build snapshot: %v", err)
	}
	return snap
}

func TestExportToPath_WritesRegistryFile(t *testing.T) {
	service := NewService(stubSource{snap: testSnapshot(t)})

	outputPath := filepath.Join(t.TempDir(), "out", "registry.json")
	count, err := service.ExportToPath(context.Background(), outputPath, FormatJSON)
	if err != nil {
		t.Fatalf("ExportToPath returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 items to be exported, got %d", count)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("failed to read export file: %v", err)
	}

	var exported map[string][]map[string]any
	if err := json.Unmarshal(data, &exported); err != nil {
		t.Fatalf("failed to unmarshal export file: %v", err)
	}
	if len(exported["agents"]) != 1 || len(exported["mcpServers"]) != 1 {
		t.Fatalf("unexpected export contents: %s", data)
	}
	if exported["agents"][0]["owner"] != "team-x" {
		t.Errorf("unknown field was not exported: %v", exported["agents"][0])
	}
}

func TestExportToPath_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	service := NewService(stubSource{})
	if _, err := service.ExportToPath(ctx, filepath.Join(t.TempDir(), "x.json"), FormatJSON); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestEncode_EmptyCollectionsAreArrays(t *testing.T) {
	data, err := Encode(models.Snapshot{}, FormatJSON)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	compact := strings.Join(strings.Fields(string(data)), "")
	if compact != `{"agents":[],"mcpServers":[]}` {
		t.Errorf("unexpected empty export: %s", compact)
	}
}

func TestEncode_YAML(t *testing.T) {
	data, err := Encode(testSnapshot(t), FormatYAML)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	var doc struct {
		Agents []struct {
			ID    string `yaml:"id"`
			Owner string `yaml:"owner"`
		} `yaml:"agents"`
		MCPServers []struct {
			UsageStats struct {
				Invocations int `yaml:"invocations"`
			} `yaml:"usageStats"`
		} `yaml:"mcpServers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not valid yaml: %v", err)
	}
	if len(doc.Agents) != 1 || doc.Agents[0].ID != "a1" || doc.Agents[0].Owner != "team-x" {
		t.Errorf("unexpected agents: %+v", doc.Agents)
	}
	if len(doc.MCPServers) != 1 || doc.MCPServers[0].UsageStats.Invocations != 1200 {
		t.Errorf("unexpected servers: %+v", doc.MCPServers)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if FormatYAML.Filename() != "agentmatrix-registry.yaml" {
		t.Errorf("unexpected filename %q", FormatYAML.Filename())
	}
}
