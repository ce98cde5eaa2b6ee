package validation

import (
	"errors"
	"reflect"
	"testing"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

func TestValidateRegistration(t *testing.T) {
	existing := []*models.Item{
		{ID: "rag-agent", Name: "RAG Agent"},
		nil,
		{ID: "slack-mcp", Name: "Slack MCP Server"},
	}

	tests := []struct {
		name  string
		draft *models.Item
		want  Errors
	}{
		{"valid", &models.Item{Name: "New Agent", Endpoint: "http://localhost:9000"}, nil},
		{"valid https", &models.Item{Name: "Other", Endpoint: "https://api.example.com/v1"}, nil},
		{"missing name", &models.Item{Endpoint: "http://x.io"}, Errors{MsgNameRequired}},
		{"blank name", &models.Item{Name: "   ", Endpoint: "http://x.io"}, Errors{MsgNameRequired}},
		{"bad endpoint", &models.Item{Name: "X", Endpoint: "ftp://x.io"}, Errors{MsgEndpointRequired}},
		{"relative endpoint", &models.Item{Name: "X", Endpoint: "/invoke"}, Errors{MsgEndpointRequired}},
		{"duplicate name is caseless", &models.Item{Name: "rag agent", Endpoint: "http://x.io"}, Errors{MsgNameUnique}},
		{"duplicate across collections", &models.Item{Name: "SLACK MCP SERVER ", Endpoint: "http://x.io"}, Errors{MsgNameUnique}},
		{"all errors at once", &models.Item{Name: "RAG Agent"}, Errors{MsgEndpointRequired, MsgNameUnique}},
		{"empty draft", &models.Item{}, Errors{MsgNameRequired, MsgEndpointRequired}},
		{"nil draft", nil, Errors{MsgNameRequired, MsgEndpointRequired}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegistration(tt.draft, existing)
			if tt.want == nil {
				if err != nil {
					t.Errorf("ValidateRegistration() error = %v, want nil", err)
				}
				return
			}
			var got Errors
			if !errors.As(err, &got) {
				t.Fatalf("ValidateRegistration() error = %v, want Errors", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ValidateRegistration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrors_Error(t *testing.T) {
	err := Errors{MsgNameRequired, MsgEndpointRequired}
	if got := err.Error(); got != "Name required; Valid endpoint URL required" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIsSemanticVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    bool
	}{
		{"valid semver", "1.0.0", true},
		{"valid semver with v", "v1.0.0", true},
		{"short label", "1.0", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSemanticVersion(tt.version); got != tt.want {
				t.Errorf("IsSemanticVersion(%q) = %v, want %v", tt.version, got, tt.want)
			}
		})
	}
}

func TestValidateVersionLabel(t *testing.T) {
	tests := []struct {
		label   string
		wantErr bool
	}{
		{"1.0", false},
		{"v2", false},
		{"1.2.3-beta", false},
		{"", true},
		{"latest", true},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			err := ValidateVersionLabel(tt.label)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVersionLabel(%q) error = %v, wantErr %v", tt.label, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidVersion) {
				t.Errorf("ValidateVersionLabel(%q) error = %v, want ErrInvalidVersion", tt.label, err)
			}
		})
	}
}

func TestLatestVersion(t *testing.T) {
	tests := []struct {
		name     string
		versions []models.Version
		want     string
	}{
		{"empty", nil, ""},
		{"single", []models.Version{{V: "1.0"}}, "1.0"},
		{"out of order", []models.Version{{V: "1.2"}, {V: "1.10"}, {V: "1.1"}}, "1.10"},
		{"skips junk", []models.Version{{V: "1.0"}, {V: "nightly"}}, "1.0"},
		{"all junk falls back to last", []models.Version{{V: "alpha"}, {V: "beta"}}, "beta"},
		{"full label wins a tie", []models.Version{{V: "1.0"}, {V: "1.0.0"}}, "1.0.0"},
		{"full label kept on a tie", []models.Version{{V: "1.0.0"}, {V: "1.0"}}, "1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LatestVersion(tt.versions); got != tt.want {
				t.Errorf("LatestVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid https URL", "https://example.com", false},
		{"valid http URL", "http://example.com", false},
		{"valid websocket URL", "wss://relay.example.com", false},
		{"relative", "/path", false},
		{"empty URL", "", true},
		{"invalid scheme", "ftp://example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "MyAgent", "myagent"},
		{"with spaces", "RAG Agent", "rag-agent"},
		{"with parens", "Code Assistant (MCP)", "code-assistant-mcp"},
		{"empty becomes item", "", "item"},
		{"multiple special chars", "a@@b##c", "a-b-c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
