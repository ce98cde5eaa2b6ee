package snippet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

func TestSDKExample(t *testing.T) {
	tests := []struct {
		itemType  string
		wantFirst string
		wantCall  string
	}{
		{"rag", "# Python SDK Example", "requests.post('https://x.dev/invoke', json={'input': input})"},
		{"web-research", "# Python SDK Example", "https://x.dev/invoke"},
		{"chatbot", "# Python Chatbot Example", "requests.post('https://x.dev/chat', json={'message': message})"},
		{"code-assistant", "// JS SDK Example", "await axios.post('https://x.dev/assist', { input });"},
		{"multimodal", "# Multimodal Example", "https://x.dev/multi"},
		{"data-analysis", "# Generic Example", "requests.post('https://x.dev', json={'input': input})"},
		{"", "# Generic Example", "def call(input):"},
	}
	for _, tt := range tests {
		t.Run(tt.itemType, func(t *testing.T) {
			code, err := SDKExample(&models.Item{Type: tt.itemType, Endpoint: "https://x.dev"})
			require.NoError(t, err)
			first, _, _ := strings.Cut(code, "\n")
			assert.Equal(t, tt.wantFirst, first)
			assert.Contains(t, code, tt.wantCall)
		})
	}

	_, err := SDKExample(nil)
	assert.Error(t, err)
}

func TestSDKExample_Exact(t *testing.T) {
	code, err := SDKExample(&models.Item{Type: "rag", Endpoint: "https://rag.example.com"})
	require.NoError(t, err)
	want := "# Python SDK Example\nimport requests\n\ndef call_agent(input):\n    resp = requests.post('https://rag.example.com/invoke', json={'input': input})\n    return resp.json()"
	assert.Equal(t, want, code)
}

func TestInstructions(t *testing.T) {
	got, err := Instructions(&models.Item{Instructions: "## Use it\nCall the endpoint."})
	require.NoError(t, err)
	assert.Equal(t, "## Use it\nCall the endpoint.", got)

	got, err = Instructions(&models.Item{
		Name:         "RAG Agent",
		Description:  "Retrieval",
		Endpoint:     "https://rag.example.com",
		Compatible:   []string{"langchain"},
		Dependencies: []string{"postgres-mcp"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "# RAG Agent Integration\n"))
	assert.Contains(t, got, "`https://rag.example.com`")
	assert.Contains(t, got, "- langchain\n")
	assert.Contains(t, got, "- postgres-mcp\n")
}

func TestFilenames(t *testing.T) {
	it := &models.Item{Name: "RAG Agent"}
	assert.Equal(t, "rag-agent-sdk-example.txt", SDKFilename(it))
	assert.Equal(t, "rag-agent-integration.md", InstructionsFilename(it))
	assert.Equal(t, "item-integration.md", InstructionsFilename(nil))
}
