// Package snippet renders integration material for a registry item: a short
// SDK example chosen by item type and markdown integration instructions.
package snippet

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/agentmatrix-dev/agentmatrix/internal/validation"
	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

var sdkTemplates = map[string]*template.Template{
	"rag": template.Must(template.New("rag").Parse(`# Python SDK Example
import requests

def call_agent(input):
    resp = requests.post('{{.Endpoint}}/invoke', json={'input': input})
    return resp.json()`)),
	"chatbot": template.Must(template.New("chatbot").Parse(`# Python Chatbot Example
import requests

def chat(message):
    resp = requests.post('{{.Endpoint}}/chat', json={'message': message})
    return resp.json()`)),
	"code-assistant": template.Must(template.New("code-assistant").Parse(`// JS SDK Example
import axios from 'axios';

export async function codeAssist(input) {
  const resp = await axios.post('{{.Endpoint}}/assist', { input });
  return resp.data;
}`)),
	"multimodal": template.Must(template.New("multimodal").Parse(`# Multimodal Example
import requests

def multimodal(input):
    resp = requests.post('{{.Endpoint}}/multi', json={'input': input})
    return resp.json()`)),
	"generic": template.Must(template.New("generic").Parse(`# Generic Example
import requests

def call(input):
    resp = requests.post('{{.Endpoint}}', json={'input': input})
    return resp.json()`)),
}

var instructionsTemplate = template.Must(template.New("instructions").Parse(`# {{.Name}} Integration

{{if .Description}}{{.Description}}

{{end}}## Endpoint

` + "`{{.Endpoint}}`" + `
{{if .Compatible}}
## Compatible with

{{range .Compatible}}- {{.}}
{{end}}{{end}}{{if .Dependencies}}
## Requires

{{range .Dependencies}}- {{.}}
{{end}}{{end}}`))

// templateFor maps an item type to its SDK example.
func templateFor(itemType string) *template.Template {
	switch itemType {
	case "rag", "web-research":
		return sdkTemplates["rag"]
	case "chatbot", "code-assistant", "multimodal":
		return sdkTemplates[itemType]
	}
	return sdkTemplates["generic"]
}

// SDKExample returns the code sample for it.
func SDKExample(it *models.Item) (string, error) {
	if it == nil {
		return "", fmt.Errorf("item is required")
	}
	var buf bytes.Buffer
	if err := templateFor(it.Type).Execute(&buf, it); err != nil {
		return "", fmt.Errorf("render sdk example: %w", err)
	}
	return buf.String(), nil
}

// Instructions returns the item's integration notes. Items without notes get
// a generated page listing the endpoint, compatibility and dependencies.
func Instructions(it *models.Item) (string, error) {
	if it == nil {
		return "", fmt.Errorf("item is required")
	}
	if strings.TrimSpace(it.Instructions) != "" {
		return it.Instructions, nil
	}
	var buf bytes.Buffer
	if err := instructionsTemplate.Execute(&buf, it); err != nil {
		return "", fmt.Errorf("render instructions: %w", err)
	}
	return buf.String(), nil
}

// SDKFilename is the download name of the SDK example.
func SDKFilename(it *models.Item) string {
	return validation.SanitizeName(nameOf(it)) + "-sdk-example.txt"
}

// InstructionsFilename is the download name of the instructions.
func InstructionsFilename(it *models.Item) string {
	return validation.SanitizeName(nameOf(it)) + "-integration.md"
}

func nameOf(it *models.Item) string {
	if it == nil {
		return ""
	}
	return it.Name
}
