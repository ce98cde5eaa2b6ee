package importer

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmatrix-dev/agentmatrix/internal/registry/exporter"
	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

const validDoc = `{
  "agents": [{"id": "a1", "name": "RAG Agent", "tags": ["rag", "search"], "customField": {"nested": true}}],
  "mcpServers": [{"id": "m1", "name": "Vector DB", "verified": true}]
}`

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
		agents  int
		servers int
	}{
		{name: "json", doc: validDoc, agents: 1, servers: 1},
		{name: "empty arrays", doc: `{"agents":[],"mcpServers":[]}`},
		{name: "yaml", doc: "agents:\n  - id: a1\n    name: RAG Agent\nmcpServers: []\n", agents: 1},
		{name: "missing servers", doc: `{"agents":[]}`, wantErr: ErrInvalidFormat},
		{name: "servers not array", doc: `{"agents":[],"mcpServers":{}}`, wantErr: ErrInvalidFormat},
		{name: "servers null", doc: `{"agents":[],"mcpServers":null}`, wantErr: ErrInvalidFormat},
		{name: "top-level array", doc: `[1,2]`, wantErr: ErrInvalidFormat},
		{name: "garbage", doc: `{not json`, wantErr: ErrUnreadable},
		{name: "scalar yaml", doc: `just words`, wantErr: ErrUnreadable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := Decode([]byte(tt.doc))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, snap.Agents, tt.agents)
			assert.Len(t, snap.MCPServers, tt.servers)
			assert.NotNil(t, snap.Agents)
			assert.NotNil(t, snap.MCPServers)
		})
	}
}

func TestDecode_LooselyTypedItems(t *testing.T) {
	tests := []struct {
		name  string
		item  string
		check func(t *testing.T, it *models.Item)
	}{
		{"tags as string", `{"id":"a1","tags":"rag"}`, func(t *testing.T, it *models.Item) {
			assert.Equal(t, []string{"rag"}, it.Tags)
		}},
		{"tags as comma list", `{"id":"a1","tags":"rag, search"}`, func(t *testing.T, it *models.Item) {
			assert.Equal(t, []string{"rag", "search"}, it.Tags)
		}},
		{"float counters", `{"id":"a1","usageStats":{"invocations":12.0,"success":10,"error":2}}`, func(t *testing.T, it *models.Item) {
			assert.Equal(t, models.UsageStats{Invocations: 12, Success: 10, Error: 2}, models.UsageStatsOf(it))
		}},
		{"string counters", `{"id":"a1","usageStats":{"invocations":"5"}}`, func(t *testing.T, it *models.Item) {
			assert.Equal(t, int64(5), models.UsageStatsOf(it).Invocations)
		}},
		{"verified yes", `{"id":"a1","verified":"yes"}`, func(t *testing.T, it *models.Item) {
			assert.True(t, it.Verified)
		}},
		{"numeric name", `{"id":7,"name":"Seven"}`, func(t *testing.T, it *models.Item) {
			assert.Equal(t, "7", it.ID)
			assert.Equal(t, "Seven", it.Name)
		}},
		{"uncoercible field kept verbatim", `{"id":"a1","name":"A","versions":"1.0"}`, func(t *testing.T, it *models.Item) {
			assert.Empty(t, it.Versions)
			assert.Equal(t, "A", it.Name)
			require.Contains(t, it.Extra, "versions")
			assert.JSONEq(t, `"1.0"`, string(it.Extra["versions"]))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := Decode([]byte(`{"agents":[` + tt.item + `],"mcpServers":[]}`))
			require.NoError(t, err)
			require.Len(t, snap.Agents, 1)
			tt.check(t, snap.Agents[0])
		})
	}
}

func TestDecode_DropsNullAndScalarEntries(t *testing.T) {
	snap, err := Decode([]byte(`{"agents":[null,{"id":"a1"},5,"x"],"mcpServers":[null]}`))
	require.NoError(t, err)
	require.Len(t, snap.Agents, 1)
	assert.Equal(t, "a1", snap.Agents[0].ID)
	assert.Empty(t, snap.MCPServers)
}

func TestImportBytes_Messages(t *testing.T) {
	s := NewService()

	_, err := s.ImportBytes([]byte(`{"agents":[]}`))
	var ierr *Error
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, MsgFileInvalid, ierr.Message)

	_, err = s.ImportBytes([]byte(`{oops`))
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, MsgFileParse, ierr.Message)
}

func TestImportFile(t *testing.T) {
	s := NewService()
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(validDoc), 0o644))

	snap, err := s.ImportFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a1", snap.Agents[0].ID)

	_, err = s.ImportFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestImportURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/registry.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(validDoc))
		case "/wrong-shape":
			_, _ = w.Write([]byte(`{"items":[]}`))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(validDoc))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := NewService()
	ctx := context.Background()

	snap, err := s.ImportURL(ctx, srv.URL+"/registry.json")
	require.NoError(t, err)
	assert.Len(t, snap.Agents, 1)
	assert.True(t, snap.MCPServers[0].Verified)

	var ierr *Error
	_, err = s.ImportURL(ctx, srv.URL+"/wrong-shape")
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, MsgURLInvalid, ierr.Message)

	_, err = s.ImportURL(ctx, srv.URL+"/missing")
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, MsgURLFetch, ierr.Message)

	s.SetTimeout(20 * time.Millisecond)
	_, err = s.ImportURL(ctx, srv.URL+"/slow")
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, MsgURLFetch, ierr.Message)
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestExportImportRoundTrip(t *testing.T) {
	original, err := Decode([]byte(validDoc))
	require.NoError(t, err)

	for _, format := range []exporter.Format{exporter.FormatJSON, exporter.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := exporter.Encode(original, format)
			require.NoError(t, err)

			back, err := Decode(data)
			require.NoError(t, err)

			again, err := exporter.Encode(back, exporter.FormatJSON)
			require.NoError(t, err)
			first, err := exporter.Encode(original, exporter.FormatJSON)
			require.NoError(t, err)
			assert.JSONEq(t, string(first), string(again))
			assert.True(t, bytes.Contains(again, []byte(`"customField"`)))
			assert.Equal(t, ids(original.All()), ids(back.All()))
		})
	}
}

func ids(items []*models.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
