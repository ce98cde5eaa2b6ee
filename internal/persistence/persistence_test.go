package persistence

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmatrix-dev/agentmatrix/internal/registry/seed"
	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

func TestSink_LoadEmptyFallsBackToExamples(t *testing.T) {
	sink := NewSink(NewMemoryBackend(), zerolog.Nop())

	snap := sink.Load(context.Background())
	builtin := seed.Builtin()
	assert.Len(t, snap.Agents, len(builtin.Agents))
	assert.Len(t, snap.MCPServers, len(builtin.MCPServers))
}

func TestSink_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	sink := NewSink(NewFileBackend(filepath.Join(t.TempDir(), "nested", "registry.json")), zerolog.Nop())

	in := models.Snapshot{
		Agents:     []*models.Item{{ID: "a1", Name: "A", Tags: []string{"x"}}},
		MCPServers: []*models.Item{},
	}
	require.NoError(t, sink.Save(ctx, in))

	out := sink.Load(ctx)
	require.Len(t, out.Agents, 1)
	assert.Equal(t, "a1", out.Agents[0].ID)
	assert.Equal(t, []string{"x"}, out.Agents[0].Tags)
	// an empty stored array is data, not an absent key
	assert.Empty(t, out.MCPServers)
	assert.NotNil(t, out.MCPServers)
}

func TestSink_MalformedKeyFallsBackIndependently(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.PutAll(ctx, map[string][]byte{
		KeyAgents:     []byte(`[{"id":"mine"}]`),
		KeyMCPServers: []byte(`{"not":"an array"}`),
	}))

	snap := NewSink(backend, zerolog.Nop()).Load(ctx)
	require.Len(t, snap.Agents, 1)
	assert.Equal(t, "mine", snap.Agents[0].ID)
	assert.Len(t, snap.MCPServers, len(seed.Builtin().MCPServers))
}

func TestSink_MalformedFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	snap := NewSink(NewFileBackend(path), zerolog.Nop()).Load(context.Background())
	assert.Len(t, snap.Agents, len(seed.Builtin().Agents))
}

func TestFileBackend_WritesBothKeys(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "registry.json")
	sink := NewSink(NewFileBackend(path), zerolog.Nop())

	require.NoError(t, sink.Save(ctx, models.Snapshot{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.JSONEq(t, `[]`, string(doc[KeyAgents]))
	assert.JSONEq(t, `[]`, string(doc[KeyMCPServers]))
}

func TestFileBackend_MissingKey(t *testing.T) {
	ctx := context.Background()
	b := NewFileBackend(filepath.Join(t.TempDir(), "registry.json"))

	_, err := b.Get(ctx, KeyAgents)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.PutAll(ctx, map[string][]byte{KeyAgents: []byte(`[]`)}))
	_, err = b.Get(ctx, KeyMCPServers)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryBackend_CopiesValues(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	v := []byte(`[1]`)
	require.NoError(t, b.PutAll(ctx, map[string][]byte{"k": v}))
	v[1] = '2'

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, Options{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, b)

	b, err = Open(ctx, Options{FilePath: filepath.Join(t.TempDir(), "r.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, b)

	_, err = Open(ctx, Options{Backend: "etcd"})
	assert.ErrorContains(t, err, "unknown store backend")

	_, err = Open(ctx, Options{Backend: "redis"})
	assert.Error(t, err)
}
