package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommend_DropsUnresolved(t *testing.T) {
	agents := items(t, `[{"id":"a1","dependencies":["m1","m9"]}]`)
	servers := items(t, `[{"id":"m1"}]`)

	got := Recommend(agents, servers)
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].Agent.ID)
	assert.Equal(t, "m1", got[0].MCP.ID)
}

func TestRecommend_OrderAndNoDedup(t *testing.T) {
	agents := items(t, `[
		{"id":"a1","dependencies":["m2","m1"]},
		{"id":"a2"},
		null,
		{"id":"a3","dependencies":["m1"]}
	]`)
	servers := items(t, `[{"id":"m1","name":"One"},null,{"id":"m2","name":"Two"}]`)

	got := Recommend(agents, servers)
	var pairs []string
	for _, p := range got {
		pairs = append(pairs, p.Agent.ID+"->"+p.MCP.ID)
	}
	assert.Equal(t, []string{"a1->m2", "a1->m1", "a3->m1"}, pairs)
}

func TestRecommend_Empty(t *testing.T) {
	got := Recommend(nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestEdges(t *testing.T) {
	agents := items(t, `[{"id":"rag","name":"RAG Agent","dependencies":["pg"]}]`)
	servers := items(t, `[{"id":"pg","name":"Postgres MCP Server"}]`)

	edges := Edges(Recommend(agents, servers))
	require.Len(t, edges, 1)
	assert.Equal(t, Edge{AgentID: "rag", AgentName: "RAG Agent", MCPID: "pg", MCPName: "Postgres MCP Server"}, edges[0])
	assert.Equal(t, "RAG Agent → Postgres MCP Server", edges[0].String())
}
