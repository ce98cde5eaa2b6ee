package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

func TestRun(t *testing.T) {
	snap := models.Snapshot{
		Agents: items(t, `[
			{"id":"rag","name":"RAG Agent","type":"rag","tags":["rag","nlp"],"usageStats":{"invocations":100,"success":98,"error":2}},
			{"id":"chat","name":"AI Chatbot","type":"chatbot","tags":["chatbot"],"usageStats":{"invocations":50,"success":45,"error":5}},
			{"id":"mm","name":"Multimodal","type":"multimodal","tags":["assistant"]}
		]`),
		MCPServers: items(t, `[{"id":"pg","name":"Postgres","description":"database","tags":["postgresql"]}]`),
	}

	view := Run(snap, Params{
		Filter:  Filter{Query: "a"},
		SortKey: "usageStats.invocations",
		Order:   Desc,
		GroupBy: "type",
	})

	assert.Equal(t, 4, view.Total)
	assert.Equal(t, []string{"assistant", "chatbot", "nlp", "postgresql", "rag"}, view.Facets.Tags)
	assert.Equal(t, []string{"chatbot", "multimodal", "rag"}, view.Facets.Types)
	assert.Equal(t, models.PricingModels, view.Facets.PricingModels)

	require.Len(t, view.Agents, 3)
	assert.Equal(t, []string{"rag", "chatbot", "multimodal"}, bucketNames(view.Agents))
	require.Len(t, view.MCPServers, 1)
	assert.Equal(t, "Other", view.MCPServers[0].Name)
	assert.Equal(t, 4, view.Matched)
}

func TestRun_NoParams(t *testing.T) {
	snap := models.Snapshot{Agents: items(t, `[{"id":"b"},{"id":"a"}]`)}

	view := Run(snap, Params{})
	require.Len(t, view.Agents, 1)
	assert.Equal(t, BucketAll, view.Agents[0].Name)
	assert.Equal(t, []string{"b", "a"}, ids(view.Agents[0].Items))
	require.Len(t, view.MCPServers, 1)
	assert.Empty(t, view.MCPServers[0].Items)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 2}, []float64{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float64{1, 0}, []float64{-3, 0}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 1}))
	assert.Equal(t, 0.0, Cosine(nil, nil))
}

func TestRankBySimilarity(t *testing.T) {
	in := items(t, `[{"id":"a"},{"id":"b"},{"id":"c"},null]`)
	vectors := [][]float64{{0, 1}, {1, 0}, {1, 0}, {1, 0}}

	got := RankBySimilarity([]float64{1, 0}, in, vectors, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Item.ID)
	assert.Equal(t, "c", got[1].Item.ID)

	all := RankBySimilarity([]float64{1, 0}, in, vectors[:2], 0)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].Item.ID)
}

func TestSearchText(t *testing.T) {
	it := &models.Item{Name: "RAG", Description: "retrieval", Tags: []string{"nlp"}}
	assert.Equal(t, "RAG: retrieval nlp", SearchText(it))
	assert.Equal(t, "", SearchText(nil))
}
