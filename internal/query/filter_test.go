package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

func items(t *testing.T, raw string) []*models.Item {
	t.Helper()
	var out []*models.Item
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func ids(items []*models.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil {
			out = append(out, "<nil>")
			continue
		}
		out = append(out, it.ID)
	}
	return out
}

// -----------------------------------------------------------------------------
// Distinct
// -----------------------------------------------------------------------------

func TestDistinct(t *testing.T) {
	in := items(t, `[
		{"id":"1","type":"rag","tags":["nlp","rag"]},
		{"id":"2","type":"chatbot","tags":["rag","streaming"]},
		{"id":"3"},
		null
	]`)

	assert.Equal(t, []string{"nlp", "rag", "streaming"}, Distinct(in, "tags"))
	assert.Equal(t, []string{"chatbot", "rag"}, Distinct(in, "type"))
	assert.Equal(t, []string{"pending"}, Distinct(in, "governanceStatus"))
	assert.Empty(t, Distinct(in, "nope"))
	assert.Empty(t, Distinct(nil, "tags"))
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "usageStats.invocations", NormalizeKey("usage_stats.invocations"))
	assert.Equal(t, "usageStats.invocations", NormalizeKey("usageStats.invocations"))
	assert.Equal(t, "pricingModel", NormalizeKey(" pricing-model "))
	assert.Equal(t, "", NormalizeKey(""))
}

// -----------------------------------------------------------------------------
// Filter
// -----------------------------------------------------------------------------

func TestFilter_EmptyPassesEverything(t *testing.T) {
	in := items(t, `[{"id":"1"},{"id":"2","name":"x","tags":["a"]},{"id":"3","verified":true}]`)

	f := Filter{}
	assert.True(t, f.IsEmpty())
	for _, it := range in {
		assert.True(t, f.Match(it))
	}
	assert.False(t, f.Match(nil))
}

func TestFilter_TagsAreConjunctive(t *testing.T) {
	it := &models.Item{ID: "x", Tags: []string{"a", "b"}}

	assert.True(t, Filter{Tags: []string{"a", "b"}}.Match(it))
	assert.True(t, Filter{Tags: []string{"a"}}.Match(it))
	assert.False(t, Filter{Tags: []string{"a", "c"}}.Match(it))
	assert.False(t, Filter{Tags: []string{"a"}}.Match(&models.Item{ID: "untagged"}))
}

func TestFilter_Clauses(t *testing.T) {
	in := items(t, `[
		{"id":"rag","name":"RAG Agent","description":"Retrieval agent","type":"rag","tags":["rag","postgresql"],"pricingModel":"Subscription","verified":true,"governanceStatus":"approved"},
		{"id":"chat","name":"AI Chatbot","description":"Streaming chatbot","type":"chatbot","tags":["chatbot"],"pricingModel":" free ","visibility":"private"},
		{"id":"auto","name":"Process Automator","description":"Automates workflows","type":"automator","pricingModel":"Enterprise","governanceStatus":"rejected"}
	]`)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"pricing is caseless and trimmed", Filter{Pricing: []string{"FREE"}}, []string{"chat"}},
		{"pricing set", Filter{Pricing: []string{"subscription", " Enterprise"}}, []string{"rag", "auto"}},
		{"verified only", Filter{VerifiedOnly: true}, []string{"rag"}},
		{"type exact", Filter{Type: "rag"}, []string{"rag"}},
		{"type is not a prefix match", Filter{Type: "ra"}, []string{}},
		{"query in name", Filter{Query: "  chatBOT "}, []string{"chat"}},
		{"query in description", Filter{Query: "workflows"}, []string{"auto"}},
		{"query contained in tag", Filter{Query: "postgres"}, []string{"rag"}},
		{"tag contained in query", Filter{Query: "rag with postgresql"}, []string{"rag"}},
		{"governance defaults to pending", Filter{Governance: "pending"}, []string{"chat"}},
		{"visibility defaults to public", Filter{Visibility: "public"}, []string{"rag", "auto"}},
		{"clauses combine with and", Filter{Pricing: []string{"subscription", "free"}, VerifiedOnly: true}, []string{"rag"}},
		{"blank query is no constraint", Filter{Query: "   "}, []string{"rag", "chat", "auto"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(in, tt.filter)))
		})
	}
}

func TestFilter_GovernanceDefaultDoesNotMutate(t *testing.T) {
	it := &models.Item{ID: "x"}
	require.True(t, Filter{Governance: "pending"}.Match(it))
	assert.Empty(t, it.GovernanceStatus)
}

func TestApply_DropsNil(t *testing.T) {
	in := []*models.Item{nil, {ID: "a"}, nil}
	assert.Equal(t, []string{"a"}, ids(Apply(in, Filter{})))
}
