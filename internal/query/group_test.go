package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bucketNames(buckets []Bucket) []string {
	out := make([]string, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b.Name)
	}
	return out
}

func TestGroup_None(t *testing.T) {
	in := items(t, `[{"id":"b","type":"x"},{"id":"a"}]`)

	for _, key := range []string{"none", "None", ""} {
		got := Group(in, key)
		require.Len(t, got, 1)
		assert.Equal(t, BucketAll, got[0].Name)
		assert.Equal(t, []string{"b", "a"}, ids(got[0].Items))
	}
}

func TestGroup_ScalarKey(t *testing.T) {
	in := items(t, `[
		{"id":"1","type":"rag"},
		{"id":"2","type":"chatbot"},
		{"id":"3"},
		{"id":"4","type":"rag"},
		{"id":"5","type":""}
	]`)

	got := Group(in, "type")
	assert.Equal(t, []string{"rag", "chatbot", "Other"}, bucketNames(got))
	assert.Equal(t, []string{"1", "4"}, ids(got[0].Items))
	assert.Equal(t, []string{"3", "5"}, ids(got[2].Items))
}

func TestGroup_ListKeyCollapsesToOneBucket(t *testing.T) {
	in := items(t, `[
		{"id":"1","tags":["a","b"]},
		{"id":"2","tags":["a"]},
		{"id":"3","tags":["a","b"]},
		{"id":"4","tags":[]}
	]`)

	got := Group(in, "tags")
	assert.Equal(t, []string{"a, b", "a", "Other"}, bucketNames(got))
	assert.Equal(t, []string{"1", "3"}, ids(got[0].Items))

	total := 0
	for _, b := range got {
		total += len(b.Items)
	}
	assert.Equal(t, len(in), total)
}

func TestGroup_GovernanceUsesDefault(t *testing.T) {
	in := items(t, `[{"id":"1"},{"id":"2","governanceStatus":"approved"}]`)
	assert.Equal(t, []string{"pending", "approved"}, bucketNames(Group(in, "governanceStatus")))
}

func TestGroup_StatusMissingIsOther(t *testing.T) {
	in := items(t, `[{"id":"1","status":"online"},{"id":"2"}]`)
	assert.Equal(t, []string{"online", "Other"}, bucketNames(Group(in, "status")))
}

func TestGroup_EmptyInput(t *testing.T) {
	assert.Empty(t, Group(nil, "type"))
	got := Group(nil, "none")
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Items)
}
