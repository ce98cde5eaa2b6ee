package query

import (
	"fmt"
	"strings"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

const (
	// GroupNone disables grouping.
	GroupNone = "none"

	BucketAll   = "All"
	BucketOther = "Other"
)

// Bucket is a named group of items.
type Bucket struct {
	Name  string         `json:"name"`
	Items []*models.Item `json:"items"`
}

// Group partitions items into buckets keyed by the value at key. Buckets are
// returned in order of first appearance. A list value is joined into a single
// bucket name, so an item never lands in more than one bucket.
func Group(items []*models.Item, key string) []Bucket {
	path := NormalizeKey(key)
	if path == "" || strings.EqualFold(path, GroupNone) {
		all := make([]*models.Item, len(items))
		copy(all, items)
		return []Bucket{{Name: BucketAll, Items: all}}
	}

	var buckets []Bucket
	index := make(map[string]int)
	for _, it := range items {
		name := bucketName(models.Fields(it), path)
		i, ok := index[name]
		if !ok {
			i = len(buckets)
			index[name] = i
			buckets = append(buckets, Bucket{Name: name})
		}
		buckets[i].Items = append(buckets[i].Items, it)
	}
	if buckets == nil {
		buckets = []Bucket{}
	}
	return buckets
}

func bucketName(fields map[string]any, path string) string {
	v, ok := models.Lookup(fields, path)
	if !ok {
		return BucketOther
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return BucketOther
		}
		return t
	case bool:
		if !t {
			return BucketOther
		}
		return "true"
	case float64:
		if t == 0 {
			return BucketOther
		}
		return fmt.Sprint(t)
	case []any:
		parts := scalarStrings(t)
		if len(parts) == 0 {
			return BucketOther
		}
		return strings.Join(parts, ", ")
	default:
		return BucketOther
	}
}
