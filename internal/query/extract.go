// Package query implements the registry query engine: pure transforms that
// filter, sort, group, pair and summarize registry items. Nothing in this
// package reads shared state; callers pass a snapshot in.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stoewer/go-strcase"
	"golang.org/x/text/cases"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

// Distinct returns the sorted set of values found in field across items.
// List fields contribute each element; absent fields contribute nothing.
func Distinct(items []*models.Item, field string) []string {
	path := NormalizeKey(field)
	seen := make(map[string]struct{})
	for _, it := range items {
		v, ok := models.Lookup(models.Fields(it), path)
		if !ok {
			continue
		}
		for _, s := range scalarStrings(v) {
			if s != "" {
				seen[s] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// NormalizeKey maps user supplied keys like "usage_stats.invocations" onto
// the JSON field path "usageStats.invocations".
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	parts := strings.Split(key, ".")
	for i, p := range parts {
		parts[i] = strcase.LowerCamelCase(p)
	}
	return strings.Join(parts, ".")
}

func scalarStrings(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if e != nil {
				out = append(out, fmt.Sprint(e))
			}
		}
		return out
	case map[string]any:
		return nil
	case nil:
		return nil
	default:
		return []string{fmt.Sprint(t)}
	}
}

// fold returns the caseless form of s. A Caser is not safe for concurrent
// use, so one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}
