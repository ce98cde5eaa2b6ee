package models

import (
	"encoding/json"
	"strings"
)

// GovernanceStatusOf returns the item's governance status, "pending" when absent.
func GovernanceStatusOf(it *Item) GovernanceStatus {
	if it == nil || it.GovernanceStatus == "" {
		return GovernancePending
	}
	return it.GovernanceStatus
}

// StatusOf returns the item's status, "unknown" when absent.
func StatusOf(it *Item) Status {
	if it == nil || it.Status == "" {
		return StatusUnknown
	}
	return it.Status
}

// UsageStatsOf returns the item's usage counters, all zero when absent.
func UsageStatsOf(it *Item) UsageStats {
	if it == nil || it.UsageStats == nil {
		return UsageStats{}
	}
	return *it.UsageStats
}

// TagsOf returns the item's tags, never nil.
func TagsOf(it *Item) []string {
	if it == nil || it.Tags == nil {
		return []string{}
	}
	return it.Tags
}

// DependenciesOf returns the item's declared dependency ids, never nil.
func DependenciesOf(it *Item) []string {
	if it == nil || it.Dependencies == nil {
		return []string{}
	}
	return it.Dependencies
}

// VisibilityOf returns the item's visibility, "public" when absent.
func VisibilityOf(it *Item) Visibility {
	if it == nil || it.Visibility == "" {
		return VisibilityPublic
	}
	return it.Visibility
}

// Fields flattens the item into its JSON field map with read-time defaults
// applied: governanceStatus falls back to pending and verified is always
// present, false when unset. Other absent or empty fields are absent from the
// map.
func Fields(it *Item) map[string]any {
	if it == nil {
		return nil
	}
	data, err := json.Marshal(it)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]any{}
	}
	m["governanceStatus"] = string(GovernanceStatusOf(it))
	m["verified"] = it.Verified
	return m
}

// Lookup resolves a dotted path such as "usageStats.invocations" against a
// field map produced by Fields.
func Lookup(fields map[string]any, path string) (any, bool) {
	var cur any = fields
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}
