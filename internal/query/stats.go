package query

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

const (
	// UndefinedRate is reported when no call has succeeded or failed yet.
	UndefinedRate = "—"

	topUsageLimit = 5
	topErrorLimit = 5
	topTagLimit   = 8
)

// Count is a labelled tally.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Ranked is an item projected for a leaderboard.
type Ranked struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Kind  models.Kind `json:"kind"`
	Value int64       `json:"value"`
}

// KindSummary counts the items of one collection.
type KindSummary struct {
	Total  int `json:"total"`
	Online int `json:"online"`
}

// Stats is the analytics summary over the whole registry.
type Stats struct {
	Agents      KindSummary       `json:"agents"`
	MCPServers  KindSummary       `json:"mcpServers"`
	Totals      models.UsageStats `json:"totals"`
	SuccessRate string            `json:"successRate"`
	Status      []Count           `json:"status"`
	Governance  []Count           `json:"governance"`
	TopUsage    []Ranked          `json:"topUsage"`
	TopErrors   []Ranked          `json:"topErrors"`
	TopTags     []Count           `json:"topTags"`
}

type kindedItem struct {
	item *models.Item
	kind models.Kind
}

// Aggregate summarizes agents and MCP servers together. It ignores filters
// and never fails.
func Aggregate(agents, mcpServers []*models.Item) Stats {
	var all []kindedItem
	for _, a := range agents {
		if a != nil {
			all = append(all, kindedItem{a, models.KindAgent})
		}
	}
	for _, m := range mcpServers {
		if m != nil {
			all = append(all, kindedItem{m, models.KindMCP})
		}
	}

	st := Stats{
		Agents:     summarize(agents),
		MCPServers: summarize(mcpServers),
	}

	status := newTally()
	governance := newTally()
	tags := newTally()
	for _, k := range all {
		u := models.UsageStatsOf(k.item)
		st.Totals.Invocations += u.Invocations
		st.Totals.Success += u.Success
		st.Totals.Error += u.Error

		status.add(string(models.StatusOf(k.item)))
		governance.add(string(models.GovernanceStatusOf(k.item)))
		for _, t := range models.TagsOf(k.item) {
			tags.add(t)
		}
	}

	st.SuccessRate = SuccessRate(st.Totals)
	st.Status = status.counts()
	st.Governance = governance.counts()
	st.TopTags = topCounts(tags.counts(), topTagLimit)
	st.TopUsage = topRanked(all, func(u models.UsageStats) int64 { return u.Invocations }, false, topUsageLimit)
	st.TopErrors = topRanked(all, func(u models.UsageStats) int64 { return u.Error }, true, topErrorLimit)
	return st
}

// SuccessRate formats success/(success+error) as a one-decimal percentage,
// or UndefinedRate when there is nothing to divide by.
func SuccessRate(u models.UsageStats) string {
	denom := u.Success + u.Error
	if denom == 0 {
		return UndefinedRate
	}
	return fmt.Sprintf("%.1f%%", float64(u.Success)*100/float64(denom))
}

func summarize(items []*models.Item) KindSummary {
	var s KindSummary
	for _, it := range items {
		if it == nil {
			continue
		}
		s.Total++
		if models.StatusOf(it) == models.StatusOnline {
			s.Online++
		}
	}
	return s
}

func topRanked(all []kindedItem, value func(models.UsageStats) int64, skipZero bool, limit int) []Ranked {
	ranked := make([]Ranked, 0, len(all))
	for _, k := range all {
		v := value(models.UsageStatsOf(k.item))
		if skipZero && v <= 0 {
			continue
		}
		ranked = append(ranked, Ranked{ID: k.item.ID, Name: k.item.Name, Kind: k.kind, Value: v})
	}
	slices.SortStableFunc(ranked, func(a, b Ranked) int { return cmp.Compare(b.Value, a.Value) })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func topCounts(counts []Count, limit int) []Count {
	slices.SortStableFunc(counts, func(a, b Count) int { return cmp.Compare(b.Count, a.Count) })
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

// tally counts keys and remembers first-seen order.
type tally struct {
	order []string
	n     map[string]int
}

func newTally() *tally {
	return &tally{n: make(map[string]int)}
}

func (t *tally) add(key string) {
	if _, ok := t.n[key]; !ok {
		t.order = append(t.order, key)
	}
	t.n[key]++
}

func (t *tally) counts() []Count {
	out := make([]Count, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, Count{Key: k, Count: t.n[k]})
	}
	return out
}
