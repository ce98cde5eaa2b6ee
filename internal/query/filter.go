package query

import (
	"strings"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

// Filter is a conjunction of optional clauses. The zero value matches every
// non-nil item.
type Filter struct {
	// Query is a free-text search over name, description and tags.
	Query string `json:"query,omitempty"`
	// Tags must all be present on the item.
	Tags []string `json:"tags,omitempty"`
	// Pricing is a set of accepted pricing models, compared caselessly.
	Pricing      []string `json:"pricing,omitempty"`
	VerifiedOnly bool     `json:"verifiedOnly,omitempty"`
	// Type is an exact match on the item type.
	Type       string `json:"type,omitempty"`
	Governance string `json:"governance,omitempty"`
	Visibility string `json:"visibility,omitempty"`
}

// IsEmpty reports whether no clause is set.
func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(f.Query) == "" && len(f.Tags) == 0 && len(f.Pricing) == 0 &&
		!f.VerifiedOnly && f.Type == "" && f.Governance == "" && f.Visibility == ""
}

// Match reports whether it passes every clause. A nil item never matches.
func (f Filter) Match(it *models.Item) bool {
	if it == nil {
		return false
	}
	return f.matchPricing(it.PricingModel) &&
		f.matchTags(it) &&
		(!f.VerifiedOnly || it.Verified) &&
		(f.Type == "" || it.Type == f.Type) &&
		(f.Governance == "" || string(models.GovernanceStatusOf(it)) == f.Governance) &&
		(f.Visibility == "" || string(models.VisibilityOf(it)) == f.Visibility) &&
		f.matchText(it)
}

func (f Filter) matchPricing(model string) bool {
	if len(f.Pricing) == 0 {
		return true
	}
	want := fold(strings.TrimSpace(model))
	for _, p := range f.Pricing {
		if fold(strings.TrimSpace(p)) == want {
			return true
		}
	}
	return false
}

func (f Filter) matchTags(it *models.Item) bool {
	if len(f.Tags) == 0 {
		return true
	}
	if it.Tags == nil {
		return false
	}
	have := make(map[string]struct{}, len(it.Tags))
	for _, t := range it.Tags {
		have[t] = struct{}{}
	}
	for _, t := range f.Tags {
		if _, ok := have[t]; !ok {
			return false
		}
	}
	return true
}

func (f Filter) matchText(it *models.Item) bool {
	q := fold(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	if strings.Contains(fold(it.Name), q) || strings.Contains(fold(it.Description), q) {
		return true
	}
	for _, tag := range it.Tags {
		t := fold(tag)
		if t == "" {
			continue
		}
		if strings.Contains(t, q) || strings.Contains(q, t) {
			return true
		}
	}
	return false
}

// Apply returns the items that pass f, in input order.
func Apply(items []*models.Item, f Filter) []*models.Item {
	out := make([]*models.Item, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return out
}
