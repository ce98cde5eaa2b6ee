package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder accepts "asc"/"desc" in any case; anything else is ascending.
func ParseOrder(s string) Order {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

type sortEntry struct {
	item  *models.Item
	value any
	ok    bool
}

// Sort returns a new slice of items ordered by key, which may be a dotted
// path. Items without a value for key always come last, in either direction.
// Equal keys keep their input order. The input slice is not modified.
func Sort(items []*models.Item, key string, order Order) []*models.Item {
	out := make([]*models.Item, len(items))
	path := NormalizeKey(key)
	if path == "" {
		copy(out, items)
		return out
	}

	entries := make([]sortEntry, len(items))
	for i, it := range items {
		v, ok := models.Lookup(models.Fields(it), path)
		entries[i] = sortEntry{item: it, value: v, ok: ok}
	}

	slices.SortStableFunc(entries, func(a, b sortEntry) int {
		switch {
		case !a.ok && !b.ok:
			return 0
		case !a.ok:
			return 1
		case !b.ok:
			return -1
		}
		c := compareValues(a.value, b.value)
		if order == Desc {
			return -c
		}
		return c
	})

	for i, e := range entries {
		out[i] = e.item
	}
	return out
}

// typeRank orders values of different JSON types against each other.
func typeRank(v any) int {
	switch v.(type) {
	case float64:
		return 0
	case string:
		return 1
	case bool:
		return 2
	default:
		return 3
	}
}

func compareValues(a, b any) int {
	if ra, rb := typeRank(a), typeRank(b); ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch av := a.(type) {
	case float64:
		return cmp.Compare(av, b.(float64))
	case string:
		return strings.Compare(fold(av), fold(b.(string)))
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	default:
		return strings.Compare(fold(fmt.Sprint(a)), fold(fmt.Sprint(b)))
	}
}
