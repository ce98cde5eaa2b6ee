package query

import (
	"slices"
	"time"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

// AuditEntry is one audit record tagged with the item it belongs to.
type AuditEntry struct {
	models.AuditLog
	ItemID   string      `json:"itemId"`
	ItemName string      `json:"itemName"`
	Kind     models.Kind `json:"kind"`
}

// AuditTrail flattens the audit logs of every item, newest first. Records
// with equal or unparseable timestamps keep their collection order (agents
// first, then each item's own order); unparseable ones come last.
func AuditTrail(snap models.Snapshot) []AuditEntry {
	type stamped struct {
		entry AuditEntry
		at    time.Time
		ok    bool
	}
	var all []stamped
	add := func(items []*models.Item, kind models.Kind) {
		for _, it := range items {
			if it == nil {
				continue
			}
			for _, log := range it.AuditLogs {
				at, err := time.Parse(time.RFC3339, log.Time)
				all = append(all, stamped{
					entry: AuditEntry{AuditLog: log, ItemID: it.ID, ItemName: it.Name, Kind: kind},
					at:    at,
					ok:    err == nil,
				})
			}
		}
	}
	add(snap.Agents, models.KindAgent)
	add(snap.MCPServers, models.KindMCP)

	slices.SortStableFunc(all, func(a, b stamped) int {
		switch {
		case !a.ok && !b.ok:
			return 0
		case !a.ok:
			return 1
		case !b.ok:
			return -1
		}
		return b.at.Compare(a.at)
	})

	entries := make([]AuditEntry, 0, len(all))
	for _, s := range all {
		entries = append(entries, s.entry)
	}
	return entries
}

// GovernanceView lists items whose governance status equals status, or all
// items when status is empty. A missing status counts as pending, and the
// returned copies carry it explicitly.
func GovernanceView(snap models.Snapshot, status string) models.Snapshot {
	pick := func(items []*models.Item) []*models.Item {
		out := []*models.Item{}
		for _, it := range items {
			if it == nil {
				continue
			}
			gs := models.GovernanceStatusOf(it)
			if status != "" && string(gs) != status {
				continue
			}
			c := it.Clone()
			c.GovernanceStatus = gs
			out = append(out, c)
		}
		return out
	}
	return models.Snapshot{Agents: pick(snap.Agents), MCPServers: pick(snap.MCPServers)}
}
