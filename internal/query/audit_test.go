package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

func TestAuditTrail_NewestFirst(t *testing.T) {
	snap := models.Snapshot{
		Agents: []*models.Item{
			{ID: "a1", Name: "A", AuditLogs: []models.AuditLog{
				{Time: "2024-01-01T10:00:00Z", Action: "Registered", User: "u"},
				{Time: "2024-01-03T10:00:00Z", Action: "Approved", User: "admin"},
			}},
			nil,
			{ID: "a2", Name: "B", AuditLogs: []models.AuditLog{{Time: "yesterday", Action: "Imported", User: "u"}}},
		},
		MCPServers: []*models.Item{
			{ID: "m1", Name: "M", AuditLogs: []models.AuditLog{
				{Time: "2024-01-02T10:00:00Z", Action: "Registered", User: "u"},
				{Time: "2024-01-03T10:00:00Z", Action: "Commented", User: "u"},
			}},
		},
	}

	trail := AuditTrail(snap)
	require.Len(t, trail, 5)

	var actions []string
	for _, e := range trail {
		actions = append(actions, e.ItemID+":"+e.Action)
	}
	assert.Equal(t, []string{
		"a1:Approved",
		"m1:Commented",
		"m1:Registered",
		"a1:Registered",
		"a2:Imported",
	}, actions)

	assert.Equal(t, models.KindAgent, trail[0].Kind)
	assert.Equal(t, "A", trail[0].ItemName)
	assert.Equal(t, models.KindMCP, trail[1].Kind)

	assert.NotNil(t, AuditTrail(models.Snapshot{}))
}

func TestGovernanceView(t *testing.T) {
	snap := models.Snapshot{
		Agents: []*models.Item{
			{ID: "a1"},
			{ID: "a2", GovernanceStatus: models.GovernanceApproved},
		},
		MCPServers: []*models.Item{
			{ID: "m1", GovernanceStatus: models.GovernanceRejected},
		},
	}

	pending := GovernanceView(snap, "pending")
	require.Len(t, pending.Agents, 1)
	assert.Equal(t, "a1", pending.Agents[0].ID)
	assert.Equal(t, models.GovernancePending, pending.Agents[0].GovernanceStatus)
	assert.Empty(t, pending.MCPServers)
	// the input is not modified
	assert.Empty(t, snap.Agents[0].GovernanceStatus)

	all := GovernanceView(snap, "")
	assert.Len(t, all.Agents, 2)
	assert.Len(t, all.MCPServers, 1)
}
