// Package simulate produces mocked operational data: health checks, monitor
// rows, sandbox replies and a background telemetry ticker that bumps usage
// counters. None of it contacts the item endpoints.
package simulate

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

// HealthResult is the outcome of a mocked health check.
type HealthResult struct {
	ItemID    string        `json:"itemId"`
	Status    models.Status `json:"status"`
	LatencyMs int           `json:"latencyMs"`
	ErrorRate float64       `json:"errorRate"`
	CheckedAt time.Time     `json:"checkedAt"`
}

// Metric is one row of the monitoring dashboard.
type Metric struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Kind      models.Kind   `json:"kind"`
	Status    models.Status `json:"status"`
	Uptime    int           `json:"uptime"`
	LatencyMs int           `json:"latencyMs"`
	ErrorRate float64       `json:"errorRate"`
	Errors    int64         `json:"errors"`
}

// Simulator draws mocked values from a seeded source. It is safe for
// concurrent use.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// New creates a Simulator from rng. A nil rng is seeded from the clock.
func New(rng *rand.Rand) *Simulator {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Simulator{rng: rng, now: time.Now}
}

// NewSeeded creates a deterministic Simulator.
func NewSeeded(seed uint64) *Simulator {
	return New(rand.New(rand.NewPCG(seed, seed)))
}

func (s *Simulator) float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Simulator) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// latency is 100 to 599 ms.
func (s *Simulator) latency() int {
	return int(math.Floor(s.float()*500)) + 100
}

// errorRate is 0 to 1 rounded to two decimals.
func (s *Simulator) errorRate() float64 {
	return math.Round(s.float()*100) / 100
}

// HealthCheck returns a mocked health result: online four times in five.
func (s *Simulator) HealthCheck(it *models.Item) HealthResult {
	status := models.StatusOffline
	if s.float() > 0.2 {
		status = models.StatusOnline
	}
	r := HealthResult{
		Status:    status,
		LatencyMs: s.latency(),
		ErrorRate: s.errorRate(),
		CheckedAt: s.now().UTC(),
	}
	if it != nil {
		r.ItemID = it.ID
	}
	return r
}

// Metrics returns a monitor row. Agents with recorded invocations report
// their success ratio as uptime; everything else gets 95 to 99.
func (s *Simulator) Metrics(it *models.Item, kind models.Kind) Metric {
	m := Metric{
		Kind:      kind,
		Status:    models.StatusOf(it),
		LatencyMs: s.latency(),
		ErrorRate: s.errorRate(),
	}
	if it != nil {
		m.ID, m.Name = it.ID, it.Name
	}
	usage := models.UsageStatsOf(it)
	switch {
	case kind == models.KindAgent && usage.Invocations > 0:
		m.Uptime = int(usage.Success * 100 / usage.Invocations)
		m.Errors = usage.Error
	case kind == models.KindAgent:
		m.Uptime = 100
	default:
		m.Uptime = s.intn(5) + 95
		m.Errors = int64(s.intn(2))
	}
	return m
}

// Monitor returns a row for every item in the snapshot, agents first.
func (s *Simulator) Monitor(snap models.Snapshot) []Metric {
	rows := make([]Metric, 0, len(snap.Agents)+len(snap.MCPServers))
	for _, it := range snap.Agents {
		rows = append(rows, s.Metrics(it, models.KindAgent))
	}
	for _, it := range snap.MCPServers {
		rows = append(rows, s.Metrics(it, models.KindMCP))
	}
	return rows
}

// Sandbox returns the canned reply for a test invocation.
func Sandbox(it *models.Item, input string) string {
	endpoint := ""
	if it != nil {
		endpoint = it.Endpoint
	}
	return fmt.Sprintf("Simulated response from %s for input: \"%s\"", endpoint, input)
}
