package simulate

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

// DefaultInterval is the telemetry tick period.
const DefaultInterval = 5 * time.Second

// successRatio is the chance a simulated invocation succeeds.
const successRatio = 0.9

// Recorder is the part of the state store the ticker writes to.
type Recorder interface {
	Snapshot() models.Snapshot
	RecordUsage(ctx context.Context, id string, success bool) (*models.Item, error)
}

// Telemetry bumps the usage counters of a random item on every tick.
type Telemetry struct {
	store    Recorder
	sim      *Simulator
	interval time.Duration
	logger   zerolog.Logger
}

// NewTelemetry creates a ticker. A non-positive interval uses DefaultInterval.
func NewTelemetry(store Recorder, sim *Simulator, interval time.Duration, logger zerolog.Logger) *Telemetry {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if sim == nil {
		sim = New(nil)
	}
	return &Telemetry{
		store:    store,
		sim:      sim,
		interval: interval,
		logger:   logger.With().Str("component", "telemetry").Logger(),
	}
}

// Run ticks until ctx is cancelled.
func (t *Telemetry) Run(ctx context.Context) {
	t.logger.Info().Dur("interval", t.interval).Msg("starting telemetry simulator")
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Debug().Msg("telemetry simulator stopping (context cancelled)")
			return
		case <-ticker.C:
			t.Tick(ctx)
		}
	}
}

// Tick records one simulated invocation. It returns the id of the item
// touched, or "" when the registry is empty.
func (t *Telemetry) Tick(ctx context.Context) string {
	all := t.store.Snapshot().All()
	if len(all) == 0 {
		return ""
	}
	it := all[t.sim.intn(len(all))]
	if it == nil {
		return ""
	}
	success := t.sim.float() < successRatio
	if _, err := t.store.RecordUsage(ctx, it.ID, success); err != nil {
		// the item may have been removed since the snapshot
		t.logger.Debug().Err(err).Str("item_id", it.ID).Msg("failed to record usage")
		return ""
	}
	return it.ID
}
