package registry

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmatrix-dev/agentmatrix/internal/activity"
	"github.com/agentmatrix-dev/agentmatrix/internal/config"
	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

func TestOpenSink(t *testing.T) {
	ctx := context.Background()

	sink, err := OpenSink(ctx, &config.Config{Store: "memory"}, zerolog.Nop())
	require.NoError(t, err)
	defer sink.Close()

	snap := sink.Load(ctx)
	assert.Len(t, snap.Agents, 7, "empty store falls back to the examples")

	require.NoError(t, sink.Save(ctx, models.Snapshot{Agents: []*models.Item{{ID: "a", Name: "A"}}}))
	snap = sink.Load(ctx)
	require.Len(t, snap.Agents, 1)
	assert.Empty(t, snap.MCPServers)

	_, err = OpenSink(ctx, &config.Config{Store: "floppy"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestApp(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		cancel  bool
		wantErr string
	}{
		{name: "listener failure stops the group", addr: "127.0.0.1:-1", wantErr: "http:"},
		{name: "cancellation is a clean stop", addr: "127.0.0.1:0", cancel: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Store:             "memory",
				HTTPAddr:          tt.addr,
				SimulatorEnabled:  true,
				SimulatorInterval: 10 * time.Millisecond,
			}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			done := make(chan error, 1)
			go func() { done <- App(ctx, cfg, zerolog.Nop()) }()
			if tt.cancel {
				time.Sleep(50 * time.Millisecond)
				cancel()
			}

			select {
			case err := <-done:
				if tt.wantErr == "" {
					assert.NoError(t, err)
					return
				}
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			case <-time.After(5 * time.Second):
				t.Fatal("App did not return")
			}
		})
	}
}

func TestLogActivity(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	feed := activity.NewFeed(8, 8)

	feed.Publish(activity.Event{Type: activity.TypeApproved, ItemID: "rag-agent", User: "root", Message: "approved"})
	feed.Publish(activity.Event{Type: activity.TypeError, Message: "Invalid file format."})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	LogActivity(ctx, feed, logger)

	out := buf.String()
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"item":"rag-agent"`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, "Invalid file format.")
}
