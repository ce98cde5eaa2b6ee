package activity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_PublishAssignsIDAndTime(t *testing.T) {
	f := NewFeed(4, 4)

	ev := f.Publish(Event{Type: TypeApproved, Message: "approved"})
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.Time.IsZero())
	assert.Equal(t, int64(1), f.Total())
}

func TestFeed_RecentIsBounded(t *testing.T) {
	f := NewFeed(10, 3)
	for i := 0; i < 5; i++ {
		f.Publish(Event{Type: TypeComment, Message: fmt.Sprint(i)})
	}

	recent := f.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, []string{"2", "3", "4"}, []string{recent[0].Message, recent[1].Message, recent[2].Message})

	last := f.Recent(1)
	require.Len(t, last, 1)
	assert.Equal(t, "4", last[0].Message)
	assert.Len(t, f.Recent(100), 3)
}

func TestFeed_PublishNeverBlocks(t *testing.T) {
	f := NewFeed(1, 10)
	f.Publish(Event{Message: "a"})
	f.Publish(Event{Message: "b"})

	assert.Equal(t, int64(2), f.Total())
	assert.Equal(t, int64(1), f.Dropped())
	assert.Len(t, f.Recent(0), 2)
}

func TestFeed_Next(t *testing.T) {
	f := NewFeed(2, 2)
	f.Publish(Event{Message: "queued"})

	ev, ok := f.Next(context.Background())
	require.True(t, ok)
	assert.Equal(t, "queued", ev.Message)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, ok = f.Next(ctx)
	assert.False(t, ok)
}

func TestEvent_String(t *testing.T) {
	ev := Event{
		Type:     TypeApproved,
		ItemName: "RAG Agent",
		User:     "alice",
		Message:  "governance status set to approved",
		Time:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	assert.Equal(t, "2024-01-02T03:04:05Z approved [RAG Agent] by alice: governance status set to approved", ev.String())
}
