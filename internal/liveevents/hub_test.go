package liveevents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesCentreAndBroadcast(t *testing.T) {
	hub := NewHub()

	centreSub, backlog, err := hub.Subscribe("42")
	require.NoError(t, err)
	defer centreSub.Close()
	assert.Empty(t, backlog)

	allSub, _, err := hub.Subscribe(BroadcastKey)
	require.NoError(t, err)
	defer allSub.Close()

	hub.Publish(LiveEvent{Kind: KindVisitCreated, CentreID: "42", Amount: 500})

	got := <-centreSub.Events()
	assert.Equal(t, KindVisitCreated, got.Kind)
	assert.Equal(t, int64(500), got.Amount)

	got = <-allSub.Events()
	assert.Equal(t, "42", got.CentreID)
}

func TestHub_SubscriberOnlySeesOwnCentre(t *testing.T) {
	hub := NewHub()

	sub, _, err := hub.Subscribe("1")
	require.NoError(t, err)
	defer sub.Close()

	hub.Publish(LiveEvent{Kind: KindVisitClosed, CentreID: "2"})

	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event for centre %s", ev.CentreID)
	default:
	}
}

func TestHub_BacklogReplayedToLateSubscriber(t *testing.T) {
	hub := NewHub()

	first, _, err := hub.Subscribe("7")
	require.NoError(t, err)

	hub.Publish(LiveEvent{Kind: KindVisitCreated, CentreID: "7"})
	hub.Publish(LiveEvent{Kind: KindVisitClosed, CentreID: "7"})

	second, backlog, err := hub.Subscribe("7")
	require.NoError(t, err)
	defer second.Close()

	require.Len(t, backlog, 2)
	assert.Equal(t, KindVisitCreated, backlog[0].Kind)
	assert.Equal(t, KindVisitClosed, backlog[1].Kind)

	first.Close()
}

func TestHub_BacklogBounded(t *testing.T) {
	hub := NewHub()

	keep, _, err := hub.Subscribe("9")
	require.NoError(t, err)
	defer keep.Close()

	for i := 0; i < DefaultBufferSize+10; i++ {
		hub.Publish(LiveEvent{Kind: KindMissedEntry, CentreID: "9"})
	}

	_, backlog, err := hub.Subscribe("9")
	require.NoError(t, err)
	assert.Len(t, backlog, DefaultBufferSize)
}

func TestHub_CloseIsIdempotent(t *testing.T) {
	hub := NewHub()

	sub, _, err := hub.Subscribe("3")
	require.NoError(t, err)
	sub.Close()
	sub.Close()

	// stream is gone once the last subscriber leaves
	hub.mu.RLock()
	_, ok := hub.streams["3"]
	hub.mu.RUnlock()
	assert.False(t, ok)
}
