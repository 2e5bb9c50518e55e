package api

import (
	"testing"
	"time"

	"causalgate/domain/verdict"
	"causalgate/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan DecisionEvent) DecisionEvent {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for decision")
		return DecisionEvent{}
	}
}

func TestDecisionHub_FiltersByGate(t *testing.T) {
	hub := NewDecisionHub(internal.NewDefaultLogger())

	all, cancelAll := hub.Subscribe("")
	defer cancelAll()
	mech, cancelMech := hub.Subscribe("mechanism")
	defer cancelMech()
	assert.Equal(t, 2, hub.Subscribers())

	hub.Publish(verdict.Decision{Gate: "novelty", Subject: "h-1", Status: "pass"})
	hub.Publish(verdict.Decision{Gate: "mechanism", Subject: "pre_release", Status: "blocked"})

	assert.Equal(t, "novelty", receive(t, all).Gate)
	assert.Equal(t, "mechanism", receive(t, all).Gate)

	got := receive(t, mech)
	assert.Equal(t, "blocked", got.Status)
	assert.False(t, got.Timestamp.IsZero())
	assert.Empty(t, mech)
}

func TestDecisionHub_CancelClosesChannel(t *testing.T) {
	hub := NewDecisionHub(internal.NewDefaultLogger())
	ch, cancel := hub.Subscribe("")

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Subscribers())

	hub.Publish(verdict.Decision{Gate: "mechanism"})
}

func TestDecisionHub_SlowSubscriberDropsEvents(t *testing.T) {
	hub := NewDecisionHub(internal.NewDefaultLogger())
	ch, cancel := hub.Subscribe("")
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Publish(verdict.Decision{Gate: "novelty"})
	}
	require.Len(t, ch, subscriberBuffer)
}
