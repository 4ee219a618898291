package websocket_test

import (
	"testing"
	"time"

	"github.com/dom/design-system-studio/internal/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func receive(t *testing.T, events <-chan websocket.SessionEvent) websocket.SessionEvent {
	t.Helper()
	select {
	case event, ok := <-events:
		require.True(t, ok, "channel closed unexpectedly")
		return event
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return websocket.SessionEvent{}
	}
}

func TestHub_DeliversToSubscriber(t *testing.T) {
	hub := websocket.NewHub(zap.NewNop())
	userID := uuid.New()

	events, cancel := hub.Subscribe(userID)
	defer cancel()

	hub.Publish(websocket.SessionEvent{Type: websocket.EventSignedIn, UserID: userID})

	event := receive(t, events)
	assert.Equal(t, websocket.EventSignedIn, event.Type)
	assert.Equal(t, userID, event.UserID)
	assert.NotZero(t, event.Seq)
	assert.False(t, event.EmittedAt.IsZero())
}

func TestHub_EventsAreOrderedPerSubscriber(t *testing.T) {
	hub := websocket.NewHub(zap.NewNop())
	userID := uuid.New()

	events, cancel := hub.Subscribe(userID)
	defer cancel()

	types := []websocket.EventType{
		websocket.EventSignedIn,
		websocket.EventTokenRefreshed,
		websocket.EventUserUpdated,
		websocket.EventSignedOut,
	}
	for _, typ := range types {
		hub.Publish(websocket.SessionEvent{Type: typ, UserID: userID})
	}

	var lastSeq uint64
	for _, want := range types {
		event := receive(t, events)
		assert.Equal(t, want, event.Type)
		assert.Greater(t, event.Seq, lastSeq)
		lastSeq = event.Seq
	}
}

func TestHub_OnlyTargetUserReceives(t *testing.T) {
	hub := websocket.NewHub(zap.NewNop())
	alice, bob := uuid.New(), uuid.New()

	aliceEvents, cancelAlice := hub.Subscribe(alice)
	defer cancelAlice()
	bobEvents, cancelBob := hub.Subscribe(bob)
	defer cancelBob()

	hub.Publish(websocket.SessionEvent{Type: websocket.EventSignedOut, UserID: alice})

	event := receive(t, aliceEvents)
	assert.Equal(t, alice, event.UserID)

	select {
	case event := <-bobEvents:
		t.Fatalf("bob received alice's event: %v", event.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_MultipleSubscribersPerUser(t *testing.T) {
	hub := websocket.NewHub(zap.NewNop())
	userID := uuid.New()

	first, cancelFirst := hub.Subscribe(userID)
	defer cancelFirst()
	second, cancelSecond := hub.Subscribe(userID)
	defer cancelSecond()

	assert.Equal(t, 2, hub.SubscriberCount(userID))

	hub.Publish(websocket.SessionEvent{Type: websocket.EventTokenRefreshed, UserID: userID})

	assert.Equal(t, websocket.EventTokenRefreshed, receive(t, first).Type)
	assert.Equal(t, websocket.EventTokenRefreshed, receive(t, second).Type)
}

func TestHub_CancelClosesChannel(t *testing.T) {
	hub := websocket.NewHub(zap.NewNop())
	userID := uuid.New()

	events, cancel := hub.Subscribe(userID)
	cancel()

	_, ok := <-events
	assert.False(t, ok, "channel should be closed after cancel")
	assert.Equal(t, 0, hub.SubscriberCount(userID))

	// Cancel is idempotent.
	cancel()
}

func TestHub_SlowSubscriberIsDropped(t *testing.T) {
	hub := websocket.NewHub(zap.NewNop())
	userID := uuid.New()

	events, cancel := hub.Subscribe(userID)
	defer cancel()

	// Fill the buffer without draining, then overflow it.
	for i := 0; i < 20; i++ {
		hub.Publish(websocket.SessionEvent{Type: websocket.EventUserUpdated, UserID: userID})
	}

	assert.Equal(t, 0, hub.SubscriberCount(userID), "overflowing subscriber is removed")

	// The channel still holds the buffered prefix, in order, then closes.
	var lastSeq uint64
	count := 0
	for event := range events {
		assert.Greater(t, event.Seq, lastSeq)
		lastSeq = event.Seq
		count++
	}
	assert.Greater(t, count, 0)
}
