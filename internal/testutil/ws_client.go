package testutil

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dom/design-system-studio/internal/websocket"
	gorillaWS "github.com/gorilla/websocket"
)

// WSClient is a test client for the session event stream
type WSClient struct {
	t      *testing.T
	conn   *gorillaWS.Conn
	events chan *websocket.SessionEvent
	errors chan error
	done   chan struct{}
	mu     sync.Mutex
}

// NewWSClient connects to the event stream at url
func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()

	dialer := gorillaWS.DefaultDialer
	dialer.HandshakeTimeout = 5 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect to websocket: %v", err)
	}

	client := &WSClient{
		t:      t,
		conn:   conn,
		events: make(chan *websocket.SessionEvent, 100),
		errors: make(chan error, 10),
		done:   make(chan struct{}),
	}

	go client.readPump()

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

func (c *WSClient) readPump() {
	defer close(c.events)
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				select {
				case <-c.done:
					return
				case c.errors <- err:
				}
				return
			}

			var event websocket.SessionEvent
			if err := json.Unmarshal(data, &event); err != nil {
				c.errors <- err
				continue
			}

			select {
			case c.events <- &event:
			case <-c.done:
				return
			}
		}
	}
}

// Close closes the WebSocket connection gracefully
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
		close(c.done)
		c.conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""))
		c.conn.Close()
	}
}

// ExpectEvent waits for an event of the specified type, skipping others
func (c *WSClient) ExpectEvent(eventType websocket.EventType, timeout time.Duration) *websocket.SessionEvent {
	c.t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case event := <-c.events:
			if event == nil {
				c.t.Fatalf("connection closed while waiting for %s", eventType)
			}
			if event.Type == eventType {
				return event
			}
		case err := <-c.errors:
			c.t.Fatalf("error while waiting for %s: %v", eventType, err)
		case <-deadline:
			c.t.Fatalf("timeout waiting for event type %s", eventType)
		}
	}
}

// ExpectNoEvent verifies no events are received within timeout
func (c *WSClient) ExpectNoEvent(timeout time.Duration) {
	c.t.Helper()

	select {
	case event := <-c.events:
		if event != nil {
			c.t.Fatalf("unexpected event received: %s", event.Type)
		}
	case <-time.After(timeout):
		// Expected
	}
}

// CollectEvents waits until count events have been received and returns them
// in arrival order
func (c *WSClient) CollectEvents(count int, timeout time.Duration) []*websocket.SessionEvent {
	c.t.Helper()

	events := make([]*websocket.SessionEvent, 0, count)
	deadline := time.After(timeout)

	for len(events) < count {
		select {
		case event := <-c.events:
			if event == nil {
				c.t.Fatalf("connection closed after receiving %d/%d events", len(events), count)
			}
			events = append(events, event)
		case err := <-c.errors:
			c.t.Fatalf("error after receiving %d/%d events: %v", len(events), count, err)
		case <-deadline:
			c.t.Fatalf("timeout waiting for events: got %d/%d", len(events), count)
		}
	}

	return events
}
