package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Client pumps one user's session events over a websocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID
	logger *zap.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, logger *zap.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		logger: logger,
	}
}

// Run subscribes the connection to the user's event stream and blocks until
// the peer disconnects or the subscription is closed. The subscription is
// always released before Run returns.
func (c *Client) Run() {
	events, cancel := c.hub.Subscribe(c.userID)
	defer cancel()
	defer c.conn.Close()

	done := make(chan struct{})
	go c.readPump(done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				c.logger.Error("failed to marshal session event", zap.Error(err))
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// readPump drains the connection so control frames are processed and peer
// closes are noticed. Event subscribers do not send application messages.
func (c *Client) readPump(done chan<- struct{}) {
	defer close(done)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("session event socket error", zap.Error(err))
			}
			return
		}
	}
}
