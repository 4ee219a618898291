package client

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/dom/design-system-studio/internal/authstate"
	ws "github.com/dom/design-system-studio/internal/websocket"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// listen consumes the session event stream for one session. Events caused
// by this client's own calls are already applied locally and are skipped by
// session id; what remains is state changed elsewhere, most importantly a
// sign-out from another device.
func (c *Client) listen(ctx context.Context, session *authstate.Session) {
	endpoint := c.wsURL + "?token=" + url.QueryEscape(session.AccessToken)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		c.logger.Warn("event stream connection failed", zap.Error(err))
		return
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})

	var lastSeq uint64
	for {
		var event ws.SessionEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() == nil {
				c.logger.Warn("event stream closed", zap.Error(err))
			}
			return
		}

		if event.Seq <= lastSeq {
			continue
		}
		lastSeq = event.Seq

		c.apply(session, event)
	}
}

func (c *Client) apply(session *authstate.Session, event ws.SessionEvent) {
	switch event.Type {
	case ws.EventSignedOut:
		// The server invalidates every session the user holds, this
		// client's included.
		c.logger.Info("signed out remotely", zap.String("user_id", event.UserID.String()))
		c.dropSession()

	case ws.EventUserUpdated:
		if event.Session == nil {
			return
		}
		c.mu.Lock()
		current, user := c.session, c.user
		if current == nil || user == nil {
			c.mu.Unlock()
			return
		}
		updated := *user
		updated.Email = event.Session.Email
		updated.Username = event.Session.Username
		updated.FirstName = event.Session.FirstName
		c.user = &updated
		c.mu.Unlock()
		c.notify(current, &updated)

	case ws.EventSignedIn, ws.EventTokenRefreshed:
		// Token material never travels over the stream. Events for our own
		// session were applied on the call path; events for sessions on
		// other devices do not change this client's credentials.
		if event.Session != nil && event.Session.ID != session.ID {
			c.logger.Debug("ignoring session event for another device",
				zap.String("type", string(event.Type)))
		}
	}
}

func toWebsocketURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://")
	default:
		return baseURL
	}
}
