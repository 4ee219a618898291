// Package client talks to the studio backend over HTTP and websocket. It
// implements the identity and profile boundaries that authstate consumes,
// plus the design system and generation endpoints the CLI drives.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/dom/design-system-studio/internal/authstate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client holds at most one active session. All identity methods mutate
// that session and fan the resulting lifecycle events out to registered
// handlers in registration order.
type Client struct {
	baseURL    string
	wsURL      string
	httpClient *http.Client
	logger     *zap.Logger

	mu       sync.Mutex
	session  *authstate.Session
	user     *authstate.User
	handlers map[int]authstate.SessionChangeHandler
	nextID   int
	wsCancel context.CancelFunc

	// dispatchMu keeps handler invocations for successive events from
	// interleaving.
	dispatchMu sync.Mutex
}

func New(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL + "/api/v1",
		wsURL:   toWebsocketURL(baseURL) + "/api/v1/auth/events",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:   logger,
		handlers: make(map[int]authstate.SessionChangeHandler),
	}
}

// Response types matching the backend.

type userPayload struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
}

type sessionPayload struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type authPayload struct {
	User         userPayload    `json:"user"`
	Session      sessionPayload `json:"session"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
}

// GetSession returns the currently held session and user, or nil/nil when
// signed out. A session past its expiry is refreshed first; if the refresh
// fails the session is dropped rather than returned stale.
func (c *Client) GetSession(ctx context.Context) (*authstate.Session, *authstate.User, error) {
	c.mu.Lock()
	session, user := c.session, c.user
	c.mu.Unlock()

	if session == nil {
		return nil, nil, nil
	}

	if time.Now().After(session.ExpiresAt) {
		if err := c.Refresh(ctx); err != nil {
			c.logger.Warn("session refresh failed, dropping session", zap.Error(err))
			c.dropSession()
			return nil, nil, nil
		}
		c.mu.Lock()
		session, user = c.session, c.user
		c.mu.Unlock()
	}

	return session, user, nil
}

// OnSessionChange registers a handler for session lifecycle transitions.
// The returned func unregisters it.
func (c *Client) OnSessionChange(handler authstate.SessionChangeHandler) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.handlers[id] = handler

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers, id)
	}, nil
}

func (c *Client) SignUp(ctx context.Context, email, password, username, firstName string) error {
	body := map[string]string{
		"email":     email,
		"password":  password,
		"username":  username,
		"firstName": firstName,
	}

	var result authPayload
	if err := c.post(ctx, "/auth/register", body, "", http.StatusOK, &result); err != nil {
		return err
	}

	c.adoptSession(&result)
	return nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) error {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var result authPayload
	if err := c.post(ctx, "/auth/login", body, "", http.StatusOK, &result); err != nil {
		return err
	}

	c.adoptSession(&result)
	return nil
}

// SignOut invalidates the session server-side, then clears it locally. The
// local state is cleared even when the server call fails: a client that
// asked to sign out never keeps using its tokens.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := ""
	if c.session != nil {
		token = c.session.AccessToken
	}
	c.mu.Unlock()

	var serverErr error
	if token != "" {
		serverErr = c.post(ctx, "/auth/logout", nil, token, http.StatusOK, nil)
	}

	c.dropSession()
	return serverErr
}

// GetCurrentUser re-fetches the authenticated user, metadata included.
func (c *Client) GetCurrentUser(ctx context.Context) (*authstate.User, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil {
		return nil, nil
	}

	var payload userPayload
	if err := c.get(ctx, "/auth/me", session.AccessToken, &payload); err != nil {
		return nil, err
	}

	return &authstate.User{
		ID:        payload.ID,
		Email:     payload.Email,
		Username:  payload.Username,
		FirstName: payload.FirstName,
	}, nil
}

// Refresh rotates the refresh token and swaps in the new session. Handlers
// observe a token_refreshed-style update: same user, new session.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil {
		return &APIError{Status: http.StatusUnauthorized, Message: "no session to refresh"}
	}

	body := map[string]string{"refreshToken": session.RefreshToken}

	var result authPayload
	if err := c.post(ctx, "/auth/refresh", body, "", http.StatusOK, &result); err != nil {
		return err
	}

	c.adoptSession(&result)
	return nil
}

// Close tears down the event subscription and forgets the session without
// contacting the server.
func (c *Client) Close() {
	c.mu.Lock()
	cancel := c.wsCancel
	c.wsCancel = nil
	c.session = nil
	c.user = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// adoptSession installs the session from an auth response, (re)connects the
// event stream, and notifies handlers.
func (c *Client) adoptSession(payload *authPayload) {
	session := &authstate.Session{
		ID:           payload.Session.ID,
		UserID:       payload.Session.UserID,
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		ExpiresAt:    payload.Session.ExpiresAt,
	}
	user := &authstate.User{
		ID:        payload.User.ID,
		Email:     payload.User.Email,
		Username:  payload.User.Username,
		FirstName: payload.User.FirstName,
	}

	c.mu.Lock()
	oldCancel := c.wsCancel
	c.session = session
	c.user = user

	ctx, cancel := context.WithCancel(context.Background())
	c.wsCancel = cancel
	c.mu.Unlock()

	if oldCancel != nil {
		oldCancel()
	}
	go c.listen(ctx, session)

	c.notify(session, user)
}

// dropSession clears local state and notifies handlers of the sign-out.
// Safe to call when already signed out.
func (c *Client) dropSession() {
	c.mu.Lock()
	hadSession := c.session != nil
	cancel := c.wsCancel
	c.wsCancel = nil
	c.session = nil
	c.user = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if hadSession {
		c.notify(nil, nil)
	}
}

func (c *Client) notify(session *authstate.Session, user *authstate.User) {
	c.mu.Lock()
	ids := make([]int, 0, len(c.handlers))
	for id := range c.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]authstate.SessionChangeHandler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, c.handlers[id])
	}
	c.mu.Unlock()

	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()
	for _, handler := range handlers {
		handler(session, user)
	}
}

// HTTP helpers

func (c *Client) get(ctx context.Context, path, token string, out interface{}) error {
	return c.send(ctx, http.MethodGet, path, nil, token, http.StatusOK, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, token string, wantStatus int, out interface{}) error {
	return c.send(ctx, http.MethodPost, path, body, token, wantStatus, out)
}

func (c *Client) patch(ctx context.Context, path string, body interface{}, token string, wantStatus int, out interface{}) error {
	return c.send(ctx, http.MethodPatch, path, body, token, wantStatus, out)
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}, token string, wantStatus int, out interface{}) error {
	resp, err := c.request(ctx, method, path, body, token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) request(ctx context.Context, method, path string, body interface{}, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
