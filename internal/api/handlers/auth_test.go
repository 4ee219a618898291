package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dom/design-system-studio/internal/testutil"
	"github.com/dom/design-system-studio/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Register(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		request        map[string]string
		setup          func()
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name: "successful registration",
			request: map[string]string{
				"email":     "newuser@example.com",
				"password":  "password123",
				"username":  "newuser",
				"firstName": "New",
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result testutil.AuthResponse
				testutil.AssertJSONResponse(t, resp, &result)
				assert.Equal(t, "newuser@example.com", result.User.Email)
				assert.Equal(t, "newuser", result.User.Username)
				assert.NotEmpty(t, result.AccessToken)
				assert.NotEmpty(t, result.RefreshToken)
				assert.NotEmpty(t, result.Session.ID)
			},
		},
		{
			name: "invalid email",
			request: map[string]string{
				"email":    "not-an-email",
				"password": "password123",
				"username": "someone",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "password too short",
			request: map[string]string{
				"email":    "short@example.com",
				"password": "short",
				"username": "someone",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate email",
			request: map[string]string{
				"email":    "existing@example.com",
				"password": "password123",
				"username": "brandnew",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("existing@example.com").
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "duplicate username",
			request: map[string]string{
				"email":    "brandnew@example.com",
				"password": "password123",
				"username": "existingname",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithUsername("existingname").
					BuildWithProfile(t, ts.DB.DB)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "empty request body",
			request:        map[string]string{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.DB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			body, _ := json.Marshal(tt.request)
			resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, rawPassword := testutil.NewUserBuilder().
		WithEmail("login@example.com").
		WithPassword("correctpassword").
		Build(t, ts.DB.DB)

	tests := []struct {
		name           string
		request        map[string]string
		expectedStatus int
	}{
		{
			name: "successful login",
			request: map[string]string{
				"email":    user.Email,
				"password": rawPassword,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "wrong password",
			request: map[string]string{
				"email":    user.Email,
				"password": "wrongpassword",
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "unknown email",
			request: map[string]string{
				"email":    "nobody@example.com",
				"password": "password123",
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "missing fields",
			request: map[string]string{
				"email": user.Email,
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.request)
			resp, err := http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestAuthHandler_RefreshAndLogout(t *testing.T) {
	ts := testutil.NewTestServer(t)

	reqBody := map[string]string{
		"email":    "refresh@example.com",
		"password": "password123",
		"username": "refresher",
	}
	body, _ := json.Marshal(reqBody)
	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var auth testutil.AuthResponse
	testutil.AssertJSONResponse(t, resp, &auth)

	t.Run("refresh rotates the pair", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"refreshToken": auth.RefreshToken})
		resp, err := http.Post(ts.APIURL("/auth/refresh"), "application/json", bytes.NewBuffer(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var refreshed testutil.AuthResponse
		testutil.AssertJSONResponse(t, resp, &refreshed)
		assert.NotEqual(t, auth.RefreshToken, refreshed.RefreshToken)
		auth = refreshed
	})

	t.Run("me returns the authenticated user", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/auth/me"), nil, auth.AccessToken)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var me struct {
			Email string `json:"email"`
		}
		testutil.AssertJSONResponse(t, resp, &me)
		assert.Equal(t, "refresh@example.com", me.Email)
	})

	t.Run("logout kills the refresh token", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/auth/logout"), nil, auth.AccessToken)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		body, _ := json.Marshal(map[string]string{"refreshToken": auth.RefreshToken})
		refreshResp, err := http.Post(ts.APIURL("/auth/refresh"), "application/json", bytes.NewBuffer(body))
		require.NoError(t, err)
		defer refreshResp.Body.Close()

		testutil.AssertStatusCode(t, refreshResp, http.StatusUnauthorized)
	})

	t.Run("requests without a token are rejected", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/auth/me"), nil, "")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})
}

func TestAuthHandler_SessionEventStream(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, token := testutil.NewUserBuilder().
		WithEmail("stream@example.com").
		WithPassword("password123").
		BuildAndAuthenticate(t, ts)

	ws := testutil.NewWSClient(t, ts.WebSocketURL(token))

	// A login elsewhere shows up on the stream.
	body, _ := json.Marshal(map[string]string{
		"email":    "stream@example.com",
		"password": "password123",
	})
	resp, err := http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	event := ws.ExpectEvent(websocket.EventSignedIn, 2*time.Second)
	assert.Equal(t, user.ID, event.UserID)
	require.NotNil(t, event.Session)
	assert.Equal(t, "stream@example.com", event.Session.Email)

	// A logout shows up too, and carries no session info.
	req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/auth/logout"), nil, token)
	logoutResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	logoutResp.Body.Close()
	testutil.AssertStatusCode(t, logoutResp, http.StatusOK)

	signedOut := ws.ExpectEvent(websocket.EventSignedOut, 2*time.Second)
	assert.Equal(t, user.ID, signedOut.UserID)
	assert.Nil(t, signedOut.Session)
	assert.Greater(t, signedOut.Seq, event.Seq, "events are ordered")
}

func TestAuthHandler_EventStreamRequiresToken(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.APIURL("/auth/events"))
	require.NoError(t, err)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
}
