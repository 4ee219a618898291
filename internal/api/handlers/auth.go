package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dom/design-system-studio/internal/api/middleware"
	"github.com/dom/design-system-studio/internal/domain"
	"github.com/dom/design-system-studio/internal/metrics"
	"github.com/dom/design-system-studio/internal/service"
	ws "github.com/dom/design-system-studio/internal/websocket"
)

type AuthHandler struct {
	authService *service.AuthService
	hub         *ws.Hub
	collector   *metrics.Collector
}

func NewAuthHandler(authService *service.AuthService, hub *ws.Hub, collector *metrics.Collector) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		hub:         hub,
		collector:   collector,
	}
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
}

type SessionResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	ExpiresAt string `json:"expiresAt"`
}

type AuthResponse struct {
	User         UserResponse    `json:"user"`
	Session      SessionResponse `json:"session"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.SignUp(r.Context(), service.SignUpInput{
		Email:     req.Email,
		Password:  req.Password,
		Username:  req.Username,
		FirstName: req.FirstName,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken), errors.Is(err, domain.ErrUsernameTaken):
			writeError(w, http.StatusConflict, err.Error())
		default:
			// Validation failures carry the provider's reason verbatim.
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.publish(ws.EventSignedIn, result)
	writeJSON(w, http.StatusOK, toAuthResponse(result))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := h.authService.SignIn(r.Context(), service.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.publish(ws.EventSignedIn, result)
	writeJSON(w, http.StatusOK, toAuthResponse(result))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "Refresh token required")
		return
	}

	result, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrSessionExpired) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.publish(ws.EventTokenRefreshed, result)
	writeJSON(w, http.StatusOK, toAuthResponse(result))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.authService.SignOut(r.Context(), userID); err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.hub.Publish(ws.SessionEvent{Type: ws.EventSignedOut, UserID: userID})
	h.collector.RecordSessionEvent(string(ws.EventSignedOut))

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) publish(eventType ws.EventType, result *service.AuthResult) {
	h.hub.Publish(ws.SessionEvent{
		Type:   eventType,
		UserID: result.User.ID,
		Session: &ws.SessionInfo{
			ID:        result.Session.ID,
			UserID:    result.User.ID,
			Email:     result.User.Email,
			Username:  result.User.Username,
			FirstName: result.User.FirstName,
			ExpiresAt: result.Session.ExpiresAt,
		},
	})
	h.collector.RecordSessionEvent(string(eventType))
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
	}
}

func toAuthResponse(result *service.AuthResult) AuthResponse {
	return AuthResponse{
		User: toUserResponse(result.User),
		Session: SessionResponse{
			ID:        result.Session.ID.String(),
			UserID:    result.Session.UserID.String(),
			ExpiresAt: result.Session.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
		},
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}
}
