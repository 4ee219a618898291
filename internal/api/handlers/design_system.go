package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dom/design-system-studio/internal/api/middleware"
	"github.com/dom/design-system-studio/internal/domain"
	"github.com/dom/design-system-studio/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type DesignSystemHandler struct {
	systemService *service.DesignSystemService
	authService   *service.AuthService
}

func NewDesignSystemHandler(systemService *service.DesignSystemService, authService *service.AuthService) *DesignSystemHandler {
	return &DesignSystemHandler{
		systemService: systemService,
		authService:   authService,
	}
}

func (h *DesignSystemHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	systems, err := h.systemService.ListPublic(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, systems)
}

// ListMine returns the authenticated user's own systems, private ones
// included.
func (h *DesignSystemHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	systems, err := h.systemService.ListByAuthor(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, systems)
}

func (h *DesignSystemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid design system id")
		return
	}

	system, err := h.systemService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrDesignSystemNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Private systems are visible to their author only; everyone else gets
	// the same 404 as a missing row.
	if !system.IsPublic && h.requesterID(r) != system.AuthorID {
		writeError(w, http.StatusNotFound, domain.ErrDesignSystemNotFound.Error())
		return
	}

	writeJSON(w, http.StatusOK, system)
}

func (h *DesignSystemHandler) RemixSeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid design system id")
		return
	}

	seed, err := h.systemService.RemixSeed(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrDesignSystemNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, seed)
}

// requesterID resolves the optional bearer token on public routes. Returns
// uuid.Nil for anonymous or invalid tokens.
func (h *DesignSystemHandler) requesterID(r *http.Request) uuid.UUID {
	authHeader := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found {
		return uuid.Nil
	}

	userID, err := middleware.UserIDFromToken(h.authService, token)
	if err != nil {
		return uuid.Nil
	}
	return userID
}
