package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dom/design-system-studio/internal/api/middleware"
	"github.com/dom/design-system-studio/internal/domain"
	"github.com/dom/design-system-studio/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// Get serves a profile by user id. A missing row is a 404, which clients
// treat as the distinguishable "not found" kind that triggers creation.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid profile id")
		return
	}

	profile, err := h.profileService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Ensure creates the caller's profile if it does not exist yet and returns
// it either way. Insert-or-ignore semantics make concurrent calls safe.
func (h *ProfileHandler) Ensure(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	profile, created, err := h.profileService.EnsureProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, http.StatusConflict, "Could not create profile")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, profile)
}

// Update persists partial fields to the caller's own profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var update domain.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.profileService.Update(r.Context(), userID, update)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrUsernameTaken):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
