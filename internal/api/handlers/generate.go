package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dom/design-system-studio/internal/api/middleware"
	"github.com/dom/design-system-studio/internal/domain"
	"github.com/dom/design-system-studio/internal/service"
)

type GenerateHandler struct {
	generationService *service.GenerationService
}

func NewGenerateHandler(generationService *service.GenerationService) *GenerateHandler {
	return &GenerateHandler{generationService: generationService}
}

func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input service.GenerateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	system, err := h.generationService.Generate(r.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrGenerationLimit):
			writeError(w, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, domain.ErrDesignSystemNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrGenerationFailed):
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, system)
}

func (h *GenerateHandler) Remaining(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	remaining, err := h.generationService.Remaining(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"remaining": remaining})
}
