package handlers

import (
	"net/http"

	"github.com/goodplay/goodplay-backend/services"
)

type ModeHandler struct {
	modeService services.ModeService
}

func NewModeHandler(modeService services.ModeService) *ModeHandler {
	return &ModeHandler{modeService: modeService}
}

func (h *ModeHandler) List(w http.ResponseWriter, r *http.Request) {
	modes, err := h.modeService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "modes", map[string]interface{}{"modes": modes})
}

func (h *ModeHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	modes, err := h.modeService.ListActive(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "active modes", map[string]interface{}{"modes": modes})
}

func (h *ModeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "modeID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	mode, err := h.modeService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "mode", map[string]interface{}{"mode": mode})
}

func (h *ModeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateModeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	mode, err := h.modeService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusCreated, "mode created", map[string]interface{}{"mode": mode})
}

func (h *ModeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "modeID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.UpdateModeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	mode, err := h.modeService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "mode updated", map[string]interface{}{"mode": mode})
}

func (h *ModeHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "modeID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		Active bool `json:"active"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	mode, err := h.modeService.SetActive(r.Context(), id, input.Active)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "mode updated", map[string]interface{}{"mode": mode})
}
