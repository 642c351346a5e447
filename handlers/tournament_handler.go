package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goodplay/goodplay-backend/middleware"
	"github.com/goodplay/goodplay-backend/models"
	"github.com/goodplay/goodplay-backend/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(tournamentService services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService}
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	input.OrganizerID = userID

	tournament, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusCreated, "tournament created", map[string]interface{}{"tournament": tournament})
}

func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "tournament", map[string]interface{}{"tournament": tournament})
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt64(r, "limit", 50)
	offset := queryInt64(r, "offset", 0)

	var status *models.TournamentStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.TournamentStatus(raw)
		status = &s
	}

	tournaments, err := h.tournamentService.List(r.Context(), status, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "tournaments", map[string]interface{}{"tournaments": tournaments})
}

func (h *TournamentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := objectIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		TeamID string `json:"team_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	teamID, err := primitive.ObjectIDFromHex(input.TeamID)
	if err != nil {
		badRequestResponse(w, fmt.Errorf("invalid team_id"))
		return
	}

	tournament, err := h.tournamentService.EnrollTeam(r.Context(), tournamentID, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "team enrolled", map[string]interface{}{"tournament": tournament})
}

func (h *TournamentHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.tournamentService.Start, "tournament started")
}

func (h *TournamentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.tournamentService.Complete, "tournament completed")
}

func (h *TournamentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.tournamentService.Cancel, "tournament cancelled")
}

func (h *TournamentHandler) ReportScore(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := objectIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.ReportScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.ReportScore(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "score recorded", map[string]interface{}{"tournament": tournament})
}

func (h *TournamentHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id primitive.ObjectID) (*models.TeamTournament, error),
	message string,
) {
	id, err := objectIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := op(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, message, map[string]interface{}{"tournament": tournament})
}
