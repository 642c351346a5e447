package handlers

import (
	"errors"
	"net/http"

	"github.com/goodplay/goodplay-backend/middleware"
	"github.com/goodplay/goodplay-backend/services"
)

const maxLogoSize = 2 << 20

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(teamService services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var input services.CreateTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	input.CreatorID = userID

	team, err := h.teamService.CreateTeam(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusCreated, "team created", map[string]interface{}{"team": team})
}

func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	teamID, err := objectIDParam(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	team, err := h.teamService.GetTeamByID(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "team", map[string]interface{}{"team": team})
}

func (h *TeamHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	teamID, err := objectIDParam(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	member, err := h.teamService.JoinTeam(r.Context(), teamID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "joined team", map[string]interface{}{"member": member})
}

func (h *TeamHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	teamID, err := objectIDParam(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.teamService.LeaveTeam(r.Context(), teamID, userID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "left team", nil)
}

func (h *TeamHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	teamID, err := objectIDParam(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.ContributeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	team, err := h.teamService.Contribute(r.Context(), teamID, userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "contribution recorded", map[string]interface{}{"team": team})
}

// UploadLogo accepts a multipart form with a "logo" image file field.
func (h *TeamHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	teamID, err := objectIDParam(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxLogoSize); err != nil {
		badRequestResponse(w, errors.New("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, errors.New("logo file is required"))
		return
	}
	defer file.Close()

	team, err := h.teamService.SetLogo(r.Context(), teamID, userID, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "logo updated", map[string]interface{}{"team": team})
}

func (h *TeamHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := queryInt64(r, "limit", 25)

	teams, err := h.teamService.Leaderboard(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "leaderboard", map[string]interface{}{"teams": teams})
}
