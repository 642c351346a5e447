package handlers

import (
	"net/http"

	"github.com/goodplay/goodplay-backend/middleware"
	"github.com/goodplay/goodplay-backend/services"
)

type AchievementHandler struct {
	achievementService services.AchievementService
}

func NewAchievementHandler(achievementService services.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService}
}

func (h *AchievementHandler) List(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.achievementService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "achievements", map[string]interface{}{"achievements": achievements})
}

func (h *AchievementHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	achievements, err := h.achievementService.ListForUser(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "achievement progress", map[string]interface{}{"achievements": achievements})
}

func (h *AchievementHandler) Claim(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	achievementID, err := objectIDParam(r, "achievementID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	result, err := h.achievementService.ClaimReward(r.Context(), userID, achievementID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "reward claimed", result)
}

// Create registers a new achievement definition. Admin only.
func (h *AchievementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateAchievementInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	achievement, err := h.achievementService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusCreated, "achievement created", map[string]interface{}{"achievement": achievement})
}
