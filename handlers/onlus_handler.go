package handlers

import (
	"errors"
	"net/http"

	"github.com/goodplay/goodplay-backend/middleware"
	"github.com/goodplay/goodplay-backend/services"
)

// maxDocumentSize bounds compliance document uploads.
const maxDocumentSize = 10 << 20 // 10MB

type OnlusHandler struct {
	onlusService      services.OnlusService
	complianceService services.ComplianceService
}

func NewOnlusHandler(onlusService services.OnlusService, complianceService services.ComplianceService) *OnlusHandler {
	return &OnlusHandler{
		onlusService:      onlusService,
		complianceService: complianceService,
	}
}

func (h *OnlusHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var input services.SubmitApplicationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	app, err := h.onlusService.CreateApplication(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusCreated, "application created", map[string]interface{}{"application": app})
}

// UploadDocument accepts a multipart form with a "document" file field and an
// optional "kind" field.
func (h *OnlusHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	appID, err := objectIDParam(r, "applicationID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		badRequestResponse(w, errors.New("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		badRequestResponse(w, errors.New("document file is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	kind := r.FormValue("kind")

	app, err := h.onlusService.UploadDocument(r.Context(), userID, appID, kind, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "document uploaded", map[string]interface{}{"application": app})
}

func (h *OnlusHandler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	appID, err := objectIDParam(r, "applicationID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	app, err := h.onlusService.SubmitApplication(r.Context(), userID, appID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "application submitted for review", map[string]interface{}{"application": app})
}

func (h *OnlusHandler) ListOwnApplications(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	apps, err := h.onlusService.ListOwnApplications(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "applications", map[string]interface{}{"applications": apps})
}

func (h *OnlusHandler) ListPendingApplications(w http.ResponseWriter, r *http.Request) {
	limit := queryInt64(r, "limit", 50)
	offset := queryInt64(r, "offset", 0)

	apps, err := h.onlusService.ListPendingApplications(r.Context(), limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "pending applications", map[string]interface{}{"applications": apps})
}

func (h *OnlusHandler) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	reviewerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	appID, err := objectIDParam(r, "applicationID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	org, err := h.onlusService.ApproveApplication(r.Context(), reviewerID, appID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "application approved", map[string]interface{}{"organization": org})
}

func (h *OnlusHandler) RejectApplication(w http.ResponseWriter, r *http.Request) {
	reviewerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	appID, err := objectIDParam(r, "applicationID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	app, err := h.onlusService.RejectApplication(r.Context(), reviewerID, appID, input.Reason)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "application rejected", map[string]interface{}{"application": app})
}

func (h *OnlusHandler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "onlusID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	org, err := h.onlusService.GetOrganization(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "organization", map[string]interface{}{"organization": org})
}

func (h *OnlusHandler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	limit := queryInt64(r, "limit", 50)
	offset := queryInt64(r, "offset", 0)
	onlyActive := r.URL.Query().Get("all") != "true"

	orgs, err := h.onlusService.ListOrganizations(r.Context(), onlyActive, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "organizations", map[string]interface{}{"organizations": orgs})
}

// ReviewCompliance re-scores one organization on demand. Admin only.
func (h *OnlusHandler) ReviewCompliance(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "onlusID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	report, err := h.complianceService.Review(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "compliance review complete", map[string]interface{}{"report": report})
}

// ReviewAllCompliance re-scores every organization. Admin only.
func (h *OnlusHandler) ReviewAllCompliance(w http.ResponseWriter, r *http.Request) {
	reports, err := h.complianceService.ReviewAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "compliance review complete", map[string]interface{}{"reports": reports})
}
