package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goodplay/goodplay-backend/models"
	"github.com/goodplay/goodplay-backend/repositories"
	"github.com/goodplay/goodplay-backend/storage"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var allowedDocumentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

type SubmitApplicationInput struct {
	Name        string  `json:"name"`
	TaxCode     string  `json:"tax_code"`
	Description string  `json:"description"`
	Website     *string `json:"website"`
	ContactMail string  `json:"contact_email"`
}

type OnlusService interface {
	CreateApplication(ctx context.Context, applicantID primitive.ObjectID, input SubmitApplicationInput) (*models.OnlusApplication, error)
	UploadDocument(ctx context.Context, applicantID, applicationID primitive.ObjectID, kind, contentType string, r io.Reader) (*models.OnlusApplication, error)
	SubmitApplication(ctx context.Context, applicantID, applicationID primitive.ObjectID) (*models.OnlusApplication, error)
	ListOwnApplications(ctx context.Context, applicantID primitive.ObjectID) ([]models.OnlusApplication, error)

	// Admin review surface.
	ListPendingApplications(ctx context.Context, limit, offset int64) ([]models.OnlusApplication, error)
	ApproveApplication(ctx context.Context, reviewerID, applicationID primitive.ObjectID) (*models.OnlusOrganization, error)
	RejectApplication(ctx context.Context, reviewerID, applicationID primitive.ObjectID, reason string) (*models.OnlusApplication, error)

	GetOrganization(ctx context.Context, id primitive.ObjectID) (*models.OnlusOrganization, error)
	ListOrganizations(ctx context.Context, onlyActive bool, limit, offset int64) ([]models.OnlusOrganization, error)
}

type onlusService struct {
	appRepo   repositories.ApplicationRepository
	onlusRepo repositories.OnlusRepository
	uploader  storage.FileUploader
}

func NewOnlusService(appRepo repositories.ApplicationRepository, onlusRepo repositories.OnlusRepository, uploader storage.FileUploader) OnlusService {
	return &onlusService{
		appRepo:   appRepo,
		onlusRepo: onlusRepo,
		uploader:  uploader,
	}
}

func (s *onlusService) CreateApplication(ctx context.Context, applicantID primitive.ObjectID, input SubmitApplicationInput) (*models.OnlusApplication, error) {
	if input.Name == "" || input.TaxCode == "" || input.ContactMail == "" {
		return nil, ErrValidationFailed
	}
	app := &models.OnlusApplication{
		ApplicantID: applicantID,
		Name:        input.Name,
		TaxCode:     input.TaxCode,
		Description: input.Description,
		Website:     input.Website,
		ContactMail: input.ContactMail,
		Status:      models.ApplicationDraft,
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *onlusService) UploadDocument(ctx context.Context, applicantID, applicationID primitive.ObjectID, kind, contentType string, r io.Reader) (*models.OnlusApplication, error) {
	if s.uploader == nil {
		return nil, ErrStorageNotConfigured
	}
	ext, ok := allowedDocumentTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported document content type %q", ErrValidationFailed, contentType)
	}
	if kind == "" {
		kind = "other"
	}

	app, err := s.getOwnedApplication(ctx, applicantID, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationDraft {
		return nil, ErrApplicationNotDraft
	}

	key := fmt.Sprintf("onlus/%s/%s%s", applicationID.Hex(), uuid.NewString(), ext)
	result, err := s.uploader.Upload(ctx, key, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}

	doc := models.ComplianceDocument{
		Key:         result.Key,
		Kind:        kind,
		ContentType: contentType,
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.appRepo.AddDocument(ctx, applicationID, doc); err != nil {
		return nil, err
	}

	app.Documents = append(app.Documents, doc)
	s.populateDocumentURLs(app.Documents)
	return app, nil
}

func (s *onlusService) SubmitApplication(ctx context.Context, applicantID, applicationID primitive.ObjectID) (*models.OnlusApplication, error) {
	app, err := s.getOwnedApplication(ctx, applicantID, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationDraft {
		return nil, ErrApplicationNotDraft
	}
	if len(app.Documents) == 0 {
		return nil, ErrApplicationMissingDocument
	}

	now := time.Now().UTC()
	app.Status = models.ApplicationUnderReview
	app.SubmittedAt = &now
	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *onlusService) ListOwnApplications(ctx context.Context, applicantID primitive.ObjectID) ([]models.OnlusApplication, error) {
	apps, err := s.appRepo.ListByApplicant(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	for i := range apps {
		s.populateDocumentURLs(apps[i].Documents)
	}
	return apps, nil
}

func (s *onlusService) ListPendingApplications(ctx context.Context, limit, offset int64) ([]models.OnlusApplication, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.appRepo.ListByStatus(ctx, models.ApplicationUnderReview, limit, offset)
}

func (s *onlusService) ApproveApplication(ctx context.Context, reviewerID, applicationID primitive.ObjectID) (*models.OnlusOrganization, error) {
	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationUnderReview {
		return nil, ErrApplicationNotUnderReview
	}

	now := time.Now().UTC()
	app.Status = models.ApplicationApproved
	app.ReviewedBy = &reviewerID
	app.ReviewedAt = &now
	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}

	org := &models.OnlusOrganization{
		ApplicationID: app.ID,
		Name:          app.Name,
		TaxCode:       app.TaxCode,
		Description:   app.Description,
		Website:       app.Website,
		Verified:      true,
		Active:        true,
		Compliance:    models.ComplianceCompliant,
		Documents:     app.Documents,
	}
	if err := s.onlusRepo.Create(ctx, org); err != nil {
		if errors.Is(err, repositories.ErrOnlusTaxCodeConflict) {
			return nil, fmt.Errorf("%w: organization with tax code %s already exists", ErrValidationFailed, app.TaxCode)
		}
		return nil, err
	}
	return org, nil
}

func (s *onlusService) RejectApplication(ctx context.Context, reviewerID, applicationID primitive.ObjectID, reason string) (*models.OnlusApplication, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", ErrValidationFailed)
	}
	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationUnderReview {
		return nil, ErrApplicationNotUnderReview
	}

	now := time.Now().UTC()
	app.Status = models.ApplicationRejected
	app.RejectionReason = &reason
	app.ReviewedBy = &reviewerID
	app.ReviewedAt = &now
	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *onlusService) GetOrganization(ctx context.Context, id primitive.ObjectID) (*models.OnlusOrganization, error) {
	org, err := s.onlusRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrOnlusNotFound) {
			return nil, ErrOnlusNotFound
		}
		return nil, err
	}
	s.populateDocumentURLs(org.Documents)
	return org, nil
}

func (s *onlusService) ListOrganizations(ctx context.Context, onlyActive bool, limit, offset int64) ([]models.OnlusOrganization, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.onlusRepo.List(ctx, onlyActive, limit, offset)
}

func (s *onlusService) getApplication(ctx context.Context, id primitive.ObjectID) (*models.OnlusApplication, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

func (s *onlusService) getOwnedApplication(ctx context.Context, applicantID, id primitive.ObjectID) (*models.OnlusApplication, error) {
	app, err := s.getApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != applicantID {
		return nil, ErrForbiddenOperation
	}
	return app, nil
}

func (s *onlusService) populateDocumentURLs(docs []models.ComplianceDocument) {
	if s.uploader == nil {
		return
	}
	for i := range docs {
		if docs[i].Key != "" {
			docs[i].URL = s.uploader.PublicURL(docs[i].Key)
		}
	}
}
