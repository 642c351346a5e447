package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/goodplay/goodplay-backend/models"
	"github.com/goodplay/goodplay-backend/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compliance scoring weights. A score below needsReviewThreshold flags the
// organization; below suspendThreshold it is suspended and stops receiving
// donations.
const (
	complianceMaxScore     = 100
	needsReviewThreshold   = 60
	suspendThreshold       = 30
	documentPoints         = 15
	maxDocumentPoints      = 45
	establishedAgePoints   = 25
	establishedAfter       = 90 * 24 * time.Hour
	anomalyPenalty         = 40
	anomalyAverageDonation = 10_000
)

// ComplianceReport is the result of scoring one organization.
type ComplianceReport struct {
	OnlusID primitive.ObjectID      `json:"onlus_id"`
	Score   int                     `json:"score"`
	Status  models.ComplianceStatus `json:"status"`
	Notes   []string                `json:"notes"`
}

type ComplianceService interface {
	// Review scores a single organization and persists the outcome.
	Review(ctx context.Context, onlusID primitive.ObjectID) (*ComplianceReport, error)
	// ReviewAll scores every organization; failures on individual
	// organizations are logged and skipped.
	ReviewAll(ctx context.Context) ([]ComplianceReport, error)
}

type complianceService struct {
	onlusRepo repositories.OnlusRepository
	logger    *slog.Logger
}

func NewComplianceService(onlusRepo repositories.OnlusRepository, logger *slog.Logger) ComplianceService {
	return &complianceService{
		onlusRepo: onlusRepo,
		logger:    logger,
	}
}

func (s *complianceService) Review(ctx context.Context, onlusID primitive.ObjectID) (*ComplianceReport, error) {
	org, err := s.onlusRepo.GetByID(ctx, onlusID)
	if err != nil {
		if errors.Is(err, repositories.ErrOnlusNotFound) {
			return nil, ErrOnlusNotFound
		}
		return nil, err
	}

	report := ScoreOrganization(org, time.Now().UTC())
	if err := s.onlusRepo.SetCompliance(ctx, onlusID, report.Status, report.Score); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *complianceService) ReviewAll(ctx context.Context) ([]ComplianceReport, error) {
	orgs, err := s.onlusRepo.List(ctx, false, 1000, 0)
	if err != nil {
		return nil, err
	}

	reports := make([]ComplianceReport, 0, len(orgs))
	for i := range orgs {
		report := ScoreOrganization(&orgs[i], time.Now().UTC())
		if err := s.onlusRepo.SetCompliance(ctx, orgs[i].ID, report.Status, report.Score); err != nil {
			s.logger.Error("failed to persist compliance review",
				slog.String("onlus_id", orgs[i].ID.Hex()),
				slog.Any("error", err))
			continue
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

// ScoreOrganization computes the compliance score for org at now. Pure so
// the thresholds are testable without a repository.
func ScoreOrganization(org *models.OnlusOrganization, now time.Time) *ComplianceReport {
	report := &ComplianceReport{OnlusID: org.ID, Notes: []string{}}
	score := 0

	docPoints := len(org.Documents) * documentPoints
	if docPoints > maxDocumentPoints {
		docPoints = maxDocumentPoints
	}
	if docPoints == 0 {
		report.Notes = append(report.Notes, "no compliance documents on file")
	}
	score += docPoints

	if now.Sub(org.CreatedAt) >= establishedAfter {
		score += establishedAgePoints
	} else {
		report.Notes = append(report.Notes, "organization registered recently")
	}

	// Remaining points track verified standing.
	if org.Verified {
		score += complianceMaxScore - maxDocumentPoints - establishedAgePoints
	}

	// Unusually large average donations are an anomaly signal.
	if org.DonationsCount > 0 {
		average := org.TotalReceived / org.DonationsCount
		if average > anomalyAverageDonation {
			score -= anomalyPenalty
			report.Notes = append(report.Notes, "average donation volume is anomalous")
		}
	}

	if score < 0 {
		score = 0
	}
	if score > complianceMaxScore {
		score = complianceMaxScore
	}

	report.Score = score
	switch {
	case score < suspendThreshold:
		report.Status = models.ComplianceSuspended
	case score < needsReviewThreshold:
		report.Status = models.ComplianceNeedsReview
	default:
		report.Status = models.ComplianceCompliant
	}
	return report
}
