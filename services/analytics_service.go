package services

import (
	"context"
	"errors"
	"time"

	"github.com/goodplay/goodplay-backend/models"
	"github.com/goodplay/goodplay-backend/repositories"
	"golang.org/x/sync/errgroup"
)

// FinancialReport bundles the admin dashboard aggregates for one period.
type FinancialReport struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	Totals         *repositories.DonationTotals     `json:"totals"`
	OnlusBreakdown []repositories.OnlusBreakdownRow `json:"onlus_breakdown"`
	DailyVolume    []repositories.DailyVolumeRow    `json:"daily_volume"`
	TopOnlus       []models.OnlusOrganization       `json:"top_onlus"`
}

type AnalyticsService interface {
	// FinancialReport aggregates donation volume over [from, to). The three
	// aggregations run concurrently.
	FinancialReport(ctx context.Context, from, to time.Time) (*FinancialReport, error)
}

type analyticsService struct {
	donationRepo repositories.DonationRepository
	onlusRepo    repositories.OnlusRepository
}

func NewAnalyticsService(donationRepo repositories.DonationRepository, onlusRepo repositories.OnlusRepository) AnalyticsService {
	return &analyticsService{
		donationRepo: donationRepo,
		onlusRepo:    onlusRepo,
	}
}

func (s *analyticsService) FinancialReport(ctx context.Context, from, to time.Time) (*FinancialReport, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}
	if !from.Before(to) {
		return nil, errors.New("report range must start before it ends")
	}

	report := &FinancialReport{From: from, To: to}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		totals, err := s.donationRepo.Totals(gctx, from, to)
		if err != nil {
			return err
		}
		report.Totals = totals
		return nil
	})
	g.Go(func() error {
		breakdown, err := s.donationRepo.OnlusBreakdown(gctx, from, to)
		if err != nil {
			return err
		}
		report.OnlusBreakdown = breakdown
		return nil
	})
	g.Go(func() error {
		volume, err := s.donationRepo.DailyVolume(gctx, from, to)
		if err != nil {
			return err
		}
		report.DailyVolume = volume
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Resolve the top organizations by lifetime received for context.
	orgs, err := s.onlusRepo.List(ctx, true, 5, 0)
	if err != nil {
		return nil, err
	}
	report.TopOnlus = orgs

	return report, nil
}
