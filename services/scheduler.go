package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler runs the recurring background jobs: opening and closing mode
// windows, and moving tournaments along their dates.
type Scheduler struct {
	modeSvc       ModeService
	tournamentSvc TournamentService
	interval      time.Duration
	logger        *slog.Logger

	sched gocron.Scheduler
}

func NewScheduler(modeSvc ModeService, tournamentSvc TournamentService, interval time.Duration, logger *slog.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		modeSvc:       modeSvc,
		tournamentSvc: tournamentSvc,
		interval:      interval,
		logger:        logger,
		sched:         sched,
	}, nil
}

func (s *Scheduler) Start() error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.tick),
	)
	if err != nil {
		return err
	}
	s.sched.Start()
	s.logger.Info("scheduler started", slog.Duration("interval", s.interval))
	return nil
}

func (s *Scheduler) Stop() error {
	return s.sched.Shutdown()
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	changed, err := s.modeSvc.SyncScheduledModes(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("mode sync failed", slog.Any("error", err))
	} else if changed > 0 {
		s.logger.Info("mode windows synced", slog.Int("changed", changed))
	}

	if err := s.tournamentSvc.AutoTransitionByDates(ctx); err != nil {
		s.logger.Error("tournament auto-transition failed", slog.Any("error", err))
	}
}
