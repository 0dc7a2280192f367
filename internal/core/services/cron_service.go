package services

import (
	"context"
	"time"

	"claims-dashboard/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultPurgeSchedule runs the refresh token purge at 03:00 every day
const DefaultPurgeSchedule = "0 3 * * *"

// revokedRetention keeps revoked tokens around long enough to detect replays
const revokedRetention = 24 * time.Hour

// CronService runs background housekeeping jobs
type CronService struct {
	cron        *cron.Cron
	refreshRepo repositories.RefreshTokenRepository
	schedule    string
	log         *zap.Logger
}

// NewCronService creates a new cron service
func NewCronService(refreshRepo repositories.RefreshTokenRepository, schedule string, log *zap.Logger) *CronService {
	if schedule == "" {
		schedule = DefaultPurgeSchedule
	}
	return &CronService{
		cron:        cron.New(),
		refreshRepo: refreshRepo,
		schedule:    schedule,
		log:         log,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.PurgeTokens(context.Background()); err != nil {
			s.log.Error("refresh token purge failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("cron started", zap.String("purgeSchedule", s.schedule))
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("cron stopped")
}

// PurgeTokens deletes expired refresh tokens and stale revoked ones
func (s *CronService) PurgeTokens(ctx context.Context) (int64, error) {
	n, err := s.refreshRepo.DeleteStale(ctx, time.Now().Add(-revokedRetention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("refresh tokens purged", zap.Int64("count", n))
	}
	return n, nil
}
