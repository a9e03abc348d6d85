package scheduler

import (
	"context"
	"fmt"

	"DebtVsDCA/internal/collector"
	"DebtVsDCA/internal/session"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Purger is implemented by caches that need expired rows removed.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// Scheduler manages the cron tasks that keep session estimates fresh.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Sessions  *session.Store
	Cache     Purger // optional
	Log       *zap.SugaredLogger
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. Cron specs include a seconds field.
func NewScheduler(ctx context.Context, col *collector.Collector, sessions *session.Store, log *zap.SugaredLogger) *Scheduler {
	if log == nil {
		log = zap.S()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Sessions:  sessions,
		Log:       log,
		Ctx:       ctx,
	}
}

// Register adds the refresh task and, when a Purger is set, the cache purge.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.RefreshNow); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if s.Cache != nil {
		if _, err := s.Cron.AddFunc("0 0 * * * *", s.purgeCache); err != nil {
			return fmt.Errorf("register cache purge: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RefreshNow recomputes return stats for every session with an asset.
// Failures are logged and the session is skipped.
func (s *Scheduler) RefreshNow() {
	sessions := s.Sessions.List()
	refreshed := 0
	for _, sess := range sessions {
		if s.Ctx.Err() != nil {
			return
		}
		if !sess.HasAsset() {
			continue
		}
		stats := s.Collector.Estimate(s.Ctx, sess.Asset.ID, sess.Period)
		if _, err := s.Sessions.SetStatsFor(sess.ID, sess.Asset.ID, sess.Period, stats); err != nil {
			s.Log.Warnw("refresh: skipping session", "session", sess.ID, "error", err)
			continue
		}
		refreshed++
	}
	s.Log.Infow("refreshed session estimates", "sessions", len(sessions), "refreshed", refreshed)
}

func (s *Scheduler) purgeCache() {
	n, err := s.Cache.Purge(s.Ctx)
	if err != nil {
		s.Log.Errorw("purge price cache", "error", err)
		return
	}
	s.Log.Infow("purged expired cache entries", "removed", n)
}
