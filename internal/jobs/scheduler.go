// Package jobs runs the background maintenance tasks (cron).
// scheduler.go wires the daily karma-history purge.
package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/YTstyo/Dis-karm/internal/features/karma"
)

// Scheduler manages background tasks.
type Scheduler struct {
	cron         *cron.Cron
	karmaService *karma.Service
}

// NewScheduler creates the task scheduler.
func NewScheduler(karmaService *karma.Service) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		karmaService: karmaService,
	}
}

// Start registers and starts the background tasks. The purge runs every 24
// hours; a failing run is logged and retried on the next interval, it is
// never fatal. The purge touches only the history table, so it cannot starve
// concurrent ledger writes.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.AddFunc("@every 24h", func() {
		deleted, err := s.karmaService.PurgeOldEvents(ctx)
		if err != nil {
			log.WithError(err).Error("[CRON] History purge failed, will retry next interval")
			return
		}
		log.WithField("deleted", deleted).Info("[CRON] Performed daily history cleanup")
	})

	s.cron.Start()
	log.Info("Task scheduler started")
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Task scheduler stopped")
}
