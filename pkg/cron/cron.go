package cron

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"rentdesk_backend/internal/repository"
	"rentdesk_backend/pkg/config"
	"rentdesk_backend/pkg/email"
	"rentdesk_backend/pkg/logger"
)

// Init schedules the background jobs and starts the scheduler. emailService
// may be nil, in which case the occupancy digest is not scheduled.
func Init(cfg config.CronConfig, store repository.Store, emailService *email.EmailService) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc(cfg.StatusSyncSchedule, func() {
		SyncPropertyStatuses(store)
	}); err != nil {
		return nil, err
	}

	if emailService != nil {
		if _, err := c.AddFunc(cfg.OccupancyDigestSchedule, func() {
			SendOccupancyDigests(store, emailService)
		}); err != nil {
			return nil, err
		}
	}

	c.Start()
	logger.Get().Info("Cron jobs scheduled",
		zap.String("status_sync", cfg.StatusSyncSchedule),
		zap.String("occupancy_digest", cfg.OccupancyDigestSchedule),
		zap.Bool("digest_enabled", emailService != nil),
	)
	return c, nil
}
