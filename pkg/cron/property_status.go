package cron

import (
	"context"

	"go.uber.org/zap"

	"rentdesk_backend/internal/repository"
	"rentdesk_backend/internal/service"
	"rentdesk_backend/pkg/logger"
)

const syncPageSize = 100

// SyncPropertyStatuses her mülkün durumunu birimlerinden yeniden hesaplar
func SyncPropertyStatuses(store repository.Store) int {
	ctx := context.Background()
	log := logger.Get().With(zap.String("job", "property-status-sync"))

	changed := 0
	for page := 1; ; page++ {
		properties, total, err := store.ListProperties(ctx, repository.PropertyFilter{Page: page, PerPage: syncPageSize})
		if err != nil {
			log.Error("Error listing properties", zap.Error(err))
			return changed
		}
		for _, p := range properties {
			updated, err := service.SyncPropertyStatus(ctx, store, p.ID)
			if err != nil {
				log.Error("Error syncing property status", zap.Uint("property_id", p.ID), zap.Error(err))
				continue
			}
			if updated {
				changed++
			}
		}
		if int64(page*syncPageSize) >= total || len(properties) == 0 {
			break
		}
	}

	log.Info("Property statuses synced", zap.Int("changed", changed))
	return changed
}
