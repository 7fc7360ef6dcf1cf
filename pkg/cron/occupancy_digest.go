package cron

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/repository"
	"rentdesk_backend/pkg/email"
	"rentdesk_backend/pkg/logger"
)

// DigestSender is the part of the email service the digest needs.
type DigestSender interface {
	SendOccupancyDigestEmail(toName, toEmail string, data email.OccupancyDigestData) error
}

// BuildOccupancyDigest groups unit occupancy by property for one user.
// Admins get every property.
func BuildOccupancyDigest(ctx context.Context, store repository.Store, user model.User, at time.Time) (email.OccupancyDigestData, error) {
	filter := repository.UnitFilter{}
	if !user.IsAdmin() {
		id := user.ID
		filter.ManagerID = &id
	}
	units, err := store.ListRentalUnits(ctx, filter)
	if err != nil {
		return email.OccupancyDigestData{}, err
	}

	byProperty := map[uint]*email.OccupancyLine{}
	for _, u := range units {
		line, ok := byProperty[u.PropertyID]
		if !ok {
			name := ""
			if u.Property != nil {
				name = u.Property.Name
			}
			line = &email.OccupancyLine{PropertyName: name}
			byProperty[u.PropertyID] = line
		}
		line.TotalUnits++
		if u.Status == model.UnitStatusOccupied {
			line.Occupied++
		}
	}

	data := email.OccupancyDigestData{Name: user.Name, Date: at}
	for _, line := range byProperty {
		data.Properties = append(data.Properties, *line)
		data.TotalUnits += line.TotalUnits
		data.OccupiedUnits += line.Occupied
	}
	sort.Slice(data.Properties, func(i, j int) bool {
		return data.Properties[i].PropertyName < data.Properties[j].PropertyName
	})
	return data, nil
}

// SendOccupancyDigests her aktif kullanıcıya haftalık doluluk özetini yollar
func SendOccupancyDigests(store repository.Store, sender DigestSender) int {
	ctx := context.Background()
	log := logger.Get().With(zap.String("job", "occupancy-digest"))

	users, err := store.ListUsers(ctx)
	if err != nil {
		log.Error("Error listing users", zap.Error(err))
		return 0
	}

	sent := 0
	now := time.Now()
	for _, user := range users {
		if !user.IsActive || user.Email == "" {
			continue
		}
		data, err := BuildOccupancyDigest(ctx, store, user, now)
		if err != nil {
			log.Error("Error building occupancy digest", zap.Uint("user_id", user.ID), zap.Error(err))
			continue
		}
		if len(data.Properties) == 0 {
			continue
		}
		if err := sender.SendOccupancyDigestEmail(user.Name, user.Email, data); err != nil {
			log.Error("Error sending occupancy digest", zap.String("email", user.Email), zap.Error(err))
			continue
		}
		sent++
	}

	log.Info("Occupancy digests sent", zap.Int("sent", sent))
	return sent
}
