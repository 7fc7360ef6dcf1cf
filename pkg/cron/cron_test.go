package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/repository"
	"rentdesk_backend/pkg/config"
	"rentdesk_backend/pkg/email"
)

type recordingSender struct {
	sent []email.OccupancyDigestData
	to   []string
	err  error
}

func (r *recordingSender) SendOccupancyDigestEmail(toName, toEmail string, data email.OccupancyDigestData) error {
	if r.err != nil {
		return r.err
	}
	r.to = append(r.to, toEmail)
	r.sent = append(r.sent, data)
	return nil
}

type world struct {
	store   *repository.MemoryStore
	admin   model.User
	manager model.User
	reef    *model.Property
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()

	admin := model.User{Email: "admin@example.com", Name: "Admin", Role: model.RoleAdmin, IsActive: true}
	manager := model.User{Email: "mgr@example.com", Name: "Mgr", Role: model.RolePropertyManager, IsActive: true}
	require.NoError(t, store.CreateUser(ctx, &admin))
	require.NoError(t, store.CreateUser(ctx, &manager))

	property := func(name string, managerID uint) *model.Property {
		p := &model.Property{
			Name: name, Type: "Villa", Street: name, City: "Male", Island: "Male",
			NumberOfFloors: 1, NumberOfRentalUnits: 5, Bedrooms: 3, Bathrooms: 2,
			Status: model.PropertyStatusVacant, AssignedManagerID: &managerID, IsActive: true,
		}
		require.NoError(t, store.CreateProperty(ctx, p))
		return p
	}
	reef := property("Reef", manager.ID)
	lagoon := property("Lagoon", admin.ID)

	tenant := uint(11)
	units := []*model.RentalUnit{
		{PropertyID: reef.ID, UnitNumber: "1", Status: model.UnitStatusOccupied, TenantID: &tenant},
		{PropertyID: reef.ID, UnitNumber: "2", Status: model.UnitStatusAvailable},
		{PropertyID: lagoon.ID, UnitNumber: "1", Status: model.UnitStatusMaintenance},
	}
	for _, u := range units {
		u.RentAmount = decimal.NewFromInt(1000)
		u.Currency = "MVR"
		u.IsActive = true
		require.NoError(t, store.CreateRentalUnit(ctx, u))
	}
	return &world{store: store, admin: admin, manager: manager, reef: reef}
}

func TestBuildOccupancyDigest(t *testing.T) {
	w := newWorld(t)
	at := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

	data, err := BuildOccupancyDigest(context.Background(), w.store, w.admin, at)
	require.NoError(t, err)
	assert.Equal(t, at, data.Date)
	assert.Equal(t, 3, data.TotalUnits)
	assert.Equal(t, 1, data.OccupiedUnits)
	require.Len(t, data.Properties, 2)
	assert.Equal(t, "Lagoon", data.Properties[0].PropertyName)
	assert.Equal(t, email.OccupancyLine{PropertyName: "Reef", TotalUnits: 2, Occupied: 1}, data.Properties[1])

	data, err = BuildOccupancyDigest(context.Background(), w.store, w.manager, at)
	require.NoError(t, err)
	require.Len(t, data.Properties, 1)
	assert.Equal(t, "Reef", data.Properties[0].PropertyName)
}

func TestSendOccupancyDigests(t *testing.T) {
	w := newWorld(t)
	sender := &recordingSender{}

	assert.Equal(t, 2, SendOccupancyDigests(w.store, sender))
	assert.ElementsMatch(t, []string{"admin@example.com", "mgr@example.com"}, sender.to)

	assert.Zero(t, SendOccupancyDigests(w.store, &recordingSender{err: errors.New("sendgrid down")}))
}

func TestSyncPropertyStatuses(t *testing.T) {
	w := newWorld(t)

	assert.Equal(t, 1, SyncPropertyStatuses(w.store))

	reef, err := w.store.GetProperty(context.Background(), w.reef.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PropertyStatusOccupied, reef.Status)

	assert.Zero(t, SyncPropertyStatuses(w.store))
}

func TestInitSchedulesStatusSyncOnly(t *testing.T) {
	store := repository.NewMemoryStore()

	c, err := Init(config.CronConfig{StatusSyncSchedule: "0 2 * * *", OccupancyDigestSchedule: "0 8 * * 1"}, store, nil)
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 1)

	_, err = Init(config.CronConfig{StatusSyncSchedule: "not a schedule"}, store, nil)
	assert.Error(t, err)
}
