// Package service holds the business rules behind the HTTP handlers: access
// checks, duplicate and capacity guards, and the CSV import workflows.
package service

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"

	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/refdata"
	"rentdesk_backend/internal/repository"
	"rentdesk_backend/pkg/utils/apperror"
)

// ObjectStorage stores uploaded files and returns their public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Notifier is told about every finished import batch.
type Notifier interface {
	ImportFinished(ctx context.Context, user *model.User, batch *model.ImportBatch)
}

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}

// canonical spells an enum value the way the domain lists it. Validation has
// already rejected values outside the domain.
func canonical(domain, value string) string {
	if v, ok := refdata.Canonical(domain, value); ok {
		return v
	}
	return strings.TrimSpace(value)
}

func checkAccess(user *model.User, p *model.Property) error {
	if !user.CanManage(p) {
		return apperror.Forbidden("Access denied")
	}
	return nil
}

// managerScope limits listings to the caller's properties unless they are admin.
func managerScope(user *model.User) *uint {
	if user.IsAdmin() {
		return nil
	}
	id := user.ID
	return &id
}

// SyncPropertyStatus sets the property to occupied when any of its units is
// occupied and to vacant otherwise.
func SyncPropertyStatus(ctx context.Context, store repository.Store, propertyID uint) (bool, error) {
	p, err := store.GetProperty(ctx, propertyID)
	if err != nil {
		return false, err
	}
	units, err := store.ListRentalUnits(ctx, repository.UnitFilter{PropertyID: &propertyID})
	if err != nil {
		return false, err
	}

	status := model.StatusFromUnits(units)
	if p.Status == status {
		return false, nil
	}
	p.Status = status
	return true, store.SaveProperty(ctx, p)
}
