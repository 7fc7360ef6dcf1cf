package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"rentdesk_backend/internal/model"
	"rentdesk_backend/pkg/email"
	"rentdesk_backend/pkg/logger"
	"rentdesk_backend/pkg/sms"
)

// ImportNotifier emails an import summary to the importing user and texts
// them when a batch is rolled back. Either channel may be nil.
type ImportNotifier struct {
	Email *email.EmailService
	SMS   *sms.Client
}

func (n *ImportNotifier) ImportFinished(ctx context.Context, user *model.User, batch *model.ImportBatch) {
	log := logger.FromContext(ctx)

	if n.Email != nil && user.Email != "" {
		data := email.ImportSummaryData{
			Name:       user.Name,
			Entity:     batch.Entity,
			Outcome:    string(batch.Outcome),
			TotalRows:  batch.TotalRows,
			Imported:   batch.Imported,
			Failed:     batch.Failed,
			Errors:     batchErrors(batch),
			FinishedAt: batch.CreatedAt,
		}
		if err := n.Email.SendImportSummaryEmail(user.Name, user.Email, data); err != nil {
			log.Warn("import summary email failed", zap.Error(err), zap.String("to", user.Email))
		}
	}

	if n.SMS != nil && batch.Outcome == model.ImportRolledBack && user.Phone != "" {
		body := fmt.Sprintf("RentDesk: your %s import was rolled back (%d failed row(s)). Nothing was saved.",
			batch.Entity, batch.Failed)
		if err := n.SMS.Send(user.Phone, body); err != nil {
			log.Warn("import rollback sms failed", zap.Error(err))
		}
	}
}

const maxMailedErrors = 20

func batchErrors(batch *model.ImportBatch) []string {
	var errs []string
	if len(batch.Errors) > 0 {
		_ = json.Unmarshal(batch.Errors, &errs)
	}
	if len(errs) > maxMailedErrors {
		errs = append(errs[:maxMailedErrors], fmt.Sprintf("... and %d more", len(errs)-maxMailedErrors))
	}
	return errs
}
