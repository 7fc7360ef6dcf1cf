package service

import (
	"bytes"
	"context"
	"encoding/json"
	"mime"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"rentdesk_backend/internal/importer"
	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/repository"
	"rentdesk_backend/pkg/logger"
	"rentdesk_backend/pkg/metrics"
	"rentdesk_backend/pkg/utils/cloudflare"
)

// ImportAudit records the terminal state of every import batch. Failures
// here are logged and never change the import response.
type ImportAudit struct {
	store    repository.Store
	archive  ObjectStorage
	notifier Notifier
	now      func() time.Time
}

// NewImportAudit archive and notifier may be nil.
func NewImportAudit(store repository.Store, archive ObjectStorage, notifier Notifier) *ImportAudit {
	return &ImportAudit{store: store, archive: archive, notifier: notifier, now: time.Now}
}

// Upload is the raw payload of an import, archived when storage is on.
type Upload struct {
	Data []byte
	Ext  string
}

func (a *ImportAudit) Record(ctx context.Context, entity importer.Entity, user *model.User, upload Upload, skipErrors bool, res importer.Result) *model.ImportBatch {
	log := logger.FromContext(ctx).With(zap.String("entity", string(entity)), zap.Uint("user_id", user.ID))

	outcome := model.ImportCommitted
	if !res.Committed {
		outcome = model.ImportRolledBack
	}

	batch := &model.ImportBatch{
		Entity:     string(entity),
		UserID:     user.ID,
		TotalRows:  res.Total,
		Imported:   res.Imported,
		Failed:     res.Failed,
		SkipErrors: skipErrors,
		Outcome:    outcome,
	}
	if errs, err := json.Marshal(res.Errors); err == nil {
		batch.Errors = datatypes.JSON(errs)
	}

	if a.archive != nil && len(upload.Data) > 0 {
		ext := upload.Ext
		if ext == "" {
			ext = ".csv"
		}
		key := cloudflare.ImportArchiveKey(string(entity), ext, a.now())
		contentType := mime.TypeByExtension(ext)
		if contentType == "" {
			contentType = "text/csv"
		}
		if _, err := a.archive.Upload(ctx, key, bytes.NewReader(upload.Data), contentType); err != nil {
			log.Warn("import archive upload failed", zap.Error(err))
		} else {
			batch.ArchiveKey = key
		}
	}

	if err := a.store.CreateImportBatch(ctx, batch); err != nil {
		log.Error("import batch audit failed", zap.Error(err))
	}

	metrics.RecordImport(string(entity), res.Imported, res.Failed, res.Committed)

	log.Info("import finished",
		zap.String("outcome", string(outcome)),
		zap.Int("total_rows", res.Total),
		zap.Int("imported", res.Imported),
		zap.Int("failed", res.Failed),
		zap.Bool("skip_errors", skipErrors),
	)

	if a.notifier != nil {
		a.notifier.ImportFinished(ctx, user, batch)
	}
	return batch
}

// History lists recent batches; managers only see their own.
func (a *ImportAudit) History(ctx context.Context, user *model.User, limit int) ([]model.ImportBatch, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return a.store.ListImportBatches(ctx, managerScope(user), limit)
}
