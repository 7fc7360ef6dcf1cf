package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk_backend/internal/importer"
	"rentdesk_backend/internal/model"
)

type fakeArchive struct {
	keys         []string
	contentTypes []string
	body         string
	err          error
}

func (a *fakeArchive) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	raw, _ := io.ReadAll(body)
	a.keys = append(a.keys, key)
	a.contentTypes = append(a.contentTypes, contentType)
	a.body = string(raw)
	return "https://cdn.example.com/" + key, nil
}

type fakeNotifier struct {
	batches []*model.ImportBatch
}

func (n *fakeNotifier) ImportFinished(ctx context.Context, user *model.User, batch *model.ImportBatch) {
	n.batches = append(n.batches, batch)
}

func TestImportAuditRecord(t *testing.T) {
	f := newFixture(t)
	archive := &fakeArchive{}
	notifier := &fakeNotifier{}
	audit := NewImportAudit(f.store, archive, notifier)
	audit.now = func() time.Time { return time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC) }

	batch := audit.Record(f.ctx, importer.EntityAsset, f.manager, Upload{Data: []byte("name\nSofa\n"), Ext: ".csv"}, true, importer.Result{
		Imported: 1, Failed: 1, Errors: []string{"Row 2: bad"}, Total: 2, Committed: true,
	})

	assert.Equal(t, model.ImportCommitted, batch.Outcome)
	assert.True(t, batch.SkipErrors)
	assert.NotEmpty(t, batch.ArchiveKey)
	assert.JSONEq(t, `["Row 2: bad"]`, string(batch.Errors))
	require.Len(t, archive.keys, 1)
	assert.Equal(t, "name\nSofa\n", archive.body)
	require.Len(t, notifier.batches, 1)

	history, err := audit.History(f.ctx, f.manager, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)

	history, err = audit.History(f.ctx, f.admin, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	others, err := audit.History(f.ctx, &model.User{Role: model.RolePropertyManager}, 10)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestImportAuditArchiveFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	audit := NewImportAudit(f.store, &fakeArchive{err: errors.New("r2 down")}, nil)

	batch := audit.Record(f.ctx, importer.EntityProperty, f.admin, Upload{Data: []byte("x")}, false, importer.Result{Failed: 1, Total: 1})

	assert.Equal(t, model.ImportRolledBack, batch.Outcome)
	assert.Empty(t, batch.ArchiveKey)
	assert.NotZero(t, batch.ID)
}

func TestBatchErrorsTruncated(t *testing.T) {
	errs := make([]string, 25)
	for i := range errs {
		errs[i] = "Row x: bad"
	}
	raw, err := json.Marshal(errs)
	require.NoError(t, err)

	got := batchErrors(&model.ImportBatch{Errors: raw})
	require.Len(t, got, maxMailedErrors+1)
	assert.Equal(t, "... and 5 more", got[maxMailedErrors])
}
