package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/repository"
)

func assetRecords(names ...string) []Record {
	recs := make([]Record, len(names))
	for i, n := range names {
		recs[i] = Record{Row: i + 1, Values: map[Field]string{FieldName: n}}
	}
	return recs
}

// createAsset fails rows whose name is "bad".
func createAsset(ctx context.Context, tx repository.Store, rec Record) error {
	if rec.Get(FieldName) == "bad" {
		return RowFailed(rec, "Missing required field '%s'", FieldCategory)
	}
	return tx.CreateAsset(ctx, &model.Asset{Name: rec.Get(FieldName), Category: model.AssetCategoryOther, Status: model.AssetStatusWorking})
}

func countAssets(t *testing.T, store repository.Store) int {
	t.Helper()
	assets, err := store.ListAssets(context.Background(), repository.AssetFilter{})
	require.NoError(t, err)
	return len(assets)
}

func TestCommit_AllRowsSucceed(t *testing.T) {
	store := repository.NewMemoryStore()

	res, err := Commit(context.Background(), store, assetRecords("a", "b"), false, createAsset)

	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 0, res.Failed)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 2, countAssets(t, store))
}

func TestCommit_AbortsOnFirstFailure(t *testing.T) {
	store := repository.NewMemoryStore()

	res, err := Commit(context.Background(), store, assetRecords("a", "bad", "c", "bad"), false, createAsset)

	require.NoError(t, err)
	assert.False(t, res.Committed)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []string{"Row 2: Missing required field 'category'"}, res.Errors)
	assert.Equal(t, 0, countAssets(t, store))
}

func TestCommit_SkipErrorsContinues(t *testing.T) {
	store := repository.NewMemoryStore()

	res, err := Commit(context.Background(), store, assetRecords("a", "bad", "c", "bad"), true, createAsset)

	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, res.Total, res.Imported+res.Failed)
	assert.Len(t, res.Errors, 2)
	assert.Equal(t, 2, countAssets(t, store))
}

func TestCommit_StoreErrorRollsBack(t *testing.T) {
	store := repository.NewMemoryStore()
	boom := errors.New("connection reset")

	res, err := Commit(context.Background(), store, assetRecords("a", "b"), true, func(ctx context.Context, tx repository.Store, rec Record) error {
		if rec.Row == 2 {
			return boom
		}
		return createAsset(ctx, tx, rec)
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 0, countAssets(t, store))
}
