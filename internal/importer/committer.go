package importer

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"rentdesk_backend/internal/repository"
)

// RowError is a per-row failure. It fails the row, and the whole batch
// unless errors are skipped.
type RowError struct {
	Row     int
	Message string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Message)
}

// RowFailed builds a RowError for rec.
func RowFailed(rec Record, format string, args ...interface{}) *RowError {
	return &RowError{Row: rec.Row, Message: fmt.Sprintf(format, args...)}
}

// Result is the outcome of one committed or rolled back batch.
type Result struct {
	Imported  int      `json:"imported"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
	Total     int      `json:"-"`
	Committed bool     `json:"-"`
}

var errAborted = errors.New("import aborted")

// ApplyFunc writes one record through tx, returning a *RowError when the
// record itself is at fault.
type ApplyFunc func(ctx context.Context, tx repository.Store, rec Record) error

// Commit runs apply over records inside one transaction. With skipErrors off
// the first row failure rolls everything back and Imported is reported as 0.
// Any error that is not a *RowError rolls back and is returned.
func Commit(ctx context.Context, store repository.Store, records []Record, skipErrors bool, apply ApplyFunc) (Result, error) {
	res := Result{Errors: []string{}, Total: len(records)}

	err := store.WithinTx(ctx, func(tx repository.Store) error {
		for _, rec := range records {
			err := apply(ctx, tx, rec)
			if err == nil {
				res.Imported++
				continue
			}

			var rowErr *RowError
			if !errors.As(err, &rowErr) {
				return err
			}
			res.Failed++
			res.Errors = append(res.Errors, rowErr.Error())
			if !skipErrors {
				return errAborted
			}
		}
		return nil
	})

	switch {
	case errors.Is(err, errAborted):
		res.Imported = 0
		return res, nil
	case err != nil:
		return Result{Errors: []string{}, Total: len(records)}, err
	}

	res.Committed = true
	return res, nil
}
