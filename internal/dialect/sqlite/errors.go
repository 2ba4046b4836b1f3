package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/koustreak/dbadmin/internal/errs"
)

// mapError translates driver errors into *errs.Error. The modernc driver
// reports engine errors as plain strings, so beyond the context and no-rows
// sentinels everything is a query failure.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}
