package mssql

import (
	"context"
	"database/sql"
	"errors"

	mssqldriver "github.com/microsoft/go-mssqldb"

	"github.com/koustreak/dbadmin/internal/errs"
)

// mapError converts driver errors into classified admin errors. SQL Server
// reports everything through numeric error codes, so the interesting cases
// are matched on Error.Number.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}
	var sqlErr mssqldriver.Error
	if errors.As(err, &sqlErr) {
		return errs.Wrap(classifyNumber(sqlErr.Number), msg, err)
	}
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classifyNumber maps SQL Server error numbers onto error kinds.
func classifyNumber(number int32) errs.ErrKind {
	switch number {
	case 1801: // database already exists
		return errs.ErrKindAlreadyExists
	case 911, 3701, 4060: // database or object does not exist, cannot open database
		return errs.ErrKindNotFound
	case 18456, 229: // login failed, permission denied
		return errs.ErrKindPermissionDenied
	default:
		return errs.ErrKindQueryFailed
	}
}
