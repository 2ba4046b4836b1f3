package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/koustreak/dbadmin/internal/errs"
)

// mapError translates go-sql-driver native errors into *errs.Error.
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

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return errs.Wrap(classifyMySQLCode(mysqlErr.Number), fmt.Sprintf("%s: %s", msg, mysqlErr.Message), err)
	}

	// No server error number: dial, handshake, or protocol failure.
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classifyMySQLCode maps MySQL server error numbers to error kinds.
// Reference: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
func classifyMySQLCode(code uint16) errs.ErrKind {
	switch code {
	case 1007: // ER_DB_CREATE_EXISTS
		return errs.ErrKindAlreadyExists
	case 1008, 1049: // ER_DB_DROP_EXISTS, ER_BAD_DB_ERROR
		return errs.ErrKindNotFound
	case 1146: // ER_NO_SUCH_TABLE
		return errs.ErrKindNotFound
	case 1044, 1045, 1142: // access / privilege denied
		return errs.ErrKindPermissionDenied
	case 1040, 1203: // connection limits reached
		return errs.ErrKindConnectionFailed
	}
	return errs.ErrKindQueryFailed
}
