package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/koustreak/dbadmin/internal/errs"
)

// mapError translates pgx native errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errs.Wrap(classifySQLState(pgErr.Code), fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	// No server response at all: dial, TLS, or protocol failure.
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classifySQLState maps PostgreSQL SQLSTATE codes to error kinds.
// Reference: https://www.postgresql.org/docs/current/errcodes-appendix.html
func classifySQLState(code string) errs.ErrKind {
	switch code {
	case "42P04": // duplicate_database
		return errs.ErrKindAlreadyExists
	case "3D000": // invalid_catalog_name
		return errs.ErrKindNotFound
	}

	switch {
	case strings.HasPrefix(code, "08"): // connection exception
		return errs.ErrKindConnectionFailed
	case strings.HasPrefix(code, "28"): // invalid authorization
		return errs.ErrKindPermissionDenied
	case strings.HasPrefix(code, "57"): // operator intervention
		return errs.ErrKindConnectionFailed
	}
	return errs.ErrKindQueryFailed
}
