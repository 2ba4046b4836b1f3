// Package generic serves connection URLs whose scheme has no native
// dialect. It drives whatever database/sql driver the embedding program
// registered under the URL's driver name, using portable ANSI SQL only.
// Schema introspection needs catalog queries that are not portable, so it
// is reported as unsupported here.
package generic

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/koustreak/dbadmin/dburl"
	"github.com/koustreak/dbadmin/internal/dialect"
	"github.com/koustreak/dbadmin/internal/errs"
	"github.com/koustreak/dbadmin/schema"
)

// Admin executes administrative statements through a caller-registered
// database/sql driver. The zero value is ready to use; every operation
// opens and closes its own connection.
type Admin struct{}

var _ dialect.Admin = (*Admin)(nil)

// New creates a generic admin.
func New() *Admin {
	return &Admin{}
}

// --- Connection handling ---

func open(ctx context.Context, u *dburl.URL) (*sql.DB, error) {
	dsn, err := u.DSN()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(u.Driver, dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnsupported,
			fmt.Sprintf("no database/sql driver registered as %q", u.Driver), err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, wrapErr(errs.ErrKindConnectionFailed, "connect to "+u.Redacted(), err)
	}
	return db, nil
}

// --- Operations ---

// DatabaseExists reports whether the database named by u exists by
// connecting straight to it and running a trivial probe. Any connection
// or query failure reads as absent.
func (a *Admin) DatabaseExists(ctx context.Context, u *dburl.URL) (bool, error) {
	if u.Database == "" {
		return false, errs.New(errs.ErrKindInvalidInput, "connection URL names no database")
	}

	db, err := open(ctx, u)
	if err != nil {
		if errs.IsUnsupported(err) {
			return false, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, errs.Wrap(errs.ErrKindTimeout, "existence check aborted", ctxErr)
		}
		return false, nil
	}
	defer db.Close()

	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return false, nil
	}
	return true, nil
}

// CreateDatabase creates the database named by u with plain ANSI syntax.
// Encoding and template options have no portable rendering and are ignored.
func (a *Admin) CreateDatabase(ctx context.Context, u *dburl.URL, _ dialect.CreateOptions) error {
	if u.Database == "" {
		return errs.New(errs.ErrKindInvalidInput, "connection URL names no database to create")
	}

	db, err := open(ctx, u.WithDatabase(""))
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+quoteIdent(u.Database)); err != nil {
		return wrapErr(errs.ErrKindQueryFailed, "create database "+u.Database, err)
	}
	return nil
}

// DropDatabase destroys the database named by u.
func (a *Admin) DropDatabase(ctx context.Context, u *dburl.URL, _ dialect.DropOptions) error {
	if u.Database == "" {
		return errs.New(errs.ErrKindInvalidInput, "connection URL names no database to drop")
	}

	db, err := open(ctx, u.WithDatabase(""))
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "DROP DATABASE "+quoteIdent(u.Database)); err != nil {
		return wrapErr(errs.ErrKindQueryFailed, "drop database "+u.Database, err)
	}
	return nil
}

// Ping verifies the database named by u answers on a fresh connection.
func (a *Admin) Ping(ctx context.Context, u *dburl.URL) error {
	db, err := open(ctx, u)
	if err != nil {
		return err
	}
	return db.Close()
}

// --- Introspection ---

// ListTables is not available without dialect-specific catalog queries.
func (a *Admin) ListTables(_ context.Context, u *dburl.URL) ([]string, error) {
	return nil, errs.New(errs.ErrKindUnsupported,
		fmt.Sprintf("schema introspection is not supported for dialect %q", u.Dialect))
}

// InspectTable is not available without dialect-specific catalog queries.
func (a *Admin) InspectTable(_ context.Context, u *dburl.URL, _ string) (*schema.Table, error) {
	return nil, errs.New(errs.ErrKindUnsupported,
		fmt.Sprintf("schema introspection is not supported for dialect %q", u.Dialect))
}

// --- Helpers ---

func wrapErr(kind errs.ErrKind, msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	return errs.Wrap(kind, msg, err)
}

// quoteIdent double-quotes an ANSI SQL identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
