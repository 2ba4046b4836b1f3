// Package mssql implements the admin operations for Microsoft SQL Server
// through the go-mssqldb driver.
//
// CREATE DATABASE and DROP DATABASE run against the master database. A
// drop first logs everything still touching the target (transactions,
// locks, blocking chains, recent statements), then rolls other sessions
// back by forcing single-user mode, since SQL Server refuses to drop a
// database anyone else has open.
package mssql

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/microsoft/go-mssqldb" // registers the "sqlserver" driver

	"github.com/koustreak/dbadmin/dburl"
	"github.com/koustreak/dbadmin/internal/dialect"
	"github.com/koustreak/dbadmin/internal/errs"
	"github.com/koustreak/dbadmin/internal/logger"
)

// Admin executes administrative statements against SQL Server. The zero
// value is ready to use; every operation opens and closes its own
// connection.
type Admin struct{}

var _ dialect.Admin = (*Admin)(nil)

// New creates a SQL Server admin.
func New() *Admin {
	return &Admin{}
}

// --- Connection handling ---

func open(ctx context.Context, u *dburl.URL) (*sql.DB, error) {
	dsn, err := u.DSN()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid sqlserver DSN", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, mapError(err, "connect to "+u.Redacted())
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

// CreateDatabase creates the database named by u.
func (a *Admin) CreateDatabase(ctx context.Context, u *dburl.URL, _ dialect.CreateOptions) error {
	if u.Database == "" {
		return errs.New(errs.ErrKindInvalidInput, "connection URL names no database to create")
	}

	db, err := open(ctx, u.WithDatabase("master"))
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+quoteIdent(u.Database)); err != nil {
		return mapError(err, "create database "+u.Database)
	}
	return nil
}

// DropDatabase destroys the database named by u. With Diagnostics set, the
// sessions still holding it open are logged first; with ForceDisconnect
// set, they are rolled back by switching the database to single-user mode.
func (a *Admin) DropDatabase(ctx context.Context, u *dburl.URL, opts dialect.DropOptions) error {
	if u.Database == "" {
		return errs.New(errs.ErrKindInvalidInput, "connection URL names no database to drop")
	}

	db, err := open(ctx, u.WithDatabase("master"))
	if err != nil {
		return err
	}
	defer db.Close()

	log := logger.FromContext(ctx).With().Str("database", u.Database).Logger()

	if opts.Diagnostics {
		logDiagnostics(ctx, db, u.Database, log)
	}

	if opts.ForceDisconnect {
		stmt := "ALTER DATABASE " + quoteIdent(u.Database) + " SET SINGLE_USER WITH ROLLBACK IMMEDIATE"
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			mapped := mapError(err, "force single-user mode on "+u.Database)
			log.ErrorWith("single-user rollback failed", mapped, nil)
			return mapped
		}
	}

	if _, err := db.ExecContext(ctx, "DROP DATABASE "+quoteIdent(u.Database)); err != nil {
		mapped := mapError(err, "drop database "+u.Database)
		log.ErrorWith("drop database failed", mapped, nil)
		return mapped
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

// --- Quoting ---

// quoteIdent bracket-quotes a T-SQL identifier, doubling embedded closing
// brackets.
func quoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
