// Package mysql implements the admin operations for MySQL and MariaDB
// through the go-sql-driver.
//
// CREATE DATABASE and DROP DATABASE run over a schemaless connection, so
// they work whether or not the target database exists yet.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql" // registers the "mysql" driver

	"github.com/koustreak/dbadmin/dburl"
	"github.com/koustreak/dbadmin/internal/dialect"
	"github.com/koustreak/dbadmin/internal/errs"
)

// Admin executes administrative statements against MySQL-family servers.
// The zero value is ready to use; every operation opens and closes its own
// connection.
type Admin struct{}

var _ dialect.Admin = (*Admin)(nil)

// New creates a MySQL admin.
func New() *Admin {
	return &Admin{}
}

// --- Connection handling ---

func open(ctx context.Context, u *dburl.URL) (*sql.DB, error) {
	dsn, err := u.DSN()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid mysql DSN", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, mapError(err, "connect to "+u.Redacted())
	}
	return db, nil
}

// --- Operations ---

// DatabaseExists reports whether the schema named by u exists. The check
// runs over a schemaless connection against INFORMATION_SCHEMA, so it
// works for databases that are not there yet.
func (a *Admin) DatabaseExists(ctx context.Context, u *dburl.URL) (bool, error) {
	const q = `
		SELECT SCHEMA_NAME
		FROM   INFORMATION_SCHEMA.SCHEMATA
		WHERE  SCHEMA_NAME = ?`

	if u.Database == "" {
		return false, errs.New(errs.ErrKindInvalidInput, "connection URL names no database")
	}

	db, err := open(ctx, u.WithDatabase(""))
	if err != nil {
		return false, err
	}
	defer db.Close()

	var name string
	err = db.QueryRowContext(ctx, q, u.Database).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapError(err, "check database "+u.Database)
	}
	return true, nil
}

// CreateDatabase creates the schema named by u.
func (a *Admin) CreateDatabase(ctx context.Context, u *dburl.URL, opts dialect.CreateOptions) error {
	if u.Database == "" {
		return errs.New(errs.ErrKindInvalidInput, "connection URL names no database to create")
	}

	db, err := open(ctx, u.WithDatabase(""))
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, createStatement(u.Database, opts)); err != nil {
		return mapError(err, "create database "+u.Database)
	}
	return nil
}

func createStatement(name string, opts dialect.CreateOptions) string {
	encoding := opts.Encoding
	if encoding == "" {
		encoding = "utf8"
	}
	return fmt.Sprintf("CREATE DATABASE %s CHARACTER SET = %s",
		quoteIdent(name), quoteLiteral(encoding))
}

// DropDatabase destroys the schema named by u.
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
		return mapError(err, "drop database "+u.Database)
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

// quoteIdent backtick-quotes a MySQL identifier, doubling embedded backticks.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// quoteLiteral single-quotes a SQL string literal, doubling embedded quotes.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
