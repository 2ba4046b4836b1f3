// Package postgres implements the admin operations for PostgreSQL and
// CockroachDB over native pgx connections.
//
// CREATE DATABASE and DROP DATABASE cannot run against the database they
// target, so those operations connect to a maintenance database instead:
// postgres for PostgreSQL, defaultdb for CockroachDB.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/koustreak/dbadmin/dburl"
	"github.com/koustreak/dbadmin/internal/dialect"
	"github.com/koustreak/dbadmin/internal/errs"
)

// Admin executes administrative statements against PostgreSQL-family
// servers. The zero value is ready to use; every operation opens and
// closes its own connection.
type Admin struct{}

var _ dialect.Admin = (*Admin)(nil)

// New creates a PostgreSQL admin.
func New() *Admin {
	return &Admin{}
}

// --- Connection handling ---

func connect(ctx context.Context, u *dburl.URL) (*pgx.Conn, error) {
	dsn, err := u.DSN()
	if err != nil {
		return nil, err
	}
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, mapError(err, "connect to "+u.Redacted())
	}
	return conn, nil
}

// maintenanceDB is the database used for CREATE/DROP DATABASE statements.
func maintenanceDB(u *dburl.URL) string {
	if u.Dialect == dburl.DialectCockroach {
		return "defaultdb"
	}
	return "postgres"
}

// --- Operations ---

// DatabaseExists reports whether the database named by u exists. The
// catalog probe tries the URL's own database first, then the standard
// maintenance databases, then a URL with no database at all; the first
// connection that can answer the probe decides. When nothing answers the
// database is reported absent.
func (a *Admin) DatabaseExists(ctx context.Context, u *dburl.URL) (bool, error) {
	const q = `SELECT 1 FROM pg_database WHERE datname = $1`

	if u.Database == "" {
		return false, errs.New(errs.ErrKindInvalidInput, "connection URL names no database")
	}

	candidates := []string{u.Database, "postgres", "template1", "template0", ""}
	if u.Dialect == dburl.DialectCockroach {
		candidates = []string{u.Database, "defaultdb", "postgres", ""}
	}

	for _, candidate := range candidates {
		conn, err := connect(ctx, u.WithDatabase(candidate))
		if err != nil {
			continue
		}
		var one int
		err = conn.QueryRow(ctx, q, u.Database).Scan(&one)
		_ = conn.Close(ctx)
		if err == nil {
			return true, nil
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return false, errs.Wrap(errs.ErrKindTimeout, "existence check aborted", err)
	}
	return false, nil
}

// CreateDatabase creates the database named by u on the server it points at.
func (a *Admin) CreateDatabase(ctx context.Context, u *dburl.URL, opts dialect.CreateOptions) error {
	if u.Database == "" {
		return errs.New(errs.ErrKindInvalidInput, "connection URL names no database to create")
	}

	conn, err := connect(ctx, u.WithDatabase(maintenanceDB(u)))
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, createStatement(u, opts)); err != nil {
		return mapError(err, "create database "+u.Database)
	}
	return nil
}

// createStatement renders the CREATE DATABASE text. Identifiers cannot be
// bound as statement parameters in DDL, so the names go through quoting.
func createStatement(u *dburl.URL, opts dialect.CreateOptions) string {
	if u.Dialect == dburl.DialectCockroach {
		// CockroachDB accepts neither an encoding nor a template clause.
		return "CREATE DATABASE " + quoteIdent(u.Database)
	}

	encoding := opts.Encoding
	if encoding == "" {
		encoding = "utf8"
	}
	template := opts.Template
	if template == "" {
		template = "template1"
	}
	return fmt.Sprintf("CREATE DATABASE %s ENCODING %s TEMPLATE %s",
		quoteIdent(u.Database), quoteLiteral(encoding), quoteIdent(template))
}

// DropDatabase destroys the database named by u. With ForceDisconnect set,
// every other session attached to it is terminated first, since a single
// straggler makes DROP DATABASE fail.
func (a *Admin) DropDatabase(ctx context.Context, u *dburl.URL, opts dialect.DropOptions) error {
	if u.Database == "" {
		return errs.New(errs.ErrKindInvalidInput, "connection URL names no database to drop")
	}

	conn, err := connect(ctx, u.WithDatabase(maintenanceDB(u)))
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	if opts.ForceDisconnect && u.Dialect == dburl.DialectPostgres {
		if err := terminateBackends(ctx, conn, u.Database); err != nil {
			return err
		}
	}

	if _, err := conn.Exec(ctx, "DROP DATABASE "+quoteIdent(u.Database)); err != nil {
		return mapError(err, "drop database "+u.Database)
	}
	return nil
}

// terminateBackends disconnects every session attached to the target
// database except our own.
func terminateBackends(ctx context.Context, conn *pgx.Conn, database string) error {
	version, err := serverVersionNum(ctx, conn)
	if err != nil {
		return err
	}
	if _, err := conn.Exec(ctx, terminateStatement(version), database); err != nil {
		return mapError(err, "terminate sessions on "+database)
	}
	return nil
}

func serverVersionNum(ctx context.Context, conn *pgx.Conn) (int, error) {
	var raw string
	if err := conn.QueryRow(ctx, `SHOW server_version_num`).Scan(&raw); err != nil {
		return 0, mapError(err, "read server version")
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errs.Wrap(errs.ErrKindQueryFailed, "unparsable server_version_num "+raw, err)
	}
	return n, nil
}

// terminateStatement builds the backend sweep. Servers before 9.2 expose
// the backend pid in pg_stat_activity as procpid.
func terminateStatement(versionNum int) string {
	pidColumn := "pid"
	if versionNum < 90200 {
		pidColumn = "procpid"
	}
	return fmt.Sprintf(`
		SELECT pg_terminate_backend(pg_stat_activity.%[1]s)
		FROM pg_stat_activity
		WHERE pg_stat_activity.datname = $1
		  AND %[1]s <> pg_backend_pid()`, pidColumn)
}

// Ping verifies the database named by u answers on a fresh connection.
func (a *Admin) Ping(ctx context.Context, u *dburl.URL) error {
	conn, err := connect(ctx, u)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	if err := conn.Ping(ctx); err != nil {
		return mapError(err, "ping "+u.Redacted())
	}
	return nil
}

// --- Quoting ---

// quoteIdent double-quotes a SQL identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteLiteral single-quotes a SQL string literal, doubling embedded quotes.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
