// Package dbadmin provides administrative convenience operations for
// relational databases: existence checks, creation, destruction,
// reachability probes, and schema introspection, dispatched on the
// dialect named in a connection URL.
//
// Supported dialects are PostgreSQL, CockroachDB, MySQL/MariaDB, SQLite,
// and SQL Server; URLs with any other scheme fall through to a generic
// backend that drives whatever database/sql driver the program registered
// under that name. Every operation opens a short-lived connection, runs,
// and disconnects; there is no pooling and no state between calls.
//
// Usage:
//
//	exists, err := dbadmin.DatabaseExists(ctx, "postgres://app@localhost/appdb")
//	if err != nil {
//	    return err
//	}
//	if !exists {
//	    err = dbadmin.CreateDatabase(ctx, "postgres://app@localhost/appdb",
//	        dbadmin.WithEncoding("utf8"))
//	}
package dbadmin

import (
	"context"

	"github.com/koustreak/dbadmin/dburl"
	"github.com/koustreak/dbadmin/internal/dialect"
	"github.com/koustreak/dbadmin/internal/dialect/generic"
	"github.com/koustreak/dbadmin/internal/dialect/mssql"
	"github.com/koustreak/dbadmin/internal/dialect/mysql"
	"github.com/koustreak/dbadmin/internal/dialect/postgres"
	"github.com/koustreak/dbadmin/internal/dialect/sqlite"
)

// --- Options ---

// CreateOption adjusts how CreateDatabase builds its statement.
type CreateOption func(*dialect.CreateOptions)

// WithEncoding sets the character encoding of the new database. The
// default is utf8. SQLite and the generic backend ignore it.
func WithEncoding(encoding string) CreateOption {
	return func(o *dialect.CreateOptions) { o.Encoding = encoding }
}

// WithTemplate sets the template database the new database is cloned from
// (PostgreSQL only). The default is template1.
func WithTemplate(template string) CreateOption {
	return func(o *dialect.CreateOptions) { o.Template = template }
}

// DropOption adjusts how DropDatabase clears the way for the drop.
type DropOption func(*dialect.DropOptions)

// WithForceDisconnect controls whether other sessions are disconnected
// before the drop. On by default.
func WithForceDisconnect(force bool) DropOption {
	return func(o *dialect.DropOptions) { o.ForceDisconnect = force }
}

// WithDiagnostics controls whether the sessions, locks, and recent
// statements still touching the database are logged before the drop
// (SQL Server only). On by default.
func WithDiagnostics(diagnostics bool) DropOption {
	return func(o *dialect.DropOptions) { o.Diagnostics = diagnostics }
}

// --- Operations ---

// DatabaseExists reports whether the database named by rawURL exists.
// An unreachable server reads as "does not exist", not as an error.
func DatabaseExists(ctx context.Context, rawURL string) (bool, error) {
	u, err := dburl.Parse(rawURL)
	if err != nil {
		return false, err
	}
	return adminFor(u).DatabaseExists(ctx, u)
}

// CreateDatabase creates the database named by rawURL.
func CreateDatabase(ctx context.Context, rawURL string, opts ...CreateOption) error {
	u, err := dburl.Parse(rawURL)
	if err != nil {
		return err
	}
	o := dialect.DefaultCreateOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return adminFor(u).CreateDatabase(ctx, u, o)
}

// DropDatabase destroys the database named by rawURL. Sessions still
// connected to it are disconnected first unless turned off via
// WithForceDisconnect(false).
func DropDatabase(ctx context.Context, rawURL string, opts ...DropOption) error {
	u, err := dburl.Parse(rawURL)
	if err != nil {
		return err
	}
	o := dialect.DefaultDropOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return adminFor(u).DropDatabase(ctx, u, o)
}

// Ping verifies the database named by rawURL answers on a fresh connection.
func Ping(ctx context.Context, rawURL string) error {
	u, err := dburl.Parse(rawURL)
	if err != nil {
		return err
	}
	return adminFor(u).Ping(ctx, u)
}

// --- Dispatch ---

func adminFor(u *dburl.URL) dialect.Admin {
	switch u.Dialect {
	case dburl.DialectPostgres, dburl.DialectCockroach:
		return postgres.New()
	case dburl.DialectMySQL:
		return mysql.New()
	case dburl.DialectSQLite:
		return sqlite.New()
	case dburl.DialectMSSQL:
		return mssql.New()
	default:
		return generic.New()
	}
}
