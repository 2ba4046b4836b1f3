// Package dialect defines the per-backend contract for administrative
// database operations and the option sets shared by all backends.
//
// Each backend implements Admin in its own subpackage (postgres, mysql,
// sqlite, mssql, generic). Connections are opened per call and closed
// before the call returns; the admin surface keeps no state between
// operations.
package dialect

import (
	"context"

	"github.com/koustreak/dbadmin/dburl"
	"github.com/koustreak/dbadmin/schema"
)

// Admin is the set of administrative operations every backend provides.
type Admin interface {
	// DatabaseExists reports whether the database named by u exists.
	DatabaseExists(ctx context.Context, u *dburl.URL) (bool, error)

	// CreateDatabase creates the database named by u.
	CreateDatabase(ctx context.Context, u *dburl.URL, opts CreateOptions) error

	// DropDatabase destroys the database named by u.
	DropDatabase(ctx context.Context, u *dburl.URL, opts DropOptions) error

	// Ping verifies the database answers on a fresh connection.
	Ping(ctx context.Context, u *dburl.URL) error

	// ListTables returns the user table names in the database named by u.
	ListTables(ctx context.Context, u *dburl.URL) ([]string, error)

	// InspectTable loads the shape of one table.
	InspectTable(ctx context.Context, u *dburl.URL, table string) (*schema.Table, error)
}

// CreateOptions carries the settings for CreateDatabase. Backends ignore
// the clauses they have no syntax for.
type CreateOptions struct {
	// Encoding is the character encoding of the new database.
	Encoding string

	// Template is the template database CREATE DATABASE clones
	// (PostgreSQL only).
	Template string
}

// DefaultCreateOptions returns the stock settings: utf8, cloned from
// template1.
func DefaultCreateOptions() CreateOptions {
	return CreateOptions{Encoding: "utf8", Template: "template1"}
}

// DropOptions carries the settings for DropDatabase.
type DropOptions struct {
	// ForceDisconnect disconnects other sessions before the drop:
	// pg_terminate_backend on PostgreSQL, single-user rollback on
	// SQL Server.
	ForceDisconnect bool

	// Diagnostics logs the sessions, locks, and recent statements still
	// touching the database before it is dropped (SQL Server only).
	Diagnostics bool
}

// DefaultDropOptions returns the stock settings: disconnect and diagnose.
func DefaultDropOptions() DropOptions {
	return DropOptions{ForceDisconnect: true, Diagnostics: true}
}

// MarkColumnFlags sets the per-column primary/unique markers from the
// table-level constraint and index data. Backends call it after assembling
// a Table from catalog queries. Every member of a composite primary key is
// marked primary, but only single-column uniques mark IsUnique: a composite
// unique guarantees nothing about one member column alone.
func MarkColumnFlags(t *schema.Table) {
	primary := map[string]bool{}
	if t.PrimaryKey != nil {
		for _, c := range t.PrimaryKey.Columns {
			primary[c] = true
		}
	}

	unique := map[string]bool{}
	for _, uq := range t.Uniques {
		if len(uq.Columns) == 1 {
			unique[uq.Columns[0]] = true
		}
	}
	for _, idx := range t.Indexes {
		if idx.Unique && len(idx.Columns) == 1 {
			unique[idx.Columns[0]] = true
		}
	}

	for _, col := range t.Columns {
		col.IsPrimary = col.IsPrimary || primary[col.Name]
		col.IsUnique = col.IsUnique || unique[col.Name]
	}
}
