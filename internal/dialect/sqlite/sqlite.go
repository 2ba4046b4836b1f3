// Package sqlite implements the admin operations for file-backed and
// in-memory SQLite databases through the modernc.org driver.
//
// SQLite has no server, so existence is a property of the file: present,
// at least one header long, and carrying the format-3 magic. The in-memory
// database always exists, creating it is a no-op, and dropping it has
// nothing to remove.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/koustreak/dbadmin/dburl"
	"github.com/koustreak/dbadmin/internal/dialect"
	"github.com/koustreak/dbadmin/internal/errs"
)

// Every non-empty database file starts with a 100-byte header whose first
// 16 bytes spell the magic.
const (
	headerSize = 100
	magic      = "SQLite format 3\x00"
)

// Admin manages SQLite database files. The zero value is ready to use.
type Admin struct{}

var _ dialect.Admin = (*Admin)(nil)

// New creates a SQLite admin.
func New() *Admin {
	return &Admin{}
}

// --- Connection handling ---

func open(ctx context.Context, u *dburl.URL) (*sql.DB, error) {
	dsn, err := u.DSN()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid sqlite path "+dsn, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, mapError(err, "open "+dsn)
	}
	return db, nil
}

// --- Operations ---

// DatabaseExists reports whether the file named by u holds a SQLite
// database. The in-memory database always exists.
func (a *Admin) DatabaseExists(_ context.Context, u *dburl.URL) (bool, error) {
	if u.InMemory() {
		return true, nil
	}
	return fileIsDatabase(u.Database)
}

// fileIsDatabase checks the file the way the engine would: it must exist,
// be at least one header long, and start with the format-3 magic.
func fileIsDatabase(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errs.Wrap(errs.ErrKindQueryFailed, "open "+path, err)
	}
	defer f.Close()

	header := make([]byte, headerSize)
	if _, err := io.ReadFull(f, header); err != nil {
		// Shorter than a header, not a database.
		return false, nil
	}
	return bytes.HasPrefix(header, []byte(magic)), nil
}

// CreateDatabase materializes the database file. Opening alone leaves a
// zero-byte file; pushing a throwaway table through forces the driver to
// write the database header.
func (a *Admin) CreateDatabase(ctx context.Context, u *dburl.URL, _ dialect.CreateOptions) error {
	if u.InMemory() {
		return nil
	}

	db, err := open(ctx, u)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "CREATE TABLE DB(id int)"); err != nil {
		return mapError(err, "initialize "+u.Database)
	}
	if _, err := db.ExecContext(ctx, "DROP TABLE DB"); err != nil {
		return mapError(err, "initialize "+u.Database)
	}
	return nil
}

// DropDatabase removes the database file.
func (a *Admin) DropDatabase(_ context.Context, u *dburl.URL, _ dialect.DropOptions) error {
	if u.InMemory() {
		return nil
	}

	if err := os.Remove(u.Database); err != nil {
		if os.IsNotExist(err) {
			return errs.Wrap(errs.ErrKindNotFound, "database file "+u.Database+" does not exist", err)
		}
		return errs.Wrap(errs.ErrKindQueryFailed, "remove "+u.Database, err)
	}
	return nil
}

// Ping verifies the database file opens and answers.
func (a *Admin) Ping(ctx context.Context, u *dburl.URL) error {
	db, err := open(ctx, u)
	if err != nil {
		return err
	}
	return db.Close()
}

// --- Quoting ---

// quoteIdent double-quotes a SQLite identifier, doubling embedded quotes.
// PRAGMA statements cannot take bound parameters, so table and index names
// are always quoted in.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
