// Package archive defines the snapshot store used to preserve file-backed
// databases before destructive operations.
//
// All providers (MinIO, S3, …) implement the Store interface. Callers
// depend only on this package, never on a specific provider package.
//
// Usage:
//
//	cfg := archive.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	info, err := archive.Snapshot(ctx, store, "db-snapshots", "sqlite:app.db")
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/koustreak/dbadmin/dburl"
	"github.com/koustreak/dbadmin/internal/errs"
)

// ContentTypeSQLite is the MIME type snapshots of SQLite files are stored
// under.
const ContentTypeSQLite = "application/vnd.sqlite3"

// Store is the single interface all snapshot storage providers implement.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// EnsureBucket creates the bucket if it does not exist yet.
	EnsureBucket(ctx context.Context, bucket string) error

	// Put uploads size bytes from r to key inside bucket.
	Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) (*SnapshotInfo, error)

	// Stat returns metadata for the snapshot at key inside bucket without
	// downloading its content.
	Stat(ctx context.Context, bucket, key string) (*SnapshotInfo, error)

	// PresignGetURL returns a time-limited URL that allows anyone to
	// download the snapshot at key inside bucket without credentials.
	PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

// SnapshotInfo describes one stored snapshot.
type SnapshotInfo struct {
	// Bucket is the bucket the snapshot lives in.
	Bucket string

	// Key is the full object path within the bucket.
	Key string

	// Size is the byte size of the snapshot.
	Size int64

	// ETag is the snapshot's entity tag, as returned by the backend.
	ETag string

	// ContentType is the MIME type the snapshot was stored under.
	ContentType string

	// CreatedAt is when the snapshot was written.
	CreatedAt time.Time
}

// Config holds all settings needed to connect to a snapshot store.
type Config struct {
	// Endpoint is the host:port of the storage server.
	// Example: "localhost:9000" for local MinIO.
	Endpoint string

	// AccessKey is the access key ID (MinIO / S3 style).
	AccessKey string

	// SecretKey is the secret access key.
	SecretKey string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// Region is used by region-aware backends (e.g. AWS S3).
	// Leave empty for MinIO.
	Region string

	// Bucket is the bucket snapshots are written to.
	Bucket string
}

// DefaultConfig returns a local-dev config for MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    false,
		Bucket:    "db-snapshots",
	}
}

// Snapshot uploads the database file named by rawURL to the store under a
// timestamped key and returns the stored snapshot's metadata. Only
// file-backed (SQLite) databases can be archived; server dialects have no
// file to copy and the in-memory database has no content to preserve.
func Snapshot(ctx context.Context, s Store, bucket, rawURL string) (*SnapshotInfo, error) {
	u, err := dburl.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Dialect != dburl.DialectSQLite {
		return nil, errs.New(errs.ErrKindUnsupported, "only file-backed databases can be archived")
	}
	if u.InMemory() {
		return nil, errs.New(errs.ErrKindInvalidInput, "the in-memory database has no file to archive")
	}

	f, err := os.Open(u.Database)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrKindNotFound, "database file "+u.Database+" does not exist", err)
		}
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "open "+u.Database, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "stat "+u.Database, err)
	}

	if err := s.EnsureBucket(ctx, bucket); err != nil {
		return nil, err
	}
	return s.Put(ctx, bucket, snapshotKey(u.Database, time.Now().UTC()), f, fi.Size(), ContentTypeSQLite)
}

// snapshotKey builds "<base>/<base>-<timestamp>-<uuid>.db" so snapshots of
// one database group under a shared prefix and never collide.
func snapshotKey(path string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return fmt.Sprintf("%s/%s-%s-%s.db", base, base, now.Format("20060102T150405Z"), uuid.NewString())
}
