package archive

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbadmin/internal/errs"
)

// fakeStore records calls so Snapshot can be tested without a live backend.
type fakeStore struct {
	buckets []string
	puts    []putCall
}

type putCall struct {
	bucket      string
	key         string
	contentType string
	size        int64
	data        []byte
}

func (f *fakeStore) Ping(context.Context) error { return nil }
func (f *fakeStore) Close() error               { return nil }

func (f *fakeStore) EnsureBucket(_ context.Context, bucket string) error {
	f.buckets = append(f.buckets, bucket)
	return nil
}

func (f *fakeStore) Put(_ context.Context, bucket, key string, r io.Reader, size int64, contentType string) (*SnapshotInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, putCall{bucket: bucket, key: key, contentType: contentType, size: size, data: data})
	return &SnapshotInfo{Bucket: bucket, Key: key, Size: size, ContentType: contentType, CreatedAt: time.Now()}, nil
}

func (f *fakeStore) Stat(context.Context, string, string) (*SnapshotInfo, error) {
	return nil, errs.New(errs.ErrKindNotFound, "no such snapshot")
}

func (f *fakeStore) PresignGetURL(context.Context, string, string, time.Duration) (string, error) {
	return "", errs.New(errs.ErrKindUnsupported, "presign not implemented")
}

func TestSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	store := &fakeStore{}
	info, err := Snapshot(context.Background(), store, "db-snapshots", "sqlite:"+path)
	require.NoError(t, err)

	assert.Equal(t, []string{"db-snapshots"}, store.buckets)
	require.Len(t, store.puts, 1)

	put := store.puts[0]
	assert.Equal(t, "db-snapshots", put.bucket)
	assert.Equal(t, []byte("payload"), put.data)
	assert.Equal(t, int64(7), put.size)
	assert.Equal(t, ContentTypeSQLite, put.contentType)
	assert.Equal(t, put.key, info.Key)
	assert.True(t, strings.HasPrefix(put.key, "app/app-"), "key %q must group under the database name", put.key)
	assert.True(t, strings.HasSuffix(put.key, ".db"))
}

func TestSnapshotRejectsServerDialects(t *testing.T) {
	store := &fakeStore{}
	_, err := Snapshot(context.Background(), store, "db-snapshots", "postgres://app@localhost/appdb")
	assert.True(t, errs.IsUnsupported(err))
	assert.Empty(t, store.puts)
}

func TestSnapshotRejectsInMemory(t *testing.T) {
	store := &fakeStore{}
	_, err := Snapshot(context.Background(), store, "db-snapshots", "sqlite://")
	assert.True(t, errs.IsInvalidInput(err))
	assert.Empty(t, store.puts)
}

func TestSnapshotMissingFile(t *testing.T) {
	store := &fakeStore{}
	_, err := Snapshot(context.Background(), store, "db-snapshots", "sqlite:"+filepath.Join(t.TempDir(), "gone.db"))
	assert.True(t, errs.IsNotFound(err))
	assert.Empty(t, store.puts)
}

func TestSnapshotKey(t *testing.T) {
	at := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	key := snapshotKey("/var/lib/app.db", at)

	assert.True(t, strings.HasPrefix(key, "app/app-20260102T150405Z-"), "got %q", key)
	assert.True(t, strings.HasSuffix(key, ".db"))

	id := strings.TrimSuffix(strings.TrimPrefix(key, "app/app-20260102T150405Z-"), ".db")
	_, err := uuid.Parse(id)
	assert.NoError(t, err, "key %q must embed a UUID", key)
}
