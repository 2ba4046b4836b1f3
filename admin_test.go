package dbadmin_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbadmin"
)

// The sqlite backend runs against real files, so the full lifecycle is
// exercised end to end through the public API.
func TestSQLiteLifecycle(t *testing.T) {
	ctx := context.Background()
	rawURL := "sqlite:" + filepath.Join(t.TempDir(), "app.db")

	exists, err := dbadmin.DatabaseExists(ctx, rawURL)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, dbadmin.CreateDatabase(ctx, rawURL))

	exists, err = dbadmin.DatabaseExists(ctx, rawURL)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, dbadmin.Ping(ctx, rawURL))

	require.NoError(t, dbadmin.DropDatabase(ctx, rawURL))

	exists, err = dbadmin.DatabaseExists(ctx, rawURL)
	require.NoError(t, err)
	assert.False(t, exists)

	err = dbadmin.DropDatabase(ctx, rawURL)
	assert.True(t, dbadmin.IsNotFound(err))
}

func TestInMemoryLifecycle(t *testing.T) {
	ctx := context.Background()

	exists, err := dbadmin.DatabaseExists(ctx, "sqlite://")
	require.NoError(t, err)
	assert.True(t, exists, "the in-memory database always exists")

	require.NoError(t, dbadmin.CreateDatabase(ctx, "sqlite://"))
	require.NoError(t, dbadmin.Ping(ctx, "sqlite://"))
	require.NoError(t, dbadmin.DropDatabase(ctx, "sqlite://"))
}

func TestMalformedURL(t *testing.T) {
	ctx := context.Background()

	_, err := dbadmin.DatabaseExists(ctx, "")
	assert.True(t, dbadmin.IsInvalidInput(err))

	err = dbadmin.CreateDatabase(ctx, "//localhost/appdb")
	assert.True(t, dbadmin.IsInvalidInput(err))

	err = dbadmin.DropDatabase(ctx, "//localhost/appdb")
	assert.True(t, dbadmin.IsInvalidInput(err))

	err = dbadmin.Ping(ctx, "")
	assert.True(t, dbadmin.IsInvalidInput(err))
}

// URLs with an unknown scheme fall through to the generic backend, which
// needs a registered database/sql driver to do anything.
func TestUnknownSchemeUnsupported(t *testing.T) {
	err := dbadmin.Ping(context.Background(), "voltdb://admin@localhost:21212/appdb")
	assert.True(t, dbadmin.IsUnsupported(err))
}
