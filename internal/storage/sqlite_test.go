package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/toolshed/internal/common"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStorage_CredentialRoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.GetCredential(ctx, "authToken")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.SaveCredential(ctx, "authToken", "first"))
	value, err := store.GetCredential(ctx, "authToken")
	require.NoError(t, err)
	assert.Equal(t, "first", value)

	require.NoError(t, store.SaveCredential(ctx, "authToken", "second"))
	value, err = store.GetCredential(ctx, "authToken")
	require.NoError(t, err)
	assert.Equal(t, "second", value)

	require.NoError(t, store.DeleteCredential(ctx, "authToken"))
	_, err = store.GetCredential(ctx, "authToken")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// Deleting again is fine
	assert.NoError(t, store.DeleteCredential(ctx, "authToken"))
}

func TestSQLiteStorage_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "toolshed.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.SaveCredential(ctx, "authToken", "durable"))
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.GetCredential(ctx, "authToken")
	require.NoError(t, err)
	assert.Equal(t, "durable", value)
}

func TestSQLiteStorage_MigrateIsIdempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	var version int
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestSQLiteStorage_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		run  func() error
		name string
	}{
		{name: "empty key on get", run: func() error { _, err := store.GetCredential(ctx, " "); return err }},
		{name: "empty key on save", run: func() error { return store.SaveCredential(ctx, "", "v") }},
		{name: "empty value on save", run: func() error { return store.SaveCredential(ctx, "k", "") }},
		{name: "empty key on delete", run: func() error { return store.DeleteCredential(ctx, "") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), ErrEmptyString)
		})
	}
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.GetCredential(ctx, "authToken")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.SaveCredential(ctx, "authToken", "abc"))
	value, err := store.GetCredential(ctx, "authToken")
	require.NoError(t, err)
	assert.Equal(t, "abc", value)

	require.NoError(t, store.DeleteCredential(ctx, "authToken"))
	_, err = store.GetCredential(ctx, "authToken")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
