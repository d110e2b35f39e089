package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"envelope/internal/persistence"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	_, ok, err := s.Load(ctx, persistence.KeyAccounts)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, persistence.KeyAccounts, []byte(`[1]`)))
	require.NoError(t, s.Save(ctx, persistence.KeyAccounts, []byte(`[1,2]`)))

	got, ok, err := s.Load(ctx, persistence.KeyAccounts)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[1,2]`, string(got))

	assert.Equal(t, int64(2), revision(t, s, persistence.KeyAccounts))
}

func revision(t *testing.T, s *Store, key string) int64 {
	t.Helper()
	var rev int64
	require.NoError(t, s.db.QueryRow(`SELECT revision FROM ledger_kv WHERE key = ?`, key).Scan(&rev))
	return rev
}

func TestStoreRejectsUnknownKey(t *testing.T) {
	s, _ := openTemp(t)
	err := s.Save(context.Background(), "budgets", []byte(`{}`))
	assert.True(t, errors.Is(err, persistence.ErrUnknownKey))
}

func TestStoreClear(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	for _, key := range persistence.AllKeys() {
		require.NoError(t, s.Save(ctx, key, []byte(`"x"`)))
	}
	require.NoError(t, s.Clear(ctx, []string{persistence.KeyTargets, persistence.KeyPlanName}))

	_, ok, err := s.Load(ctx, persistence.KeyTargets)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.Load(ctx, persistence.KeyAccounts)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)
	require.NoError(t, s.Save(ctx, persistence.KeyPlanName, []byte(`"Home"`)))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Load(ctx, persistence.KeyPlanName)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `"Home"`, string(got))
}
