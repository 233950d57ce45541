package localstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]KV {
	t.Helper()
	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]KV{
		"sqlite": sqlite,
		"memory": NewMemory(),
	}
}

func TestKVContract(t *testing.T) {
	for name, kv := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			_, ok, err := kv.Get(ctx, KeyState)
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, kv.Set(ctx, KeyState, `{"a":1}`))
			require.NoError(t, kv.Set(ctx, KeyState, `{"a":2}`))
			v, ok, err := kv.Get(ctx, KeyState)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, `{"a":2}`, v)

			require.NoError(t, kv.Set(ctx, KeyServerURL, ""))
			v, ok, err = kv.Get(ctx, KeyServerURL)
			require.NoError(t, err)
			require.True(t, ok)
			require.Empty(t, v)

			require.NoError(t, kv.Delete(ctx, KeyState))
			require.NoError(t, kv.Delete(ctx, KeyState))
			_, ok, err = kv.Get(ctx, KeyState)
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, kv.Close())
			require.ErrorIs(t, kv.Set(ctx, KeyAPIKey, "k"), ErrClosed)
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.db")
	ctx := t.Context()

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyAPIKey, "secret"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	v, ok, err := s.Get(ctx, KeyAPIKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "secret", v)
}
