package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), "nested", "session.toml"), nil)
}

func TestStoreTokenLifecycle(t *testing.T) {
	store := newTestStore(t)

	assert.False(t, store.LoggedIn())
	assert.Equal(t, "", store.Token())

	require.NoError(t, store.SetToken("abc.def.ghi", "admin"))
	assert.True(t, store.LoggedIn())
	assert.Equal(t, "abc.def.ghi", store.Token())
	assert.Equal(t, "admin", store.Username())

	require.NoError(t, store.ClearToken())
	assert.False(t, store.LoggedIn())
	assert.Equal(t, "", store.Username())
}

func TestStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")

	require.NoError(t, Open(path, nil).SetToken("token-1", ""))

	reopened := Open(path, nil)
	assert.Equal(t, "token-1", reopened.Token())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreKeepsUnrelatedKeys(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("theme", "dark"))
	require.NoError(t, store.SetToken("t", "u"))
	require.NoError(t, store.ClearToken())

	value, ok := store.Get("theme")
	assert.True(t, ok)
	assert.Equal(t, "dark", value)
}

func TestStoreRejectsEmptyToken(t *testing.T) {
	store := newTestStore(t)

	assert.Error(t, store.SetToken("   ", "admin"))
	assert.False(t, store.LoggedIn())
}

func TestStoreRecoversFromCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid toml"), 0o600))

	store := Open(path, nil)
	assert.Equal(t, "", store.Token())

	require.NoError(t, store.SetToken("fresh", ""))
	assert.Equal(t, "fresh", store.Token())
}
