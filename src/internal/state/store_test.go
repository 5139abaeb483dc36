package state

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, backend string) (Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "feed.state")
	store, err := Open(backend, path)
	require.NoError(t, err)
	return store, path
}

func TestStores_GetSet(t *testing.T) {
	backends := map[string]func(t *testing.T) Store{
		"file": func(t *testing.T) Store {
			store, _ := openStore(t, BackendFile)
			return store
		},
		"leveldb": func(t *testing.T) Store {
			store, _ := openStore(t, BackendLevelDB)
			return store
		},
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			defer store.Close()

			_, ok := store.Get("threat_intelligence", "etag")
			assert.False(t, ok, "missing key should be absent")

			require.NoError(t, store.Set("threat_intelligence", "etag", `"abc123"`))
			require.NoError(t, store.Set("threat_intelligence", "last_update", "1700000000.25"))
			require.NoError(t, store.Set("other", "etag", "unrelated"))

			value, ok := store.Get("threat_intelligence", "etag")
			assert.True(t, ok)
			assert.Equal(t, `"abc123"`, value)

			value, ok = store.Get("threat_intelligence", "last_update")
			assert.True(t, ok)
			assert.Equal(t, "1700000000.25", value)

			value, ok = store.Get("other", "etag")
			assert.True(t, ok)
			assert.Equal(t, "unrelated", value)

			require.NoError(t, store.Set("threat_intelligence", "etag", "xyz999"))
			value, _ = store.Get("threat_intelligence", "etag")
			assert.Equal(t, "xyz999", value)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("redis", filepath.Join(t.TempDir(), "state"))
	assert.Error(t, err)
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	store, path := openStore(t, BackendFile)
	require.NoError(t, store.Set("threat_intelligence", "etag", "abc123"))
	require.NoError(t, store.Close())

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok := reopened.Get("threat_intelligence", "etag")
	assert.True(t, ok)
	assert.Equal(t, "abc123", value)
}

func TestLevelDBStore_PersistsAcrossReopen(t *testing.T) {
	store, path := openStore(t, BackendLevelDB)
	require.NoError(t, store.Set("threat_intelligence", "last_update", "42.5"))
	require.NoError(t, store.Close())

	reopened, err := OpenLevelDBStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok := reopened.Get("threat_intelligence", "last_update")
	assert.True(t, ok)
	assert.Equal(t, "42.5", value)
}

func TestFileStore_ReadsHandEditedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.state")
	require.NoError(t, os.WriteFile(path, []byte("[threat_intelligence]\nlast_update = 1700000000\netag = \"abc\"\n"), 0644))

	store, err := NewFileStore(path)
	require.NoError(t, err)
	defer store.Close()

	value, ok := store.Get("threat_intelligence", "last_update")
	assert.True(t, ok)
	assert.Equal(t, "1700000000", value)

	require.NoError(t, store.Set("threat_intelligence", "etag", "def"))
	value, _ = store.Get("threat_intelligence", "last_update")
	assert.Equal(t, "1700000000", value, "unrelated keys must survive a write")
}

func TestFileStore_CorruptFileIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.state")
	require.NoError(t, os.WriteFile(path, []byte("[broken"), 0644))

	store, err := NewFileStore(path)
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.Get("threat_intelligence", "etag")
	assert.False(t, ok)
}

func TestFileStore_CorruptFileIsReplacedOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.state")
	require.NoError(t, os.WriteFile(path, []byte("this is = = not toml"), 0644))

	store, err := NewFileStore(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set("threat_intelligence", "last_update", "1700000000"))
	require.NoError(t, store.Set("threat_intelligence", "etag", "abc"))

	value, ok := store.Get("threat_intelligence", "last_update")
	assert.True(t, ok)
	assert.Equal(t, "1700000000", value)
	value, ok = store.Get("threat_intelligence", "etag")
	assert.True(t, ok)
	assert.Equal(t, "abc", value)

	corrupt, err := os.ReadFile(path + corruptSuffix)
	require.NoError(t, err)
	assert.Equal(t, "this is = = not toml", string(corrupt))
}

func TestFileStore_ConcurrentWriters(t *testing.T) {
	store, _ := openStore(t, BackendFile)
	defer store.Close()

	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			assert.NoError(t, store.Set("section", key, key+"-value"))
		}(key)
	}
	wg.Wait()

	for _, key := range keys {
		value, ok := store.Get("section", key)
		assert.True(t, ok, key)
		assert.Equal(t, key+"-value", value)
	}
}
