package blackbox

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *BlobStore {
	t.Helper()
	store, err := NewBlobStore(filepath.Join(t.TempDir(), "blobs"))
	require.NoError(t, err)
	return store
}

func TestPutGetRoundtrip(t *testing.T) {
	store := newTestStore(t)

	content := []byte("Hello, Jarvis!\nThis is a test output.")
	hash, err := store.Put(content)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	loaded, err := store.Get(hash)
	require.NoError(t, err)
	assert.Equal(t, content, loaded)
}

func TestPutEmptyReturnsEmptyIdentity(t *testing.T) {
	store := newTestStore(t)

	hash, err := store.Put(nil)
	require.NoError(t, err)
	assert.Empty(t, hash)

	hash, err = store.Put([]byte{})
	require.NoError(t, err)
	assert.Empty(t, hash)
}

func TestPutIsDeterministicAndIdempotent(t *testing.T) {
	store := newTestStore(t)

	h1, err := store.Put([]byte("duplicate content"))
	require.NoError(t, err)
	h2, err := store.Put([]byte("duplicate content"))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestBlobFileUsesPrefixDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blobs")
	store, err := NewBlobStore(dir)
	require.NoError(t, err)

	hash, err := store.Put([]byte("test content for path check"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, hash[:2], hash[2:]))
	assert.NoError(t, err)
}

func TestGetUnknownHashReturnsNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("0000000000000000000000000000000000000000000000000000000000000000")
	assert.True(t, errors.Is(err, ErrBlobNotFound))
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blobs")
	store, err := NewBlobStore(dir)
	require.NoError(t, err)

	hash, err := store.Put([]byte("atomic write check"))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, hash[:2]))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, hash[2:], entries[0].Name())
}
