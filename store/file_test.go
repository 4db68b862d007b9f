package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/pathindex/store"
	"github.com/meigma/pathindex/store/storetest"
)

func newFileStore(tb testing.TB, opts ...store.FileOption) *store.FileStore {
	tb.Helper()
	s, err := store.CreateFileStore(filepath.Join(tb.TempDir(), "blobs.log"), opts...)
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = s.Close() })
	return s
}

func TestFileStoreConformance(t *testing.T) {
	t.Parallel()

	t.Run("buffered", func(t *testing.T) {
		t.Parallel()
		storetest.Run(t, func(tb testing.TB) store.BlobStore {
			return newFileStore(tb)
		})
	})

	t.Run("tiny buffer", func(t *testing.T) {
		t.Parallel()
		storetest.Run(t, func(tb testing.TB) store.BlobStore {
			return newFileStore(tb, store.WithFileBufferSize(16))
		})
	})

	t.Run("sync on write", func(t *testing.T) {
		t.Parallel()
		storetest.Run(t, func(tb testing.TB) store.BlobStore {
			return newFileStore(tb, store.WithFileSyncOnWrite(true))
		})
	})
}

func TestFileStoreMatchesMemStore(t *testing.T) {
	t.Parallel()

	fs := newFileStore(t)
	ms := store.NewMemStore()
	for _, p := range []string{"abcd", "", "dir1/dir2/file2.bin"} {
		fid, err := fs.Write([]byte(p))
		require.NoError(t, err)
		mid, err := ms.Write([]byte(p))
		require.NoError(t, err)
		assert.Equal(t, mid, fid)
	}

	got, err := fs.Bytes()
	require.NoError(t, err)
	assert.Equal(t, ms.Bytes(), got)
}

func TestFileStoreSyncWritesFile(t *testing.T) {
	t.Parallel()

	s := newFileStore(t)
	_, err := s.Write([]byte("abcd"))
	require.NoError(t, err)
	require.NoError(t, s.Sync())

	onDisk, err := os.ReadFile(s.Name())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 'a', 'b', 'c', 'd'}, onDisk)
}

func TestFileStoreTruncatesExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "blobs.log")
	require.NoError(t, os.WriteFile(path, []byte("stale data"), 0o600))

	s, err := store.CreateFileStore(path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, uint64(0), s.Len())
}

func TestFileStoreClosed(t *testing.T) {
	t.Parallel()

	s := newFileStore(t)
	id, err := s.Write([]byte("abcd"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Write([]byte("more"))
	assert.ErrorIs(t, err, store.ErrClosed)
	_, err = s.Read(id)
	assert.ErrorIs(t, err, store.ErrClosed)
	assert.ErrorIs(t, s.Sync(), store.ErrClosed)

	onDisk, err := os.ReadFile(s.Name())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 'a', 'b', 'c', 'd'}, onDisk)
}
