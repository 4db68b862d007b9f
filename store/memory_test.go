package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/pathindex/store"
	"github.com/meigma/pathindex/store/storetest"
)

func TestMemStoreConformance(t *testing.T) {
	t.Parallel()
	storetest.Run(t, func(testing.TB) store.BlobStore {
		return store.NewMemStore()
	})
}

func TestMemStoreZeroValue(t *testing.T) {
	t.Parallel()

	var s store.MemStore
	id, err := s.Write([]byte("zero"))
	require.NoError(t, err)
	got, err := s.Read(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("zero"), got)
}

func TestMemStoreBytes(t *testing.T) {
	t.Parallel()

	s := store.NewMemStore()
	_, err := s.Write([]byte("abcd"))
	require.NoError(t, err)
	_, err = s.Write(nil)
	require.NoError(t, err)

	assert.Equal(t, []byte{0x04, 'a', 'b', 'c', 'd', 0x00}, s.Bytes())
}
