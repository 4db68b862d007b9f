// Package storetest provides a conformance suite for store.BlobStore
// implementations.
package storetest

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/pathindex/store"
)

// Factory returns a new, empty store for a single subtest.
type Factory func(tb testing.TB) store.BlobStore

// Run exercises the BlobStore contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		for _, payload := range samplePayloads() {
			id, err := s.Write(payload)
			require.NoError(t, err)
			got, err := s.Read(id)
			require.NoError(t, err)
			assert.Equal(t, payload, got, "payload of %d bytes", len(payload))
		}
	})

	t.Run("offset stability", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		first := []byte("first blob")
		id1, err := s.Write(first)
		require.NoError(t, err)
		id2, err := s.Write([]byte("second blob"))
		require.NoError(t, err)
		assert.NotEqual(t, id1, id2)

		got, err := s.Read(id1)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	})

	t.Run("read result is caller owned", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		id, err := s.Write([]byte("immutable"))
		require.NoError(t, err)
		got, err := s.Read(id)
		require.NoError(t, err)
		got[0] = 'X'

		again, err := s.Read(id)
		require.NoError(t, err)
		assert.Equal(t, []byte("immutable"), again)
	})

	t.Run("length grows by record size", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		assert.Equal(t, uint64(0), s.Len())
		var want uint64
		for _, payload := range samplePayloads() {
			_, err := s.Write(payload)
			require.NoError(t, err)
			want += store.RecordLen(len(payload))
			assert.Equal(t, want, s.Len())
		}
	})

	t.Run("first id is offset zero", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		id, err := s.Write([]byte("abc"))
		require.NoError(t, err)
		assert.Equal(t, []byte{0x00}, id)
		id, err = s.Write(nil)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x04}, id)
	})

	t.Run("malformed ids", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		id, err := s.Write([]byte("payload"))
		require.NoError(t, err)

		for _, bad := range [][]byte{
			nil,
			append(bytes.Clone(id), 0x01),
			{0x80},
			{0x80, 0x00},
			{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01},
		} {
			_, err := s.Read(bad)
			assert.ErrorIs(t, err, store.ErrMalformedID, "id %x", bad)
		}
	})

	t.Run("offset past end", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		_, err := s.Write([]byte("payload"))
		require.NoError(t, err)

		_, err = s.Read(store.EncodeID(s.Len()))
		require.ErrorIs(t, err, store.ErrCorruptFraming)
		_, err = s.Read(store.EncodeID(1 << 40))
		require.ErrorIs(t, err, store.ErrCorruptFraming)
	})

	t.Run("offset inside a payload", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		// Byte 1 is the payload byte 0x7f, which declares 127 bytes.
		_, err := s.Write([]byte{0x7f, 'a', 'b'})
		require.NoError(t, err)

		_, err = s.Read(store.EncodeID(1))
		require.ErrorIs(t, err, store.ErrCorruptFraming)
	})

	t.Run("idempotent sync", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		id, err := s.Write([]byte("durable"))
		require.NoError(t, err)
		for range 3 {
			require.NoError(t, s.Sync())
		}
		got, err := s.Read(id)
		require.NoError(t, err)
		assert.Equal(t, []byte("durable"), got)
		assert.Equal(t, store.RecordLen(len("durable")), s.Len())
	})

	t.Run("concurrent writers and readers", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)

		const writers = 8
		const perWriter = 64
		var mu sync.Mutex
		written := make(map[string][]byte)

		var g errgroup.Group
		for w := range writers {
			g.Go(func() error {
				rng := rand.New(rand.NewPCG(uint64(w), 1)) //nolint:gosec // deterministic test data
				for i := range perWriter {
					payload := make([]byte, rng.IntN(300))
					for j := range payload {
						payload[j] = byte(rng.UintN(256))
					}
					id, err := s.Write(payload)
					if err != nil {
						return err
					}
					got, err := s.Read(id)
					if err != nil {
						return err
					}
					if !bytes.Equal(payload, got) {
						return fmt.Errorf("writer %d blob %d: read mismatch", w, i)
					}
					mu.Lock()
					written[string(id)] = payload
					mu.Unlock()
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())
		require.Len(t, written, writers*perWriter)

		var total uint64
		for id, payload := range written {
			got, err := s.Read([]byte(id))
			require.NoError(t, err)
			assert.Equal(t, payload, got)
			total += store.RecordLen(len(payload))
		}
		assert.Equal(t, total, s.Len())
	})
}

func samplePayloads() [][]byte {
	big := make([]byte, 70_000)
	for i := range big {
		big[i] = byte(i % 251)
	}
	return [][]byte{
		{},
		[]byte("a"),
		[]byte("hello, world"),
		bytes.Repeat([]byte{0x80}, 127),
		bytes.Repeat([]byte{0x00}, 128),
		big,
	}
}
