package radix

import (
	"testing"

	"github.com/meigma/pathindex/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeNode(t *testing.T) {
	t.Parallel()

	n := &node{
		loaded:   true,
		hasValue: true,
		value:    []byte("/abs/path"),
		children: []*node{
			newLeaf([]byte("a/"), []byte("1")),
			newLeaf([]byte("b"), nil),
		},
	}
	data := encodeNode(n, [][]byte{{0x05}, {0x80, 0x01}})
	assert.Equal(t, []byte{
		0x01, 0x09, '/', 'a', 'b', 's', '/', 'p', 'a', 't', 'h',
		0x02,
		0x02, 'a', '/', 0x01, 0x05,
		0x01, 'b', 0x02, 0x80, 0x01,
	}, data)

	var got node
	require.NoError(t, decodeNode(&got, data))
	assert.True(t, got.loaded)
	assert.True(t, got.hasValue)
	assert.Equal(t, []byte("/abs/path"), got.value)
	require.Len(t, got.children, 2)
	assert.Equal(t, []byte("a/"), got.children[0].prefix)
	assert.Equal(t, []byte{0x05}, got.children[0].id)
	assert.False(t, got.children[0].loaded)
	assert.Equal(t, []byte("b"), got.children[1].prefix)
	assert.Equal(t, []byte{0x80, 0x01}, got.children[1].id)
}

func TestDecodeNodeRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"unknown flags", []byte{0x02, 0x00}},
		{"missing child count", []byte{0x00}},
		{"truncated value", []byte{0x01, 0x05, 'a'}},
		{"child count too large", []byte{0x00, 0x05, 0x01, 'a'}},
		{"truncated child", []byte{0x00, 0x01, 0x01, 'a', 0x02, 0x01}},
		{"empty label", []byte{0x00, 0x01, 0x00, 0x01, 0x01}},
		{"empty id", []byte{0x00, 0x01, 0x01, 'a', 0x00}},
		{"children out of order", []byte{0x00, 0x02, 0x01, 'b', 0x01, 0x01, 0x01, 'a', 0x01, 0x02}},
		{"trailing bytes", []byte{0x00, 0x00, 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var n node
			assert.ErrorIs(t, decodeNode(&n, tt.data), ErrCorruptNode)
		})
	}
}

func TestCyclicNodesRejected(t *testing.T) {
	t.Parallel()

	t.Run("self", func(t *testing.T) {
		t.Parallel()
		s := store.NewMemStore()
		// Node at offset 0 whose only child "a" is stored at offset 0.
		root, err := s.Write([]byte{0x00, 0x01, 0x01, 'a', 0x01, 0x00})
		require.NoError(t, err)

		tree, err := Open(s, root)
		require.NoError(t, err)
		var scanErr error
		for _, err := range tree.ScanPrefix([]byte("aaaaaaaa")) {
			scanErr = err
		}
		assert.ErrorIs(t, scanErr, ErrCorruptNode)
	})

	t.Run("ancestor", func(t *testing.T) {
		t.Parallel()
		s := store.NewMemStore()
		// Node at offset 0 points to the node at offset 7, which points back.
		root, err := s.Write([]byte{0x00, 0x01, 0x01, 'a', 0x01, 0x07})
		require.NoError(t, err)
		id, err := s.Write([]byte{0x00, 0x01, 0x01, 'b', 0x01, 0x00})
		require.NoError(t, err)
		require.Equal(t, []byte{0x07}, id)

		tree, err := Open(s, root)
		require.NoError(t, err)
		var errs []error
		for _, err := range tree.All() {
			if err != nil {
				errs = append(errs, err)
			}
		}
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], ErrCorruptNode)

		_, err = tree.Attach(store.NewMemStore())
		assert.ErrorIs(t, err, ErrCorruptNode)
	})
}
