package radix

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/meigma/pathindex/internal/blobtype"
)

const flagHasValue = 1 << 0

// node is a radix tree node. Its edge label lives in prefix and is always
// known; the rest of the node is loaded from the store on demand when id is
// set and loaded is false.
type node struct {
	prefix []byte

	// id is the blob holding this node's body, or nil when the body has
	// changed since it was last written.
	id     []byte
	loaded bool

	hasValue bool
	value    []byte
	children []*node
}

func newLeaf(prefix, value []byte) *node {
	return &node{prefix: prefix, loaded: true, hasValue: true, value: value}
}

func newStub(prefix, id []byte) *node {
	return &node{prefix: prefix, id: id}
}

// child returns the index of the child whose label starts with b, and
// whether such a child exists.
func (n *node) child(b byte) (int, bool) {
	i := sort.Search(len(n.children), func(i int) bool {
		return n.children[i].prefix[0] >= b
	})
	return i, i < len(n.children) && n.children[i].prefix[0] == b
}

func (n *node) insertChild(i int, c *node) {
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
}

// encodeNode serializes the body of a loaded node whose children all have IDs.
func encodeNode(n *node, childIDs [][]byte) []byte {
	size := 1 + binary.MaxVarintLen64
	if n.hasValue {
		size += binary.MaxVarintLen64 + len(n.value)
	}
	for i, c := range n.children {
		size += 2*binary.MaxVarintLen64 + len(c.prefix) + len(childIDs[i])
	}
	buf := make([]byte, 0, size)

	var flags byte
	if n.hasValue {
		flags |= flagHasValue
	}
	buf = append(buf, flags)
	if n.hasValue {
		buf = appendBytes(buf, n.value)
	}
	buf = binary.AppendUvarint(buf, uint64(len(n.children)))
	for i, c := range n.children {
		buf = appendBytes(buf, c.prefix)
		buf = appendBytes(buf, childIDs[i])
	}
	return buf
}

// decodeNode fills n's body from data. Children become unloaded stubs.
// Byte slices in n alias data.
func decodeNode(n *node, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty node", blobtype.ErrCorruptNode)
	}
	flags := data[0]
	if flags&^flagHasValue != 0 {
		return fmt.Errorf("%w: unknown flags %#x", blobtype.ErrCorruptNode, flags)
	}
	rest := data[1:]

	var value []byte
	hasValue := flags&flagHasValue != 0
	if hasValue {
		var err error
		if value, rest, err = readBytes(rest); err != nil {
			return err
		}
	}

	count, n0 := binary.Uvarint(rest)
	if n0 <= 0 {
		return fmt.Errorf("%w: bad child count", blobtype.ErrCorruptNode)
	}
	rest = rest[n0:]
	// Each child takes at least three bytes: label length, label byte, id length.
	if count > uint64(len(rest))/3 {
		return fmt.Errorf("%w: child count %d exceeds node size", blobtype.ErrCorruptNode, count)
	}

	children := make([]*node, 0, count)
	for range count {
		var prefix, id []byte
		var err error
		if prefix, rest, err = readBytes(rest); err != nil {
			return err
		}
		if id, rest, err = readBytes(rest); err != nil {
			return err
		}
		if len(prefix) == 0 || len(id) == 0 {
			return fmt.Errorf("%w: empty child edge", blobtype.ErrCorruptNode)
		}
		if k := len(children); k > 0 && children[k-1].prefix[0] >= prefix[0] {
			return fmt.Errorf("%w: children out of order", blobtype.ErrCorruptNode)
		}
		children = append(children, newStub(prefix, id))
	}
	if len(rest) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", blobtype.ErrCorruptNode, len(rest))
	}

	n.hasValue = hasValue
	n.value = value
	n.children = children
	n.loaded = true
	return nil
}

func appendBytes(dst, b []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(b)))
	return append(dst, b...)
}

func readBytes(src []byte) (b, rest []byte, err error) {
	size, n := binary.Uvarint(src)
	if n <= 0 || size > uint64(len(src)-n) {
		return nil, nil, fmt.Errorf("%w: truncated field", blobtype.ErrCorruptNode)
	}
	end := n + int(size) //nolint:gosec // size <= len(src)
	return src[n:end], src[end:], nil
}
