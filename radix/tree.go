package radix

import (
	"bytes"
	"errors"
	"fmt"
	"iter"

	"github.com/meigma/pathindex/internal/blobtype"
	"github.com/meigma/pathindex/store"
)

// Sentinel errors re-exported from internal/blobtype.
var (
	// ErrStoreWriteFailed is returned when Attach cannot write a node.
	ErrStoreWriteFailed = blobtype.ErrStoreWriteFailed

	// ErrCorruptNode is returned when a stored node cannot be decoded.
	ErrCorruptNode = blobtype.ErrCorruptNode
)

// Entry is a key/value pair yielded by a scan.
// Key and Value are owned by the caller.
type Entry struct {
	Key   []byte
	Value []byte
}

// Tree is an ordered key/value index.
//
// A Tree is not safe for concurrent use, including concurrent reads of an
// attached tree, which load nodes in place.
type Tree struct {
	root  *node
	store store.BlobStore // nil while detached
}

// New returns an empty detached tree.
func New() *Tree {
	return &Tree{root: &node{loaded: true}}
}

// Open returns a tree backed by the root node blob id in s.
//
// The root node is read eagerly so a bad id fails here rather than on
// first use.
func Open(s store.BlobStore, root []byte) (*Tree, error) {
	if s == nil {
		return nil, errors.New("radix: nil store")
	}
	t := &Tree{root: newStub(nil, bytes.Clone(root)), store: s}
	if err := t.resolve(t.root); err != nil {
		return nil, err
	}
	return t, nil
}

// Attached reports whether the tree is backed by a blob store.
func (t *Tree) Attached() bool {
	return t.store != nil
}

// Root returns the blob ID of the root node. It returns nil when the tree is
// detached or has inserts that have not been attached yet.
func (t *Tree) Root() []byte {
	if t.store == nil || t.root.id == nil {
		return nil
	}
	return bytes.Clone(t.root.id)
}

// Insert sets the value for key. An existing value is overwritten and
// replaced reports whether one existed.
func (t *Tree) Insert(key, value []byte) (replaced bool, err error) {
	key = bytes.Clone(key)
	value = bytes.Clone(value)

	n := t.root
	for {
		if err := t.resolve(n); err != nil {
			return false, err
		}
		n.id = nil

		if len(key) == 0 {
			replaced = n.hasValue
			n.hasValue, n.value = true, value
			return replaced, nil
		}

		i, ok := n.child(key[0])
		if !ok {
			n.insertChild(i, newLeaf(key, value))
			return false, nil
		}

		c := n.children[i]
		common := commonPrefixLen(c.prefix, key)
		if common == len(c.prefix) {
			key = key[common:]
			n = c
			continue
		}

		// The key diverges inside c's edge: split it.
		mid := &node{prefix: c.prefix[:common:common], loaded: true}
		c.prefix = c.prefix[common:]
		mid.children = []*node{c}
		if common == len(key) {
			mid.hasValue, mid.value = true, value
		} else {
			leaf := newLeaf(key[common:], value)
			j, _ := mid.child(leaf.prefix[0])
			mid.insertChild(j, leaf)
		}
		n.children[i] = mid
		return false, nil
	}
}

// Get returns the value stored for key.
func (t *Tree) Get(key []byte) (value []byte, ok bool, err error) {
	n := t.root
	for {
		if err := t.resolve(n); err != nil {
			return nil, false, err
		}
		if len(key) == 0 {
			if !n.hasValue {
				return nil, false, nil
			}
			return bytes.Clone(n.value), true, nil
		}
		i, found := n.child(key[0])
		if !found {
			return nil, false, nil
		}
		c := n.children[i]
		if !bytes.HasPrefix(key, c.prefix) {
			return nil, false, nil
		}
		key = key[len(c.prefix):]
		n = c
	}
}

// ScanPrefix returns an iterator over entries whose key starts with prefix,
// in lexicographic key order.
//
// Each call scans from the start. A store read failure is yielded once as a
// non-nil error and ends the scan.
func (t *Tree) ScanPrefix(prefix []byte) iter.Seq2[Entry, error] {
	prefix = bytes.Clone(prefix)
	return func(yield func(Entry, error) bool) {
		n, key, err := t.seek(prefix)
		if err != nil {
			yield(Entry{}, err)
			return
		}
		if n == nil {
			return
		}
		t.walk(n, key, nil, yield)
	}
}

// All returns an iterator over every entry in key order.
func (t *Tree) All() iter.Seq2[Entry, error] {
	return t.ScanPrefix(nil)
}

// Attach writes the tree to s and returns a tree backed by it.
//
// Nodes already stored in s are not rewritten. t is left unchanged and
// remains usable. Stores are matched by identity, so s should be a
// pointer type.
func (t *Tree) Attach(s store.BlobStore) (*Tree, error) {
	if s == nil {
		return nil, errors.New("radix: nil store")
	}
	id, err := t.write(t.root, s, nil)
	if err != nil {
		return nil, err
	}
	return &Tree{root: newStub(nil, id), store: s}, nil
}

// resolve loads n's body from the store if needed.
func (t *Tree) resolve(n *node) error {
	if n.loaded {
		return nil
	}
	if t.store == nil {
		return fmt.Errorf("%w: unloaded node in detached tree", ErrCorruptNode)
	}
	data, err := t.store.Read(n.id)
	if err != nil {
		return fmt.Errorf("read node: %w", err)
	}
	return decodeNode(n, data)
}

// seek returns the shallowest node whose subtree holds exactly the keys
// starting with prefix, along with that node's full key. It returns a nil
// node when no key has the prefix.
func (t *Tree) seek(prefix []byte) (*node, []byte, error) {
	n := t.root
	var key []byte
	rest := prefix
	for len(rest) > 0 {
		if err := t.resolve(n); err != nil {
			return nil, nil, err
		}
		i, ok := n.child(rest[0])
		if !ok {
			return nil, nil, nil
		}
		c := n.children[i]
		common := commonPrefixLen(c.prefix, rest)
		switch {
		case common == len(rest):
			return c, append(key, c.prefix...), nil
		case common == len(c.prefix):
			key = append(key, c.prefix...)
			rest = rest[common:]
			n = c
		default:
			return nil, nil, nil
		}
	}
	return n, key, nil
}

// ancestor is a stored node on the path from the scan start to the node
// being walked.
type ancestor struct {
	id     []byte
	parent *ancestor
}

func (a *ancestor) contains(id []byte) bool {
	for ; a != nil; a = a.parent {
		if bytes.Equal(a.id, id) {
			return true
		}
	}
	return false
}

// walk yields n's subtree in key order. It returns false when the scan
// should stop. A stored node that refers back to one of its ancestors is
// reported as ErrCorruptNode.
func (t *Tree) walk(n *node, key []byte, up *ancestor, yield func(Entry, error) bool) bool {
	if n.id != nil {
		if up.contains(n.id) {
			yield(Entry{}, fmt.Errorf("%w: node %x is its own ancestor", ErrCorruptNode, n.id))
			return false
		}
		up = &ancestor{id: n.id, parent: up}
	}
	if err := t.resolve(n); err != nil {
		yield(Entry{}, err)
		return false
	}
	if n.hasValue {
		if !yield(Entry{Key: bytes.Clone(key), Value: bytes.Clone(n.value)}, nil) {
			return false
		}
	}
	for _, c := range n.children {
		if !t.walk(c, append(key, c.prefix...), up, yield) {
			return false
		}
	}
	return true
}

// write stores n's subtree in dst, children first, and returns n's blob ID.
func (t *Tree) write(n *node, dst store.BlobStore, up *ancestor) ([]byte, error) {
	if n.id != nil {
		if t.store == dst {
			return n.id, nil
		}
		if up.contains(n.id) {
			return nil, fmt.Errorf("%w: node %x is its own ancestor", ErrCorruptNode, n.id)
		}
		up = &ancestor{id: n.id, parent: up}
	}
	if err := t.resolve(n); err != nil {
		return nil, err
	}
	ids := make([][]byte, len(n.children))
	for i, c := range n.children {
		id, err := t.write(c, dst, up)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	id, err := dst.Write(encodeNode(n, ids))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreWriteFailed, err)
	}
	return id, nil
}

func commonPrefixLen(a, b []byte) int {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
