// Package radix provides an ordered path index backed by a radix tree.
//
// Keys are byte strings; [Tree.ScanPrefix] yields every entry whose key
// starts with a prefix, in lexicographic key order. A tree starts detached,
// with every node in memory. [Tree.Attach] writes the tree's nodes to a
// [store.BlobStore], one blob per node, and returns a tree that loads nodes
// from the store on demand. Attached trees answer Insert, Get and
// ScanPrefix exactly like detached ones; inserts are kept in memory until
// the next Attach.
//
// Edge labels are stored in the parent node, so a child's blob only holds
// its value and its own edges. A node blob is:
//
//	flags       byte           bit 0 set when the node holds a value
//	value       varint + bytes present when bit 0 is set
//	nchildren   varint
//	children    nchildren × (varint + label, varint + blob id)
//
// Children are ordered by the first byte of their label.
package radix
