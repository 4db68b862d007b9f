// Package store provides append-only, offset-addressed blob stores.
//
// A store keeps a single byte log. Each [BlobStore.Write] appends one
// self-framed record to the end of the log:
//
//	varint(len(payload)) || payload
//
// and returns a blob ID encoding the record's starting offset:
//
//	varint(offset)
//
// Varints are unsigned LEB128: 7 data bits per byte, least significant
// group first, high bit set on every byte but the last, minimal length.
// Bytes are never overwritten or removed, so IDs stay valid for the
// lifetime of the store.
//
// [MemStore] holds the log in memory. [FileStore] writes the same log to a
// file and makes it durable on [FileStore.Sync].
package store
