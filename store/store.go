package store

import "github.com/meigma/pathindex/internal/blobtype"

// Sentinel errors re-exported from internal/blobtype.
var (
	// ErrMalformedID is returned when a blob ID is not exactly one minimal varint.
	ErrMalformedID = blobtype.ErrMalformedID

	// ErrCorruptFraming is returned when a record's length prefix cannot be
	// decoded or declares more bytes than the log holds.
	ErrCorruptFraming = blobtype.ErrCorruptFraming

	// ErrClosed is returned when a closed store is used.
	ErrClosed = blobtype.ErrClosed
)

// BlobStore stores byte blobs behind opaque IDs.
//
// Callers must treat IDs as opaque: they are only meaningful to the store
// instance that returned them. Implementations must be safe for concurrent use.
type BlobStore interface {
	// Write appends p and returns an ID that retrieves identical bytes.
	Write(p []byte) ([]byte, error)

	// Read returns the bytes written under id. The returned slice is owned
	// by the caller.
	Read(id []byte) ([]byte, error)

	// Sync makes written bytes durable. It is idempotent.
	Sync() error

	// Len returns the current size of the log in bytes.
	Len() uint64
}

// Interface compliance.
var (
	_ BlobStore = (*MemStore)(nil)
	_ BlobStore = (*FileStore)(nil)
)
