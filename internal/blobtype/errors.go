package blobtype

import "errors"

// Sentinel errors for store, index, and scan operations.
var (
	// ErrMalformedID is returned when a blob ID is not exactly one minimal varint.
	ErrMalformedID = errors.New("pathindex: malformed blob id")

	// ErrCorruptFraming is returned when a record's length prefix cannot be
	// decoded or declares more bytes than the log holds.
	ErrCorruptFraming = errors.New("pathindex: corrupt record framing")

	// ErrClosed is returned when a closed store is used.
	ErrClosed = errors.New("pathindex: store closed")

	// ErrStoreWriteFailed is returned when attaching an index fails to write a node.
	ErrStoreWriteFailed = errors.New("pathindex: store write failed")

	// ErrCorruptNode is returned when a stored index node cannot be decoded.
	ErrCorruptNode = errors.New("pathindex: corrupt index node")

	// ErrDuplicateKey is returned when a key is inserted twice under the reject policy.
	ErrDuplicateKey = errors.New("pathindex: duplicate key")

	// ErrIO is returned when the filesystem cannot be read or a path cannot
	// be canonicalized.
	ErrIO = errors.New("pathindex: io error")

	// ErrTooManyFiles is returned when the file count exceeds the configured limit.
	ErrTooManyFiles = errors.New("pathindex: too many files")
)
