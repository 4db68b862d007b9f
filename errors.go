package pathindex

import "github.com/meigma/pathindex/internal/blobtype"

// Sentinel errors re-exported from internal/blobtype.
var (
	// ErrIO is returned when the filesystem cannot be read or a path cannot
	// be canonicalized. The underlying *fs.PathError is wrapped as well.
	ErrIO = blobtype.ErrIO

	// ErrMalformedID is returned when a blob ID is not exactly one minimal varint.
	ErrMalformedID = blobtype.ErrMalformedID

	// ErrCorruptFraming is returned when a store record cannot be framed.
	ErrCorruptFraming = blobtype.ErrCorruptFraming

	// ErrStoreWriteFailed is returned when the index cannot be written to the store.
	ErrStoreWriteFailed = blobtype.ErrStoreWriteFailed

	// ErrCorruptNode is returned when a stored index node cannot be decoded.
	ErrCorruptNode = blobtype.ErrCorruptNode

	// ErrDuplicateKey is returned when two files share a relative path and
	// DuplicateReject is in effect.
	ErrDuplicateKey = blobtype.ErrDuplicateKey

	// ErrTooManyFiles is returned when the file count exceeds the configured limit.
	ErrTooManyFiles = blobtype.ErrTooManyFiles
)
