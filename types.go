package pathindex

import "github.com/meigma/pathindex/internal/blobtype"

// Re-export types from internal/blobtype for public API.
type (
	// ScanRecord describes one regular file visited by a scan.
	ScanRecord = blobtype.ScanRecord

	// Digest is a fixed-size fingerprint of a file's content.
	Digest = blobtype.Digest

	// ProgressEvent represents a progress update during a scan.
	ProgressEvent = blobtype.ProgressEvent

	// ProgressStage identifies the current phase of a scan.
	ProgressStage = blobtype.ProgressStage

	// ProgressFunc receives progress updates during a scan.
	// Implementations must be safe for concurrent calls.
	ProgressFunc = blobtype.ProgressFunc
)

// DigestSize is the size in bytes of a content digest.
const DigestSize = blobtype.DigestSize

// Re-export progress stage constants.
const (
	StageEnumerating = blobtype.StageEnumerating
	StageDigesting   = blobtype.StageDigesting
	StageInserting   = blobtype.StageInserting
	StageAttaching   = blobtype.StageAttaching
)

// ParseDigest parses a digest in "sha256:<hex>" form.
var ParseDigest = blobtype.ParseDigest
