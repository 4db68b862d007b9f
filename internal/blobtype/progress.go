package blobtype

// ProgressEvent represents a progress update during a scan.
type ProgressEvent struct {
	// Stage identifies the current phase of the scan.
	Stage ProgressStage

	// Path is the entry currently being processed, if applicable.
	Path string

	// FilesDone is the number of files completed in the current stage.
	FilesDone int

	// FilesTotal is the total number of files for the current stage.
	// Zero indicates the total is unknown (e.g., during enumeration).
	FilesTotal int
}

// ProgressStage identifies the current phase of a scan.
type ProgressStage uint8

// Progress stages, in the order a scan passes through them.
const (
	// StageEnumerating indicates the directory tree is being walked.
	StageEnumerating ProgressStage = iota

	// StageDigesting indicates file contents are being hashed.
	StageDigesting

	// StageInserting indicates paths are being inserted into the index.
	StageInserting

	// StageAttaching indicates the index is being written to the blob store.
	StageAttaching
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageEnumerating:
		return "enumerating"
	case StageDigesting:
		return "digesting"
	case StageInserting:
		return "inserting"
	case StageAttaching:
		return "attaching"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during a scan.
// Implementations must be safe for concurrent calls.
type ProgressFunc func(ProgressEvent)
