package pathindex

import (
	"log/slog"

	"github.com/meigma/pathindex/store"
)

// DuplicatePolicy decides what happens when two files map to the same
// relative path.
type DuplicatePolicy uint8

const (
	// DuplicateOverwrite keeps the last inserted value.
	DuplicateOverwrite DuplicatePolicy = iota

	// DuplicateReject fails the scan with ErrDuplicateKey.
	DuplicateReject
)

// String returns the policy name.
func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateOverwrite:
		return "overwrite"
	case DuplicateReject:
		return "reject"
	default:
		return "unknown"
	}
}

// scanConfig holds configuration for a scan.
type scanConfig struct {
	store          store.BlobStore
	logger         *slog.Logger
	progress       ProgressFunc
	onInsert       func(ScanRecord)
	concurrency    int
	followSymlinks bool
	duplicates     DuplicatePolicy
	skipErrors     bool
	maxFiles       int
}

// ScanOption configures a scan.
type ScanOption func(*scanConfig)

// ScanWithStore sets the blob store the index is attached to.
// The default is a new in-memory store. The store may already hold records;
// Stats only count the bytes the scan adds.
func ScanWithStore(s store.BlobStore) ScanOption {
	return func(cfg *scanConfig) {
		cfg.store = s
	}
}

// ScanWithLogger sets the logger for scan diagnostics.
// If not set, logging is disabled.
func ScanWithLogger(logger *slog.Logger) ScanOption {
	return func(cfg *scanConfig) {
		cfg.logger = logger
	}
}

// ScanWithProgress sets a callback to receive progress updates.
// The callback may be invoked concurrently while files are digested.
func ScanWithProgress(fn ProgressFunc) ScanOption {
	return func(cfg *scanConfig) {
		cfg.progress = fn
	}
}

// ScanWithOnInsert sets a callback invoked for each record, in visitation
// order, just before it is inserted into the index.
func ScanWithOnInsert(fn func(ScanRecord)) ScanOption {
	return func(cfg *scanConfig) {
		cfg.onInsert = fn
	}
}

// ScanWithConcurrency sets how many files are digested at once.
// Values <= 0 use GOMAXPROCS.
func ScanWithConcurrency(n int) ScanOption {
	return func(cfg *scanConfig) {
		cfg.concurrency = n
	}
}

// ScanWithFollowSymlinks makes the scan follow symbolic links to files and
// directories. By default symlinks are enumerated but neither digested nor
// descended.
func ScanWithFollowSymlinks(enabled bool) ScanOption {
	return func(cfg *scanConfig) {
		cfg.followSymlinks = enabled
	}
}

// ScanWithDuplicatePolicy sets how duplicate relative paths are handled.
// The default is DuplicateOverwrite.
func ScanWithDuplicatePolicy(p DuplicatePolicy) ScanOption {
	return func(cfg *scanConfig) {
		cfg.duplicates = p
	}
}

// ScanWithSkipErrors collects per-entry filesystem errors in
// Result.Errors instead of aborting the scan.
func ScanWithSkipErrors(enabled bool) ScanOption {
	return func(cfg *scanConfig) {
		cfg.skipErrors = enabled
	}
}

// ScanWithMaxFiles limits the number of files indexed.
// Zero uses DefaultMaxFiles. Negative means no limit.
func ScanWithMaxFiles(n int) ScanOption {
	return func(cfg *scanConfig) {
		cfg.maxFiles = n
	}
}
