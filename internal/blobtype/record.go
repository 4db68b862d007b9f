package blobtype

// ScanRecord describes one regular file visited by a scan.
type ScanRecord struct {
	// Path is the slash-separated path relative to the scanned root
	// (e.g., "dir1/file1.txt"). It is the index key.
	Path string

	// AbsPath is the canonical absolute path of the file at scan time.
	// It is the index value.
	AbsPath string

	// Size is the number of content bytes digested.
	Size int64

	// Digest is the fingerprint of the file's full contents.
	Digest Digest
}
