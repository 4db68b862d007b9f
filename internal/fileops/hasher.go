package fileops

import (
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/meigma/pathindex/internal/blobtype"
)

// HashingReader wraps an io.Reader and computes a hash of all data read.
type HashingReader struct {
	r io.Reader
	h hash.Hash
	n int64
}

// NewHashingReader creates a reader that computes a content digest while reading.
func NewHashingReader(r io.Reader) *HashingReader {
	return &HashingReader{r: r, h: blobtype.DigestAlgorithm.Hash()}
}

// Read implements io.Reader.
func (hr *HashingReader) Read(p []byte) (int, error) {
	n, err := hr.r.Read(p)
	if n > 0 {
		_, _ = hr.h.Write(p[:n]) //nolint:errcheck // hash writes never fail
		hr.n += int64(n)
	}
	return n, err
}

// Digest returns the digest of the data read so far.
func (hr *HashingReader) Digest() Digest {
	var d Digest
	hr.h.Sum(d[:0])
	return d
}

// Count returns the number of bytes read so far.
func (hr *HashingReader) Count() int64 {
	return hr.n
}

// DigestBytes returns the digest of p.
func DigestBytes(p []byte) Digest {
	h := blobtype.DigestAlgorithm.Hash()
	_, _ = h.Write(p) //nolint:errcheck // hash writes never fail
	var d Digest
	h.Sum(d[:0])
	return d
}

// DigestReader reads r to EOF and returns its digest and length.
func DigestReader(r io.Reader) (Digest, int64, error) {
	hr := NewHashingReader(r)
	if _, err := io.Copy(io.Discard, hr); err != nil {
		return Digest{}, hr.Count(), err
	}
	return hr.Digest(), hr.Count(), nil
}

// DigestFile reads the file at path and returns its digest and length.
func DigestFile(path string) (Digest, int64, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the directory walk
	if err != nil {
		return Digest{}, 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Digest{}, 0, err
	}
	if !info.Mode().IsRegular() {
		return Digest{}, 0, fmt.Errorf("not a regular file: %s", path)
	}
	d, n, err := DigestReader(f)
	if err != nil {
		return Digest{}, n, fmt.Errorf("read %s: %w", path, err)
	}
	return d, n, nil
}
