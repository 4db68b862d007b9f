package pathindex

import (
	"fmt"
	"io"
	"iter"

	"github.com/meigma/pathindex/radix"
)

// WriteRecord writes the line reported for an inserted file.
func WriteRecord(w io.Writer, r ScanRecord) error {
	_, err := fmt.Fprintf(w, "Inserting %s %s\n", r.Path, r.Digest)
	return err
}

// WriteSummary writes the four summary lines for a scan, plus the
// compressed flat-list size when compressed is set.
func WriteSummary(w io.Writer, s Stats, compressed bool) error {
	if _, err := fmt.Fprintf(w, "count %d\nhash size %d\nflat names: %d\ntree names: %d\n",
		s.Count, s.DigestBytes, s.FlatNames, s.TreeNames); err != nil {
		return err
	}
	if compressed {
		_, err := fmt.Fprintf(w, "flat names (zstd): %d\n", s.FlatCompressedBytes-s.DigestBytes)
		return err
	}
	return nil
}

// WriteEntries writes one "key value" line per entry and returns the
// number of entries written.
func WriteEntries(w io.Writer, entries iter.Seq2[radix.Entry, error]) (int, error) {
	n := 0
	for e, err := range entries {
		if err != nil {
			return n, err
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", e.Key, e.Value); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
