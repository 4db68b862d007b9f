// Package testutil provides helpers for building scan fixtures.
package testutil

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meigma/pathindex/internal/blobtype"
	"github.com/meigma/pathindex/internal/fileops"
)

// WriteTree creates files below dir. Keys are slash-separated relative
// paths; a key ending in "/" creates an empty directory.
func WriteTree(tb testing.TB, dir string, files map[string]string) {
	tb.Helper()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			require.NoError(tb, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(tb, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(tb, os.WriteFile(full, []byte(content), 0o644)) //nolint:gosec // test fixture
	}
}

// NewTree creates a temporary directory populated by WriteTree and returns
// its canonical path.
func NewTree(tb testing.TB, files map[string]string) string {
	tb.Helper()
	dir, err := filepath.EvalSymlinks(tb.TempDir())
	require.NoError(tb, err)
	WriteTree(tb, dir, files)
	return dir
}

// Symlink creates a symlink at dir/rel pointing to target.
func Symlink(tb testing.TB, dir, rel, target string) {
	tb.Helper()
	full := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(tb, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(tb, os.Symlink(target, full))
}

// Records returns scan records for files, sorted by path, as a scan of a
// tree rooted at root would produce them.
func Records(root string, files map[string]string) []blobtype.ScanRecord {
	records := make([]blobtype.ScanRecord, 0, len(files))
	for rel, content := range files {
		if rel[len(rel)-1] == '/' {
			continue
		}
		records = append(records, blobtype.ScanRecord{
			Path:    rel,
			AbsPath: filepath.Join(root, filepath.FromSlash(rel)),
			Size:    int64(len(content)),
			Digest:  fileops.DigestBytes([]byte(content)),
		})
	}
	slices.SortFunc(records, func(a, b blobtype.ScanRecord) int {
		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		default:
			return 0
		}
	})
	return records
}
