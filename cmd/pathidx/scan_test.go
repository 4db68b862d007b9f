package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/pathindex/internal/fileops"
	"github.com/meigma/pathindex/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestScanCommand(t *testing.T) {
	t.Parallel()

	root := testutil.NewTree(t, map[string]string{
		"dir1/file1.txt":      "abcd",
		"dir1/dir2/file2.bin": "",
	})

	t.Run("mem store", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, "scan", root, "--prefix", "dir1/")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
		require.Len(t, lines, 8)
		assert.Equal(t, "Inserting dir1/dir2/file2.bin "+fileops.DigestBytes(nil).String(), lines[0])
		assert.Equal(t, "Inserting dir1/file1.txt "+fileops.DigestBytes([]byte("abcd")).String(), lines[1])
		assert.Equal(t, "count 2", lines[2])
		assert.Equal(t, "hash size 64", lines[3])
		assert.True(t, strings.HasPrefix(lines[4], "flat names: "))
		assert.True(t, strings.HasPrefix(lines[5], "tree names: "))
		assert.Equal(t, "dir1/dir2/file2.bin "+filepath.Join(root, "dir1", "dir2", "file2.bin"), lines[6])
		assert.Equal(t, "dir1/file1.txt "+filepath.Join(root, "dir1", "file1.txt"), lines[7])
	})

	t.Run("file store quiet compressed", func(t *testing.T) {
		t.Parallel()
		logPath := filepath.Join(t.TempDir(), "index.log")
		out, err := execute(t, "scan", root, "-q", "--compressed", "--store", "file", "--store-path", logPath)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, "count 2", lines[0])
		assert.True(t, strings.HasPrefix(lines[4], "flat names (zstd): "))
		assert.FileExists(t, logPath)
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()
		_, err := execute(t, "scan")
		require.Error(t, err)

		_, err = execute(t, "scan", root, "--store", "tape")
		require.ErrorContains(t, err, "unknown store")

		_, err = execute(t, "scan", root, "--store", "file")
		require.ErrorContains(t, err, "--store-path")

		_, err = execute(t, "scan", filepath.Join(root, "missing"))
		require.Error(t, err)
	})
}
