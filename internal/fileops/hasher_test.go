package fileops

import (
	"crypto/sha256"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashingReader(t *testing.T) {
	t.Parallel()

	hr := NewHashingReader(strings.NewReader("abcd"))
	data, err := io.ReadAll(hr)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(data))
	assert.Equal(t, int64(4), hr.Count())
	assert.Equal(t, Digest(sha256.Sum256([]byte("abcd"))), hr.Digest())
}

func TestDigestBytes(t *testing.T) {
	t.Parallel()

	empty := DigestBytes(nil)
	assert.Equal(t, "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", empty.String())
	assert.NotEqual(t, empty, DigestBytes([]byte("abcd")))
}

type errReader struct{}

var errBoom = errors.New("boom")

func (errReader) Read([]byte) (int, error) { return 0, errBoom }

func TestDigestReader(t *testing.T) {
	t.Parallel()

	t.Run("matches DigestBytes", func(t *testing.T) {
		t.Parallel()
		payload := strings.Repeat("0123456789", 10_000)
		d, n, err := DigestReader(strings.NewReader(payload))
		require.NoError(t, err)
		assert.Equal(t, int64(len(payload)), n)
		assert.Equal(t, DigestBytes([]byte(payload)), d)
	})

	t.Run("read error", func(t *testing.T) {
		t.Parallel()
		_, _, err := DigestReader(errReader{})
		assert.ErrorIs(t, err, errBoom)
	})
}

func TestDigestFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "file1.txt")
	require.NoError(t, os.WriteFile(path, []byte("abcd"), 0o600))

	d, n, err := DigestFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, DigestBytes([]byte("abcd")), d)

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, _, err := DigestFile(filepath.Join(dir, "missing"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()
		_, _, err := DigestFile(dir)
		assert.Error(t, err)
	})
}
