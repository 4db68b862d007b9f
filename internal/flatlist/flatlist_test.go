package flatlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/pathindex/internal/blobtype"
	"github.com/meigma/pathindex/internal/testutil"
)

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	records := testutil.Records("/root", map[string]string{
		"dir1/file1.txt":      "abcd",
		"dir1/dir2/file2.bin": "",
	})
	data := Encode(records)

	got, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i, r := range records {
		assert.Equal(t, r.Path, got[i].Path)
		assert.Equal(t, r.Digest, got[i].Digest)
	}
}

func TestEncodeKeepsOrder(t *testing.T) {
	t.Parallel()

	records := []blobtype.ScanRecord{{Path: "z"}, {Path: "a"}, {Path: "m"}}
	got, err := Decode(Encode(records))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "z", got[0].Path)
	assert.Equal(t, "a", got[1].Path)
	assert.Equal(t, "m", got[2].Path)
}

func TestEncodeSize(t *testing.T) {
	t.Parallel()

	empty := Encode(nil)
	got, err := Decode(empty)
	require.NoError(t, err)
	assert.Empty(t, got)

	one := Encode([]blobtype.ScanRecord{{Path: "a"}})
	two := Encode([]blobtype.ScanRecord{{Path: "a"}, {Path: "b"}})
	assert.Greater(t, len(one), blobtype.DigestSize)
	assert.Greater(t, len(two), len(one)+blobtype.DigestSize)
}

func TestDecodeRejects(t *testing.T) {
	t.Parallel()

	_, err := Decode(nil)
	assert.Error(t, err)

	_, err = Decode([]byte{0xff, 0xff, 0xff, 0x7f})
	assert.Error(t, err)
}

func TestCompressedSize(t *testing.T) {
	t.Parallel()

	records := make([]blobtype.ScanRecord, 0, 200)
	for range 200 {
		records = append(records, blobtype.ScanRecord{Path: "src/github.com/example/project/internal/file.go"})
	}
	data := Encode(records)

	size, err := CompressedSize(data)
	require.NoError(t, err)
	assert.Positive(t, size)
	assert.Less(t, size, len(data)/4, "repetitive list compresses well")
}
