package blobtype

import (
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestString(t *testing.T) {
	t.Parallel()

	d := Digest(sha256.Sum256([]byte("abcd")))
	assert.Equal(t, string(digest.FromString("abcd")), d.String())
	assert.Equal(t, digest.FromString("abcd").Encoded(), d.Hex())
}

func TestParseDigest(t *testing.T) {
	t.Parallel()

	want := Digest(sha256.Sum256(nil))
	got, err := ParseDigest(want.String())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = ParseDigest("sha256:zz")
	assert.Error(t, err)

	_, err = ParseDigest("sha512:" + strings.Repeat("0", 128))
	assert.ErrorIs(t, err, digest.ErrDigestUnsupported)
}

func TestProgressStageString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "enumerating", StageEnumerating.String())
	assert.Equal(t, "digesting", StageDigesting.String())
	assert.Equal(t, "inserting", StageInserting.String())
	assert.Equal(t, "attaching", StageAttaching.String())
	assert.Equal(t, "unknown", ProgressStage(99).String())
}
