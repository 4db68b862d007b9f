package blobtype

import (
	_ "crypto/sha256" // registers digest.SHA256
	"encoding/hex"

	"github.com/opencontainers/go-digest"
)

// DigestSize is the size in bytes of a content digest.
const DigestSize = 32

// DigestAlgorithm is the algorithm used for content digests.
const DigestAlgorithm = digest.SHA256

// Digest is a fixed-size fingerprint of a file's content.
type Digest [DigestSize]byte

// String returns the digest in "algorithm:hex" form.
func (d Digest) String() string {
	return string(digest.NewDigestFromBytes(DigestAlgorithm, d[:]))
}

// Hex returns the hex-encoded digest without the algorithm prefix.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// ParseDigest parses a digest in "algorithm:hex" form.
func ParseDigest(s string) (Digest, error) {
	dgst, err := digest.Parse(s)
	if err != nil {
		return Digest{}, err
	}
	if dgst.Algorithm() != DigestAlgorithm {
		return Digest{}, digest.ErrDigestUnsupported
	}
	raw, err := hex.DecodeString(dgst.Encoded())
	if err != nil {
		return Digest{}, err
	}
	var d Digest
	copy(d[:], raw)
	return d, nil
}
