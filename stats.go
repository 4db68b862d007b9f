package pathindex

import "github.com/meigma/pathindex/internal/flatlist"

// Stats compares the space used by a flat (path, digest) list with the
// space used by the store-backed index.
type Stats struct {
	// Count is the number of files indexed.
	Count int

	// DigestBytes is the raw size of all digests, DigestSize * Count.
	DigestBytes int

	// FlatBytes is the size of the serialized flat list.
	FlatBytes int

	// FlatNames is FlatBytes minus DigestBytes: the cost of the paths and
	// framing in the flat list.
	FlatNames int

	// FlatCompressedBytes is the zstd-compressed size of the flat list.
	FlatCompressedBytes int

	// StoreBytes is the number of bytes attach added to the blob store's log.
	StoreBytes uint64

	// TreeNames is StoreBytes minus DigestBytes.
	TreeNames int64
}

// ComputeStats measures records against an index occupying storeLen
// bytes of a blob store.
func ComputeStats(records []ScanRecord, storeLen uint64) (Stats, error) {
	flat := flatlist.Encode(records)
	compressed, err := flatlist.CompressedSize(flat)
	if err != nil {
		return Stats{}, err
	}
	digestBytes := DigestSize * len(records)
	return Stats{
		Count:               len(records),
		DigestBytes:         digestBytes,
		FlatBytes:           len(flat),
		FlatNames:           len(flat) - digestBytes,
		FlatCompressedBytes: compressed,
		StoreBytes:          storeLen,
		TreeNames:           int64(storeLen) - int64(digestBytes), //nolint:gosec // store sizes fit in int64
	}, nil
}
