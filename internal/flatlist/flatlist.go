// Package flatlist serializes a scan's (path, digest) list as a flat
// FlatBuffers table.
//
// The flat list exists for size comparison against the store-backed index;
// lookups never read it.
package flatlist

import (
	"errors"
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"

	"github.com/meigma/pathindex/internal/blobtype"
	"github.com/meigma/pathindex/internal/fb"
)

// Record is a decoded (path, digest) pair.
type Record struct {
	Path   string
	Digest blobtype.Digest
}

// Encode serializes records in order.
func Encode(records []blobtype.ScanRecord) []byte {
	builder := flatbuffers.NewBuilder(1024)

	// Build records in reverse order (FlatBuffers requirement)
	offsets := make([]flatbuffers.UOffsetT, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		pathOffset := builder.CreateString(r.Path)
		digestOffset := builder.CreateByteVector(r.Digest[:])

		fb.ScanRecordStart(builder)
		fb.ScanRecordAddPath(builder, pathOffset)
		fb.ScanRecordAddDigest(builder, digestOffset)
		offsets[i] = fb.ScanRecordEnd(builder)
	}

	fb.ScanListStartRecordsVector(builder, len(records))
	for i := len(offsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(offsets[i])
	}
	recordsOffset := builder.EndVector(len(records))

	fb.ScanListStart(builder)
	fb.ScanListAddRecords(builder, recordsOffset)
	fb.FinishScanListBuffer(builder, fb.ScanListEnd(builder))
	return builder.FinishedBytes()
}

// Decode parses a list produced by Encode.
func Decode(data []byte) (records []Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("flatlist: failed to parse list: %v", r)
		}
	}()
	if len(data) < flatbuffers.SizeUOffsetT {
		return nil, errors.New("flatlist: list too short")
	}

	root := fb.GetRootAsScanList(data, 0)
	n := root.RecordsLength()
	records = make([]Record, 0, n)
	var rec fb.ScanRecord
	for i := range n {
		if !root.Records(&rec, i) {
			return nil, fmt.Errorf("flatlist: missing record %d", i)
		}
		digest := rec.DigestBytes()
		if len(digest) != blobtype.DigestSize {
			return nil, fmt.Errorf("flatlist: record %d has %d digest bytes", i, len(digest))
		}
		var r Record
		r.Path = string(rec.Path())
		copy(r.Digest[:], digest)
		records = append(records, r)
	}
	return records, nil
}

// CompressedSize returns the size of data after zstd compression at the
// default level.
func CompressedSize(data []byte) (int, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return 0, fmt.Errorf("create zstd encoder: %w", err)
	}
	defer enc.Close()
	return len(enc.EncodeAll(data, nil)), nil
}
