package store

import (
	"encoding/binary"
	"fmt"
)

// MaxHeaderLen is the maximum size of a record's length prefix.
const MaxHeaderLen = binary.MaxVarintLen64

// RecordLen returns the number of log bytes a record with an n-byte payload occupies.
func RecordLen(n int) uint64 {
	return uint64(uvarintLen(uint64(n)) + n) //nolint:gosec // n is a slice length
}

// EncodeID returns the blob ID for a record starting at offset.
func EncodeID(offset uint64) []byte {
	return binary.AppendUvarint(make([]byte, 0, uvarintLen(offset)), offset)
}

// DecodeID returns the record offset encoded in id.
//
// id must hold exactly one minimally encoded varint; anything else returns
// ErrMalformedID.
func DecodeID(id []byte) (uint64, error) {
	v, n := decodeUvarint(id)
	if n <= 0 {
		return 0, fmt.Errorf("%w: %x", ErrMalformedID, id)
	}
	if n != len(id) {
		return 0, fmt.Errorf("%w: %d trailing bytes", ErrMalformedID, len(id)-n)
	}
	return v, nil
}

// AppendRecord appends the framed record for payload to dst.
func AppendRecord(dst, payload []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(payload)))
	return append(dst, payload...)
}

// DecodeRecord returns the payload of the record starting at offset in log.
// The returned slice aliases log.
func DecodeRecord(log []byte, offset uint64) ([]byte, error) {
	if offset >= uint64(len(log)) {
		return nil, fmt.Errorf("%w: offset %d beyond log size %d", ErrCorruptFraming, offset, len(log))
	}
	rest := log[offset:]
	size, n := decodeUvarint(rest)
	if n <= 0 {
		return nil, fmt.Errorf("%w: bad length prefix at offset %d", ErrCorruptFraming, offset)
	}
	rest = rest[n:]
	if size > uint64(len(rest)) {
		return nil, fmt.Errorf("%w: record at offset %d declares %d bytes, %d remain", ErrCorruptFraming, offset, size, len(rest))
	}
	return rest[:size], nil
}

// decodeUvarint decodes a minimally encoded varint from the start of b.
// n is 0 when b is too short and negative when the value overflows or the
// encoding is not minimal.
func decodeUvarint(b []byte) (v uint64, n int) {
	v, n = binary.Uvarint(b)
	if n > 1 && b[n-1] == 0 {
		return 0, -n
	}
	return v, n
}

func uvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
