package store

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		offset uint64
		want   []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{math.MaxUint64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}},
	}
	for _, tt := range tests {
		got := EncodeID(tt.offset)
		assert.Equal(t, tt.want, got, "offset %d", tt.offset)

		back, err := DecodeID(got)
		require.NoError(t, err)
		assert.Equal(t, tt.offset, back)
	}
}

func TestDecodeIDRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   []byte
	}{
		{"empty", nil},
		{"truncated", []byte{0x80}},
		{"trailing garbage", []byte{0x05, 0x00}},
		{"not minimal", []byte{0x81, 0x00}},
		{"overflow", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeID(tt.id)
			assert.ErrorIs(t, err, ErrMalformedID)
		})
	}
}

func TestAppendRecord(t *testing.T) {
	t.Parallel()

	log := AppendRecord(nil, []byte("abcd"))
	assert.Equal(t, []byte{0x04, 'a', 'b', 'c', 'd'}, log)

	log = AppendRecord(log, nil)
	assert.Equal(t, []byte{0x04, 'a', 'b', 'c', 'd', 0x00}, log)

	payload := make([]byte, 200)
	log = AppendRecord(log, payload)
	assert.Equal(t, []byte{0xc8, 0x01}, log[6:8])
	assert.Len(t, log, 6+2+200)
}

func TestDecodeRecord(t *testing.T) {
	t.Parallel()

	log := AppendRecord(nil, []byte("abcd"))
	log = AppendRecord(log, []byte{})
	log = AppendRecord(log, []byte("xyz"))

	t.Run("valid offsets", func(t *testing.T) {
		t.Parallel()
		got, err := DecodeRecord(log, 0)
		require.NoError(t, err)
		assert.Equal(t, []byte("abcd"), got)

		got, err = DecodeRecord(log, 5)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = DecodeRecord(log, 6)
		require.NoError(t, err)
		assert.Equal(t, []byte("xyz"), got)
	})

	t.Run("past end", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeRecord(log, uint64(len(log)))
		assert.ErrorIs(t, err, ErrCorruptFraming)
	})

	t.Run("declared length exceeds log", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeRecord([]byte{0x05, 'a', 'b'}, 0)
		assert.ErrorIs(t, err, ErrCorruptFraming)
	})

	t.Run("truncated prefix", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeRecord([]byte{0x80}, 0)
		assert.ErrorIs(t, err, ErrCorruptFraming)
	})

	t.Run("non-minimal prefix", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeRecord([]byte{0x81, 0x00, 'a'}, 0)
		assert.ErrorIs(t, err, ErrCorruptFraming)
	})
}

func TestRecordLen(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint64(1), RecordLen(0))
	assert.Equal(t, uint64(128), RecordLen(127))
	assert.Equal(t, uint64(130), RecordLen(128))
	assert.Equal(t, uint64(len(AppendRecord(nil, make([]byte, 20000)))), RecordLen(20000))
}
