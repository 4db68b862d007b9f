package store

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
)

const defaultFileBufferSize = 64 * 1024

// FileStore is a BlobStore whose log is written to a file.
//
// Writes go through a buffered writer; Sync flushes the buffer and fsyncs
// the file. Reads flush pending bytes first so every returned ID is
// readable immediately. A FileStore always starts from an empty file.
type FileStore struct {
	mu          sync.Mutex
	f           *os.File
	w           *bufio.Writer
	size        uint64
	syncOnWrite bool
	closed      bool
}

// FileOption configures a FileStore.
type FileOption func(*fileConfig)

type fileConfig struct {
	bufferSize  int
	syncOnWrite bool
	perm        os.FileMode
}

// WithFileBufferSize sets the write buffer size. Values <= 0 use the default.
func WithFileBufferSize(n int) FileOption {
	return func(cfg *fileConfig) {
		cfg.bufferSize = n
	}
}

// WithFileSyncOnWrite makes every Write flush and fsync before returning.
func WithFileSyncOnWrite(enabled bool) FileOption {
	return func(cfg *fileConfig) {
		cfg.syncOnWrite = enabled
	}
}

// WithFilePerm sets the permission bits used when creating the file.
func WithFilePerm(perm os.FileMode) FileOption {
	return func(cfg *fileConfig) {
		cfg.perm = perm
	}
}

// CreateFileStore creates (or truncates) the file at path and returns an
// empty store backed by it.
func CreateFileStore(path string, opts ...FileOption) (*FileStore, error) {
	cfg := fileConfig{
		bufferSize: defaultFileBufferSize,
		perm:       0o600,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.bufferSize <= 0 {
		cfg.bufferSize = defaultFileBufferSize
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, cfg.perm) //nolint:gosec // path is chosen by the caller
	if err != nil {
		return nil, err
	}
	return &FileStore{
		f:           f,
		w:           bufio.NewWriterSize(f, cfg.bufferSize),
		syncOnWrite: cfg.syncOnWrite,
	}, nil
}

// Write appends p as a framed record and returns its ID.
func (s *FileStore) Write(p []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	var hdr [MaxHeaderLen]byte
	prefix := binary.AppendUvarint(hdr[:0], uint64(len(p)))
	if _, err := s.w.Write(prefix); err != nil {
		return nil, fmt.Errorf("write record header: %w", err)
	}
	if _, err := s.w.Write(p); err != nil {
		return nil, fmt.Errorf("write record payload: %w", err)
	}
	offset := s.size
	s.size += uint64(len(prefix) + len(p))

	if s.syncOnWrite {
		if err := s.syncLocked(); err != nil {
			return nil, err
		}
	}
	return EncodeID(offset), nil
}

// Read returns the payload written under id.
func (s *FileStore) Read(id []byte) ([]byte, error) {
	offset, err := DecodeID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if offset >= s.size {
		return nil, fmt.Errorf("%w: offset %d beyond log size %d", ErrCorruptFraming, offset, s.size)
	}
	if s.w.Buffered() > 0 {
		if err := s.w.Flush(); err != nil {
			return nil, err
		}
	}

	hdrLen := min(uint64(MaxHeaderLen), s.size-offset)
	hdr := make([]byte, hdrLen)
	if _, err := s.f.ReadAt(hdr, int64(offset)); err != nil && err != io.EOF { //nolint:gosec // offset < size
		return nil, err
	}
	size, n := decodeUvarint(hdr)
	if n <= 0 {
		return nil, fmt.Errorf("%w: bad length prefix at offset %d", ErrCorruptFraming, offset)
	}
	start := offset + uint64(n) //nolint:gosec // n > 0
	if size > s.size-start {
		return nil, fmt.Errorf("%w: record at offset %d declares %d bytes, %d remain", ErrCorruptFraming, offset, size, s.size-start)
	}
	payload := make([]byte, size)
	if size == 0 {
		return payload, nil
	}
	if _, err := s.f.ReadAt(payload, int64(start)); err != nil { //nolint:gosec // start < size
		return nil, err
	}
	return payload, nil
}

// Sync flushes buffered records and fsyncs the file.
func (s *FileStore) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.syncLocked()
}

func (s *FileStore) syncLocked() error {
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush store: %w", err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("sync store: %w", err)
	}
	return nil
}

// Len returns the size of the log in bytes, including unflushed records.
func (s *FileStore) Len() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Name returns the path of the backing file.
func (s *FileStore) Name() string {
	return s.f.Name()
}

// Close syncs and closes the backing file. Closing twice is a no-op.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	syncErr := s.syncLocked()
	if err := s.f.Close(); err != nil {
		return err
	}
	return syncErr
}

// Bytes returns a copy of the whole log as written so far.
func (s *FileStore) Bytes() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if err := s.w.Flush(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.NewSectionReader(s.f, 0, int64(s.size))); err != nil { //nolint:gosec // log size fits in int64
		return nil, err
	}
	return buf.Bytes(), nil
}
