package store

import (
	"bytes"
	"sync"
)

// MemStore is a BlobStore backed by an in-memory log.
//
// The log is guarded by a single mutex held for the duration of each Write
// and Read, so a length prefix and its payload are always appended as a unit.
// The zero value is an empty store ready for use.
type MemStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Write appends p as a framed record and returns its ID.
func (s *MemStore) Write(p []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	offset := uint64(len(s.data))
	s.data = AppendRecord(s.data, p)
	return EncodeID(offset), nil
}

// Read returns a copy of the payload written under id.
func (s *MemStore) Read(id []byte) ([]byte, error) {
	offset, err := DecodeID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, err := DecodeRecord(s.data, offset)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(payload), nil
}

// Sync is a no-op for the in-memory store.
func (s *MemStore) Sync() error {
	return nil
}

// Len returns the size of the log in bytes.
func (s *MemStore) Len() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint64(len(s.data))
}

// Bytes returns a copy of the whole log.
func (s *MemStore) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.data)
}
