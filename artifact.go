package wavedit

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownHandle is returned for handles a Store never issued or already
// released.
var ErrUnknownHandle = errors.New("unknown artifact handle")

// Handle is an opaque reference to a stored artifact, comparable to an
// object URL.
type Handle string

// Store packages WAV bytes into handles that can be played back or
// downloaded, and releases them when they are no longer reachable.
type Store interface {
	Put(data WAV) (Handle, error)
	Get(h Handle) (WAV, error)
	Release(h Handle) error
}

// MemoryStore is an in-memory Store issuing "blob:<uuid>" handles.
// It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[Handle]WAV
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[Handle]WAV)}
}

// Put stores data under a fresh handle. The store keeps a reference to data,
// callers must not modify it afterwards.
func (s *MemoryStore) Put(data WAV) (Handle, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate artifact handle: %w", err)
	}

	h := Handle("blob:" + id.String())

	s.mu.Lock()
	s.blobs[h] = data
	s.mu.Unlock()

	return h, nil
}

// Get returns the bytes stored under h.
func (s *MemoryStore) Get(h Handle) (WAV, error) {
	s.mu.RLock()
	data, ok := s.blobs[h]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}

	return data, nil
}

// Release drops the bytes stored under h.
func (s *MemoryStore) Release(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[h]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}

	delete(s.blobs, h)

	return nil
}

// Len returns the number of live artifacts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.blobs)
}
