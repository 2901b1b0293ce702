// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"talenta/internal/storage"
)

// BlobStoreStub is an in-memory storage.BlobStore.
type BlobStoreStub struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string

	// PutErr and RemoveErr force failures when set.
	PutErr    error
	RemoveErr error
	Removed   []string
}

var _ storage.BlobStore = (*BlobStoreStub)(nil)

// NewBlobStoreStub creates an empty in-memory blob store.
func NewBlobStoreStub() *BlobStoreStub {
	return &BlobStoreStub{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (s *BlobStoreStub) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	if s.PutErr != nil {
		return "", s.PutErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.types[key] = contentType
	return s.PublicURL(key), nil
}

func (s *BlobStoreStub) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Removed = append(s.Removed, key)
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	if _, ok := s.objects[key]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(s.objects, key)
	delete(s.types, key)
	return nil
}

func (s *BlobStoreStub) PublicURL(key string) string {
	return "http://blobs.test/media/" + key
}

// Has reports whether key is stored.
func (s *BlobStoreStub) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

// ContentType returns the content type key was stored with.
func (s *BlobStoreStub) ContentType(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.types[key]
}

// Keys lists stored keys in order.
func (s *BlobStoreStub) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ErrStorageDown is a canned storage failure.
var ErrStorageDown = errors.New("storage unavailable")
