package storage

import (
	"context"
	"sync"
	"time"

	"github.com/sgi/backend/internal/domain/shared"
)

// MemoryReceiptStore keeps receipts in process memory. It backs local
// development when no bucket is configured, and tests.
type MemoryReceiptStore struct {
	mu      sync.RWMutex
	objects map[shared.ReceiptRef]memoryObject
	prefix  string
	now     func() time.Time
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryReceiptStore creates an empty store
func NewMemoryReceiptStore(prefix string) *MemoryReceiptStore {
	return &MemoryReceiptStore{
		objects: make(map[shared.ReceiptRef]memoryObject),
		prefix:  prefix,
		now:     time.Now,
	}
}

// Store saves a copy of data and returns its reference
func (s *MemoryReceiptStore) Store(_ context.Context, data []byte, contentType string) (shared.ReceiptRef, error) {
	ext, err := validateReceipt(data, contentType)
	if err != nil {
		return "", err
	}
	ref := shared.ReceiptRef(receiptKey(s.prefix, s.now(), ext))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[ref] = memoryObject{data: append([]byte(nil), data...), contentType: normalizeContentType(contentType)}
	return ref, nil
}

// Exists reports whether ref was stored
func (s *MemoryReceiptStore) Exists(_ context.Context, ref shared.ReceiptRef) (bool, error) {
	if !validRef(s.prefix, ref) {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[ref]
	return ok, nil
}

// Get returns the stored bytes and content type
func (s *MemoryReceiptStore) Get(_ context.Context, ref shared.ReceiptRef) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[ref]
	if !ok {
		return nil, "", shared.ErrNotFound
	}
	return obj.data, obj.contentType, nil
}

var _ shared.ReceiptStore = (*MemoryReceiptStore)(nil)
