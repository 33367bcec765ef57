package services

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"
	"sync"
)

// MemoryStorage keeps objects in process; selected with STORAGE_DRIVER=memory
type MemoryStorage struct {
	mu      sync.RWMutex
	exists  bool
	objects map[string]memoryObject
	baseURL string
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryStorage returns an empty store; bucketExists mimics an already provisioned bucket
func NewMemoryStorage(baseURL string, bucketExists bool) *MemoryStorage {
	return &MemoryStorage{
		exists:  bucketExists,
		objects: make(map[string]memoryObject),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (m *MemoryStorage) BucketExists(context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.exists, nil
}

func (m *MemoryStorage) EnsureBucket(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.exists {
		return false, nil
	}
	m.exists = true
	return true, nil
}

func (m *MemoryStorage) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return ErrBucketNotFound
	}
	m.objects[key] = memoryObject{data: data, contentType: contentType}
	return nil
}

func (m *MemoryStorage) Get(_ context.Context, key string) (*Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.exists {
		return nil, ErrBucketNotFound
	}
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return &Object{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
	}, nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryStorage) PublicURL(key string) string {
	return m.baseURL + "/" + (&url.URL{Path: key}).EscapedPath()
}

// Has reports whether key is stored
func (m *MemoryStorage) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}
