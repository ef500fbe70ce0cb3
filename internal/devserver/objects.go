package devserver

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
)

// ErrObjectNotFound is returned when an upload has not arrived yet.
var ErrObjectNotFound = errors.New("object not found")

// Objects stores uploaded document bytes.
type Objects interface {
	// UploadURL returns the URL the client PUTs the bytes of key to.
	UploadURL(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// MemoryObjects keeps uploads in memory and receives them on the server's
// own /objects route.
type MemoryObjects struct {
	publicURL string

	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryObjects issues upload URLs under publicURL.
func NewMemoryObjects(publicURL string) *MemoryObjects {
	return &MemoryObjects{publicURL: strings.TrimRight(publicURL, "/"), data: map[string][]byte{}}
}

func (m *MemoryObjects) UploadURL(_ context.Context, key string) (string, error) {
	return m.publicURL + "/objects/" + url.PathEscape(key), nil
}

func (m *MemoryObjects) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryObjects) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *MemoryObjects) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok, nil
}
