package blobstore

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

// MemoryStore implements Store with an in-process map. It backs tests and
// local runs that do not need durability; the pagination contract matches
// the filesystem store so the Loader exercises the same code path.
type MemoryStore struct {
	mu       sync.RWMutex
	objects  map[string][]byte
	pageSize int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := newSettings(opts...)
	return &MemoryStore{
		objects:  make(map[string][]byte),
		pageSize: s.pageSize,
	}
}

// Put writes data under key, overwriting any previous content.
func (m *MemoryStore) Put(ctx context.Context, key string, data []byte) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	cp := make([]byte, len(data))
	copy(cp, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = cp
	return nil
}

// Get returns the content stored under key.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// List returns one sorted page of objects whose key sits directly under
// prefix. Cursor semantics match FSStore.
func (m *MemoryStore) List(ctx context.Context, prefix string, cursor string) (Page, error) {
	m.mu.RLock()
	names := make([]string, 0, len(m.objects))
	cleaned := strings.Trim(path.Clean("/"+prefix), "/")
	for key := range m.objects {
		dir, name := path.Split(key)
		if strings.Trim(path.Clean("/"+dir), "/") != cleaned {
			continue
		}
		if cursor != "" && name <= cursor {
			continue
		}
		names = append(names, name)
	}
	m.mu.RUnlock()
	sort.Strings(names)

	page := Page{}
	for _, name := range names {
		if len(page.Entries) == m.pageSize {
			page.HasMore = true
			break
		}
		page.Entries = append(page.Entries, ObjectInfo{
			Key:  path.Join(cleaned, name),
			Name: name,
		})
	}
	if n := len(page.Entries); n > 0 && page.HasMore {
		page.NextCursor = page.Entries[n-1].Name
	}
	return page, nil
}
