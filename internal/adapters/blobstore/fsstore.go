package blobstore

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// FSStore implements Store on the local filesystem. Object keys map to file
// paths under the root directory; namespaces are directories. Writes are
// atomic (temp file + rename) so a concurrent read never observes a partial
// record.
type FSStore struct {
	root     string
	pageSize int
}

// NewFSStore creates a filesystem-backed store rooted at root.
func NewFSStore(root string, opts ...Option) (*FSStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("%w: empty root directory", ErrInvalidKey)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	s := newSettings(opts...)
	return &FSStore{
		root:     root,
		pageSize: s.pageSize,
	}, nil
}

// resolve maps a slash-separated object key to a path under the root,
// rejecting keys that would escape it.
func (f *FSStore) resolve(key string) (string, error) {
	cleaned := path.Clean("/" + key)
	if cleaned == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(f.root, filepath.FromSlash(strings.TrimPrefix(cleaned, "/"))), nil
}

// Put writes data under key, overwriting any previous content.
func (f *FSStore) Put(ctx context.Context, key string, data []byte) error {
	p, err := f.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create namespace dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".put-*")
	if err != nil {
		return fmt.Errorf("create temp object: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("commit object: %w", err)
	}
	return nil
}

// Get returns the content stored under key.
func (f *FSStore) Get(ctx context.Context, key string) ([]byte, error) {
	p, err := f.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
		}
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

// List returns one sorted page of objects under prefix. The cursor is the
// last object name of the previous page; a missing namespace lists empty.
func (f *FSStore) List(ctx context.Context, prefix string, cursor string) (Page, error) {
	dir, err := f.resolve(prefix)
	if err != nil {
		return Page{}, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Page{}, nil
		}
		return Page{}, fmt.Errorf("list namespace: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if cursor != "" && e.Name() <= cursor {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	page := Page{}
	for _, name := range names {
		if len(page.Entries) == f.pageSize {
			page.HasMore = true
			break
		}
		page.Entries = append(page.Entries, ObjectInfo{
			Key:  path.Join(prefix, name),
			Name: name,
		})
	}
	if n := len(page.Entries); n > 0 && page.HasMore {
		page.NextCursor = page.Entries[n-1].Name
	}
	return page, nil
}
