// Package memstore implements an in-memory storage.Storage for tests.
package memstore

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/skillsenselab/osce-insight/internal/storage"
)

type object struct {
	data        []byte
	contentType string
	modified    time.Time
}

// Storage is a thread-safe in-memory object store.
type Storage struct {
	mu      sync.RWMutex
	objects map[string]object

	// FailUpload, when set, makes every Upload return this error.
	FailUpload error
	// FailDownload, when set, makes every Download return this error.
	FailDownload error
}

// New creates an empty in-memory storage.
func New() *Storage {
	return &Storage{objects: make(map[string]object)}
}

// Upload stores the reader's contents under path.
func (s *Storage) Upload(_ context.Context, path string, reader io.Reader, contentType string) error {
	if s.FailUpload != nil {
		return s.FailUpload
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = object{data: data, contentType: contentType, modified: time.Now()}
	return nil
}

// Download returns a reader over the stored object.
func (s *Storage) Download(_ context.Context, path string) (io.ReadCloser, error) {
	if s.FailDownload != nil {
		return nil, s.FailDownload
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[path]
	if !ok {
		return nil, fmt.Errorf("memstore: object not found: %s", path)
	}
	return io.NopCloser(strings.NewReader(string(obj.data))), nil
}

// Delete removes the object if present.
func (s *Storage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	return nil
}

// Exists reports whether an object is stored under path.
func (s *Storage) Exists(_ context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[path]
	return ok, nil
}

// List returns stored objects whose path starts with prefix, sorted by path.
func (s *Storage) List(_ context.Context, prefix string) ([]storage.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var files []storage.FileInfo
	for path, obj := range s.objects {
		if strings.HasPrefix(path, prefix) {
			files = append(files, storage.FileInfo{
				Path:         path,
				Size:         int64(len(obj.data)),
				LastModified: obj.modified,
			})
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Bytes returns the raw stored bytes for path, or nil if absent.
func (s *Storage) Bytes(path string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if obj, ok := s.objects[path]; ok {
		return obj.data
	}
	return nil
}

// ContentType returns the recorded content type for path.
func (s *Storage) ContentType(path string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[path].contentType
}

// SetModified overrides the recorded modification time for path.
func (s *Storage) SetModified(path string, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj, ok := s.objects[path]; ok {
		obj.modified = t
		s.objects[path] = obj
	}
}

// compile-time check
var _ storage.Storage = (*Storage)(nil)
