package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	catalogapp "github.com/chiclet/backend/internal/application/catalog"
)

var _ catalogapp.ImageStorage = (*StubObjectStorage)(nil)

// StubObjectStorage is used when no bucket is configured. Upload URLs point
// at BaseURL and uploaded documents are kept in memory.
type StubObjectStorage struct {
	BaseURL string

	mu      sync.Mutex
	objects map[string][]byte
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage(baseURL string) *StubObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost:8080/static"
	}
	return &StubObjectStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string][]byte),
	}
}

// GenerateUploadURL returns a fake presigned URL
func (s *StubObjectStorage) GenerateUploadURL(_ context.Context, key, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrEmptyKey
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/upload/" + key + "?expires=" + expiresAt.UTC().Format(time.RFC3339), expiresAt, nil
}

// PublicURL returns the public URL for key
func (s *StubObjectStorage) PublicURL(key string) string {
	return s.BaseURL + "/" + strings.TrimLeft(key, "/")
}

// DeleteObject drops a stored object if present
func (s *StubObjectStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// Upload keeps data in memory
func (s *StubObjectStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	s.objects[key] = append([]byte(nil), data...)
	s.mu.Unlock()
	return nil
}

// Object returns a stored object
func (s *StubObjectStorage) Object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}
