package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ObjectStore accepts a binary payload under a generated key and returns
// the path it can be retrieved from. Physical lifecycle of the stored
// object is outside this service.
type ObjectStore interface {
	Save(ctx context.Context, key string, r io.Reader) (string, error)
}

// LocalObjectStore writes uploads to a directory served statically by the
// HTTP layer. It stands in for a bucket store in single-node deployments.
type LocalObjectStore struct {
	dir     string
	baseURL string
}

// NewLocalObjectStore constructs a LocalObjectStore rooted at dir; returned
// paths are baseURL + "/" + key.
func NewLocalObjectStore(dir, baseURL string) *LocalObjectStore {
	return &LocalObjectStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalObjectStore) Save(_ context.Context, key string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return s.baseURL + "/" + key, nil
}

// UploadService generates storage keys and hands payloads to the object
// store. The clock is injected so key generation is deterministic in tests.
type UploadService struct {
	store ObjectStore
	now   func() time.Time
}

// NewUploadService constructs an UploadService. A nil clock defaults to
// time.Now.
func NewUploadService(store ObjectStore, now func() time.Time) *UploadService {
	if now == nil {
		now = time.Now
	}
	return &UploadService{store: store, now: now}
}

// StorageKey derives a unique object key from the original file name: base
// name, format suffix and creation timestamp, keeping the extension.
// "notes.pdf" becomes "notes-pdf-1712345678901.pdf".
func (s *UploadService) StorageKey(original string) string {
	base := filepath.Base(strings.TrimSpace(original))
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	format := strings.TrimPrefix(ext, ".")
	if name == "" {
		name = "file"
	}
	return fmt.Sprintf("%s-%s-%d%s", name, format, s.now().UnixMilli(), ext)
}

// Upload stores the payload under a freshly generated key and returns the
// key and its retrieval path.
func (s *UploadService) Upload(ctx context.Context, original string, r io.Reader) (key, path string, err error) {
	if strings.TrimSpace(original) == "" {
		return "", "", ErrValidation
	}
	key = s.StorageKey(original)
	path, err = s.store.Save(ctx, key, r)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return key, path, nil
}
