package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageKey(t *testing.T) {
	at := time.UnixMilli(1712345678901)
	svc := NewUploadService(nil, func() time.Time { return at })

	tests := []struct {
		name     string
		original string
		want     string
	}{
		{"regular file", "notes.pdf", "notes-pdf-1712345678901.pdf"},
		{"image", "avatar.png", "avatar-png-1712345678901.png"},
		{"no extension", "README", "README--1712345678901"},
		{"path is stripped", "../../etc/passwd.txt", "passwd-txt-1712345678901.txt"},
		{"blank name falls back", ".env", "file-env-1712345678901.env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.StorageKey(tt.original))
		})
	}
}

func TestUploadWritesThroughStore(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalObjectStore(dir, "/uploads/")
	at := time.UnixMilli(1712345678901)
	svc := NewUploadService(store, func() time.Time { return at })

	key, path, err := svc.Upload(context.Background(), "notes.pdf", strings.NewReader("payload"))
	require.NoError(t, err)
	assert.Equal(t, "notes-pdf-1712345678901.pdf", key)
	assert.Equal(t, "/uploads/notes-pdf-1712345678901.pdf", path)

	data, err := os.ReadFile(filepath.Join(dir, key))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestUploadRejectsBlankName(t *testing.T) {
	svc := NewUploadService(NewLocalObjectStore(t.TempDir(), "/uploads"), nil)
	_, _, err := svc.Upload(context.Background(), "   ", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrValidation)
}
