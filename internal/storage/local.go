package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/filedepot/filedepot/pkg/types"
)

// LocalBackend implements the Backend interface on the local filesystem.
// It has no CDN in front of it, so downloads always return a byte stream
// regardless of preferStream.
type LocalBackend struct {
	basePath string
}

// NewLocalBackend creates a new local filesystem backend
func NewLocalBackend(basePath string) (*LocalBackend, error) {
	// Ensure base path exists
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	return &LocalBackend{
		basePath: basePath,
	}, nil
}

// UploadFile stores the bytes read from data under name
func (l *LocalBackend) UploadFile(ctx context.Context, name string, data io.Reader) (types.RemoteFile, error) {
	fullPath := l.fullPath(name)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return types.RemoteFile{}, storageError("upload "+name, fmt.Errorf("failed to create directories: %w", err))
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return types.RemoteFile{}, storageError("upload "+name, fmt.Errorf("failed to create file: %w", err))
	}
	defer file.Close()

	if _, err := io.Copy(file, data); err != nil {
		return types.RemoteFile{}, storageError("upload "+name, fmt.Errorf("failed to write data: %w", err))
	}

	return types.LocalFile(name), nil
}

// DeleteFile removes the file stored under name
func (l *LocalBackend) DeleteFile(ctx context.Context, name string) error {
	if err := os.Remove(l.fullPath(name)); err != nil {
		return storageError("delete "+name, fmt.Errorf("failed to delete file: %w", err))
	}
	return nil
}

// DeleteFileDB removes the file behind a persisted reference
func (l *LocalBackend) DeleteFileDB(ctx context.Context, file types.RemoteFile) error {
	if file.Backend != types.BackendLocal {
		return storageError("delete", ErrUnknownReference)
	}
	return l.DeleteFile(ctx, file.Key)
}

// DownloadFile opens the file stored under name. The stream reads straight
// from disk, so both preferStream modes return a Body.
func (l *LocalBackend) DownloadFile(ctx context.Context, name string, preferStream bool) (*Download, error) {
	file, err := os.Open(l.fullPath(name))
	if err != nil {
		return nil, storageError("download "+name, fmt.Errorf("failed to open file: %w", err))
	}
	return &Download{Body: file}, nil
}

// DownloadFileDB fetches the file behind a persisted reference
func (l *LocalBackend) DownloadFileDB(ctx context.Context, file types.RemoteFile, preferStream bool) (*Download, error) {
	if file.Backend != types.BackendLocal {
		return nil, storageError("download", ErrUnknownReference)
	}
	return l.DownloadFile(ctx, file.Key, preferStream)
}

// MakeDBReference builds the persistable reference for name. No I/O.
func (l *LocalBackend) MakeDBReference(name string) types.RemoteFile {
	return types.LocalFile(name)
}

// Close cleans up any resources
func (l *LocalBackend) Close() error {
	// No cleanup needed for the local backend
	return nil
}

// fullPath returns the full filesystem path for a stored name
func (l *LocalBackend) fullPath(name string) string {
	return filepath.Join(l.basePath, name)
}
