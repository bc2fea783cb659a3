package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/filedepot/filedepot/pkg/types"
)

// BunnyBackend implements the Backend interface on top of Bunny Storage.
// Mutations go to the storage API authenticated with the AccessKey header;
// downloads go through the CDN pull zone without credentials.
//
// The backend is stateless beyond its config and HTTP client and is safe
// for concurrent use.
type BunnyBackend struct {
	client *http.Client
	config types.BunnyStorageOpts
}

// NewBunnyBackend creates a new Bunny Storage backend
func NewBunnyBackend(opts types.BunnyStorageOpts) (*BunnyBackend, error) {
	return &BunnyBackend{
		client: &http.Client{
			Timeout: 300 * time.Second,
		},
		config: opts,
	}, nil
}

// UploadFile stores data under name in the storage zone.
//
// The source is drained into memory before the PUT is issued; this backend
// does not chunk. Callers must not hand it objects larger than their
// memory budget.
func (b *BunnyBackend) UploadFile(ctx context.Context, name string, data io.Reader) (types.RemoteFile, error) {
	body, err := io.ReadAll(data)
	if err != nil {
		return types.RemoteFile{}, storageError("upload "+name, fmt.Errorf("failed to read source: %w", err))
	}

	url := fmt.Sprintf("%s/%s/%s", b.config.APIEndpoint, b.config.Bucket, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return types.RemoteFile{}, storageError("upload "+name, err)
	}
	req.Header.Set("AccessKey", b.config.AccessKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return types.RemoteFile{}, storageError("upload "+name, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return types.RemoteFile{}, storageError("upload "+name, err)
	}

	return types.BunnyFile(name), nil
}

// DeleteFile removes the file stored under name from the storage zone
func (b *BunnyBackend) DeleteFile(ctx context.Context, name string) error {
	url := fmt.Sprintf("%s/%s/%s", b.config.APIEndpoint, b.config.Bucket, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return storageError("delete "+name, err)
	}
	req.Header.Set("AccessKey", b.config.AccessKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return storageError("delete "+name, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return storageError("delete "+name, err)
	}

	log.Printf("[storage-bunny] delete %s -> %s", name, resp.Status)

	return nil
}

// DeleteFileDB removes the file behind a persisted reference
func (b *BunnyBackend) DeleteFileDB(ctx context.Context, file types.RemoteFile) error {
	if file.Backend != types.BackendBunny {
		return storageError("delete", ErrUnknownReference)
	}
	return b.DeleteFile(ctx, file.Key)
}

// DownloadFile fetches name from the CDN pull zone.
//
// With preferStream the response body is read into memory and returned as
// a stream; without it no request is made and the caller gets the CDN URL
// to redirect to. CDN reads carry no credentials.
func (b *BunnyBackend) DownloadFile(ctx context.Context, name string, preferStream bool) (*Download, error) {
	url := fmt.Sprintf("%s/%s", b.config.CDNEndpoint, name)
	if !preferStream {
		return &Download{URL: url}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, storageError("download "+name, err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, storageError("download "+name, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, storageError("download "+name, err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, storageError("download "+name, fmt.Errorf("failed to read response: %w", err))
	}

	return &Download{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

// DownloadFileDB fetches the file behind a persisted reference
func (b *BunnyBackend) DownloadFileDB(ctx context.Context, file types.RemoteFile, preferStream bool) (*Download, error) {
	if file.Backend != types.BackendBunny {
		return nil, storageError("download", ErrUnknownReference)
	}
	return b.DownloadFile(ctx, file.Key, preferStream)
}

// MakeDBReference builds the persistable reference for name. No I/O.
func (b *BunnyBackend) MakeDBReference(name string) types.RemoteFile {
	return types.BunnyFile(name)
}

// Close cleans up any resources
func (b *BunnyBackend) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

// checkStatus returns an error for any non-2xx response, keeping a
// truncated body excerpt for diagnostics
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if len(excerpt) > 0 {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, excerpt)
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode)
}
