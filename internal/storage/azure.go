package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/filedepot/filedepot/pkg/types"
)

// AzureBackend implements the Backend interface on Azure Blob Storage.
// When a CDN base URL is configured, non-stream downloads hand out the
// CDN URL instead of proxying bytes.
type AzureBackend struct {
	containerClient *container.Client
	cdnBaseURL      string
}

// NewAzureBackend creates a new Azure Blob backend
func NewAzureBackend(opts types.AzureStorageOpts) (*AzureBackend, error) {
	cred, err := azblob.NewSharedKeyCredential(opts.AccountName, opts.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to build credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", opts.AccountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &AzureBackend{
		containerClient: client.ServiceClient().NewContainerClient(opts.Container),
		cdnBaseURL:      opts.CDNBaseURL,
	}, nil
}

// UploadFile streams the bytes read from data into a block blob
func (a *AzureBackend) UploadFile(ctx context.Context, name string, data io.Reader) (types.RemoteFile, error) {
	blob := a.containerClient.NewBlockBlobClient(name)
	if _, err := blob.UploadStream(ctx, data, &blockblob.UploadStreamOptions{}); err != nil {
		return types.RemoteFile{}, storageError("upload "+name, err)
	}
	return types.AzureFile(name), nil
}

// DeleteFile removes the blob stored under name
func (a *AzureBackend) DeleteFile(ctx context.Context, name string) error {
	blob := a.containerClient.NewBlobClient(name)
	if _, err := blob.Delete(ctx, nil); err != nil {
		return storageError("delete "+name, err)
	}
	return nil
}

// DeleteFileDB removes the blob behind a persisted reference
func (a *AzureBackend) DeleteFileDB(ctx context.Context, file types.RemoteFile) error {
	if file.Backend != types.BackendAzure {
		return storageError("delete", ErrUnknownReference)
	}
	return a.DeleteFile(ctx, file.Key)
}

// DownloadFile fetches the blob stored under name. Without preferStream
// and with a CDN configured, the caller gets the CDN URL to redirect to.
func (a *AzureBackend) DownloadFile(ctx context.Context, name string, preferStream bool) (*Download, error) {
	if !preferStream && a.cdnBaseURL != "" {
		return &Download{URL: fmt.Sprintf("%s/%s", a.cdnBaseURL, name)}, nil
	}

	blob := a.containerClient.NewBlockBlobClient(name)
	resp, err := blob.DownloadStream(ctx, nil)
	if err != nil {
		return nil, storageError("download "+name, err)
	}
	return &Download{Body: resp.Body}, nil
}

// DownloadFileDB fetches the blob behind a persisted reference
func (a *AzureBackend) DownloadFileDB(ctx context.Context, file types.RemoteFile, preferStream bool) (*Download, error) {
	if file.Backend != types.BackendAzure {
		return nil, storageError("download", ErrUnknownReference)
	}
	return a.DownloadFile(ctx, file.Key, preferStream)
}

// MakeDBReference builds the persistable reference for name. No I/O.
func (a *AzureBackend) MakeDBReference(name string) types.RemoteFile {
	return types.AzureFile(name)
}

// Close cleans up any resources
func (a *AzureBackend) Close() error {
	// No cleanup needed for the Azure backend
	return nil
}
