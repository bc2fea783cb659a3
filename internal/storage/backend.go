package storage

import (
	"context"
	"io"

	"github.com/filedepot/filedepot/pkg/types"
)

// Backend defines the interface for remote file storage backends
type Backend interface {
	// UploadFile stores the bytes read from data under the given name and
	// returns a reference that can be persisted in the database
	UploadFile(ctx context.Context, name string, data io.Reader) (types.RemoteFile, error)

	// DeleteFile removes the file stored under the given name
	DeleteFile(ctx context.Context, name string) error

	// DeleteFileDB removes the file behind a persisted reference. Backends
	// reject references tagged for a different backend.
	DeleteFileDB(ctx context.Context, file types.RemoteFile) error

	// DownloadFile fetches the file stored under the given name. When
	// preferStream is true the result carries a byte stream; otherwise the
	// backend may hand out a URL the caller can redirect to instead.
	DownloadFile(ctx context.Context, name string, preferStream bool) (*Download, error)

	// DownloadFileDB fetches the file behind a persisted reference, with
	// the same tag check as DeleteFileDB.
	DownloadFileDB(ctx context.Context, file types.RemoteFile, preferStream bool) (*Download, error)

	// MakeDBReference builds the persistable reference for a file already
	// known to live in this backend. Performs no I/O.
	MakeDBReference(name string) types.RemoteFile

	// Close cleans up any resources
	Close() error
}

// Download is the result of a download request: either a byte stream the
// caller must consume and close, or a URL the caller may redirect the
// client to. Exactly one of the two is set.
//
// A non-nil Body makes no promise about buffering: some backends stream
// straight from the origin, others materialize the object in memory first.
type Download struct {
	Body io.ReadCloser
	URL  string
}
