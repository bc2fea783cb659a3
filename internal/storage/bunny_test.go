package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/filedepot/filedepot/pkg/types"
)

// recordedRequest captures what the mock Bunny server received
type recordedRequest struct {
	Method    string
	Path      string
	AccessKey string
	Body      []byte
}

// bunnyMock is a mock Bunny Storage + CDN server. Paths under /cdn are
// served as CDN reads; everything else is treated as the storage API.
type bunnyMock struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	cdnBody  []byte
}

func (m *bunnyMock) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		m.mu.Lock()
		m.requests = append(m.requests, recordedRequest{
			Method:    r.Method,
			Path:      r.URL.Path,
			AccessKey: r.Header.Get("AccessKey"),
			Body:      body,
		})
		m.mu.Unlock()

		if m.status != 0 {
			w.WriteHeader(m.status)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/cdn/") {
			w.Write(m.cdnBody)
		}
	}
}

func (m *bunnyMock) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func newTestBackend(t *testing.T, mock *bunnyMock) (*BunnyBackend, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(mock.handler())
	t.Cleanup(ts.Close)

	backend, err := NewBunnyBackend(types.BunnyStorageOpts{
		Bucket:      "b",
		APIEndpoint: ts.URL,
		CDNEndpoint: ts.URL + "/cdn",
		AccessKey:   "K",
	})
	if err != nil {
		t.Fatalf("Failed to create bunny backend: %v", err)
	}
	return backend, ts
}

func TestBunnyBackendUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock := &bunnyMock{}
		backend, _ := newTestBackend(t, mock)

		file, err := backend.UploadFile(ctx, "a.txt", bytes.NewReader([]byte("hello")))
		if err != nil {
			t.Fatalf("Failed to upload: %v", err)
		}

		want := types.RemoteFile{Backend: types.BackendBunny, Key: "a.txt"}
		if file != want {
			t.Errorf("Expected reference %+v, got %+v", want, file)
		}

		if mock.count() != 1 {
			t.Fatalf("Expected 1 request, got %d", mock.count())
		}
		req := mock.requests[0]
		if req.Method != http.MethodPut {
			t.Errorf("Expected PUT, got %s", req.Method)
		}
		if req.Path != "/b/a.txt" {
			t.Errorf("Expected path /b/a.txt, got %s", req.Path)
		}
		if req.AccessKey != "K" {
			t.Errorf("Expected AccessKey header 'K', got '%s'", req.AccessKey)
		}
		if !bytes.Equal(req.Body, []byte("hello")) {
			t.Errorf("Expected body 'hello', got '%s'", req.Body)
		}
	})

	t.Run("RemoteRejection", func(t *testing.T) {
		mock := &bunnyMock{status: http.StatusForbidden}
		backend, _ := newTestBackend(t, mock)

		_, err := backend.UploadFile(ctx, "a.txt", bytes.NewReader([]byte("hello")))
		if err == nil {
			t.Fatal("Expected error for 403 response")
		}
		var serr *StorageError
		if !errors.As(err, &serr) {
			t.Errorf("Expected a StorageError, got %T: %v", err, err)
		}
	})

	t.Run("SourceReadFailure", func(t *testing.T) {
		mock := &bunnyMock{}
		backend, _ := newTestBackend(t, mock)

		_, err := backend.UploadFile(ctx, "a.txt", &failingReader{})
		if err == nil {
			t.Fatal("Expected error for failing source")
		}
		var serr *StorageError
		if !errors.As(err, &serr) {
			t.Errorf("Expected a StorageError, got %T: %v", err, err)
		}
		if mock.count() != 0 {
			t.Errorf("Expected no request after source failure, got %d", mock.count())
		}
	})
}

func TestBunnyBackendDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock := &bunnyMock{}
		backend, _ := newTestBackend(t, mock)

		if err := backend.DeleteFile(ctx, "a.txt"); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}

		if mock.count() != 1 {
			t.Fatalf("Expected 1 request, got %d", mock.count())
		}
		req := mock.requests[0]
		if req.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", req.Method)
		}
		if req.Path != "/b/a.txt" {
			t.Errorf("Expected path /b/a.txt, got %s", req.Path)
		}
		if req.AccessKey != "K" {
			t.Errorf("Expected AccessKey header 'K', got '%s'", req.AccessKey)
		}
	})

	t.Run("RemoteRejection", func(t *testing.T) {
		mock := &bunnyMock{status: http.StatusNotFound}
		backend, _ := newTestBackend(t, mock)

		if err := backend.DeleteFile(ctx, "a.txt"); err == nil {
			t.Fatal("Expected error for 404 response")
		}
	})
}

func TestBunnyBackendDownload(t *testing.T) {
	ctx := context.Background()

	t.Run("Stream", func(t *testing.T) {
		mock := &bunnyMock{cdnBody: []byte("xyz")}
		backend, _ := newTestBackend(t, mock)

		dl, err := backend.DownloadFile(ctx, "a.txt", true)
		if err != nil {
			t.Fatalf("Failed to download: %v", err)
		}
		if dl.Body == nil {
			t.Fatal("Expected a body stream")
		}
		defer dl.Body.Close()

		data, err := io.ReadAll(dl.Body)
		if err != nil {
			t.Fatalf("Failed to read body: %v", err)
		}
		if !bytes.Equal(data, []byte("xyz")) {
			t.Errorf("Expected body 'xyz', got '%s'", data)
		}

		req := mock.requests[0]
		if req.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", req.Method)
		}
		if req.Path != "/cdn/a.txt" {
			t.Errorf("Expected path /cdn/a.txt, got %s", req.Path)
		}
		if req.AccessKey != "" {
			t.Errorf("CDN read must not carry the access key, got '%s'", req.AccessKey)
		}
	})

	t.Run("URL", func(t *testing.T) {
		mock := &bunnyMock{}
		backend, ts := newTestBackend(t, mock)

		dl, err := backend.DownloadFile(ctx, "a.txt", false)
		if err != nil {
			t.Fatalf("Failed to download: %v", err)
		}
		if dl.Body != nil {
			t.Error("Expected no body stream in URL mode")
		}
		if dl.URL != ts.URL+"/cdn/a.txt" {
			t.Errorf("Expected URL %s/cdn/a.txt, got %s", ts.URL, dl.URL)
		}
		if mock.count() != 0 {
			t.Errorf("URL mode must perform no request, got %d", mock.count())
		}
	})

	t.Run("StreamRemoteRejection", func(t *testing.T) {
		mock := &bunnyMock{status: http.StatusNotFound}
		backend, _ := newTestBackend(t, mock)

		if _, err := backend.DownloadFile(ctx, "a.txt", true); err == nil {
			t.Fatal("Expected error for 404 response")
		}
	})
}

func TestBunnyBackendReferenceTagMismatch(t *testing.T) {
	ctx := context.Background()
	mock := &bunnyMock{}
	backend, _ := newTestBackend(t, mock)

	ref := types.RemoteFile{Backend: types.BackendLocal, Key: "a.txt"}

	t.Run("DeleteFileDB", func(t *testing.T) {
		err := backend.DeleteFileDB(ctx, ref)
		if err == nil {
			t.Fatal("Expected error for non-bunny reference")
		}
		if !errors.Is(err, ErrUnknownReference) {
			t.Errorf("Expected ErrUnknownReference, got: %v", err)
		}
		if !strings.Contains(err.Error(), "does not understand the remote file reference") {
			t.Errorf("Unexpected error text: %v", err)
		}
	})

	t.Run("DownloadFileDB", func(t *testing.T) {
		_, err := backend.DownloadFileDB(ctx, ref, true)
		if err == nil {
			t.Fatal("Expected error for non-bunny reference")
		}
		if !errors.Is(err, ErrUnknownReference) {
			t.Errorf("Expected ErrUnknownReference, got: %v", err)
		}
	})

	if mock.count() != 0 {
		t.Errorf("Tag mismatch must perform no request, got %d", mock.count())
	}
}

func TestBunnyBackendDBVariants(t *testing.T) {
	ctx := context.Background()
	mock := &bunnyMock{cdnBody: []byte("data")}
	backend, _ := newTestBackend(t, mock)

	ref := backend.MakeDBReference("dir/file.bin")
	want := types.RemoteFile{Backend: types.BackendBunny, Key: "dir/file.bin"}
	if ref != want {
		t.Fatalf("Expected reference %+v, got %+v", want, ref)
	}

	t.Run("DownloadFileDB", func(t *testing.T) {
		dl, err := backend.DownloadFileDB(ctx, ref, true)
		if err != nil {
			t.Fatalf("Failed to download: %v", err)
		}
		defer dl.Body.Close()
		if mock.requests[len(mock.requests)-1].Path != "/cdn/dir/file.bin" {
			t.Errorf("Unexpected CDN path: %s", mock.requests[len(mock.requests)-1].Path)
		}
	})

	t.Run("DeleteFileDB", func(t *testing.T) {
		if err := backend.DeleteFileDB(ctx, ref); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if mock.requests[len(mock.requests)-1].Path != "/b/dir/file.bin" {
			t.Errorf("Unexpected API path: %s", mock.requests[len(mock.requests)-1].Path)
		}
	})
}

// failingReader always fails, standing in for a broken upload source
type failingReader struct{}

func (f *failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("source broke")
}
