package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/filedepot/filedepot/internal/files"
	"github.com/filedepot/filedepot/internal/storage"
)

// FileHandler exposes the upload/download/delete HTTP surface on top of a
// storage backend and the reference repository
type FileHandler struct {
	backend storage.Backend
	repo    *files.Repository
}

// NewFileHandler creates a new file handler
func NewFileHandler(backend storage.Backend, repo *files.Repository) *FileHandler {
	return &FileHandler{
		backend: backend,
		repo:    repo,
	}
}

// RegisterRoutes attaches the file endpoints to the router
func (h *FileHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/files", h.UploadFile).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/files", h.ListFiles).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/files/{name}", h.DownloadFile).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/files/{name}", h.DeleteFile).Methods(http.MethodDelete)
}

// UploadFile handles POST /api/v1/files with a multipart "file" field.
// The object key is <uuid>-<filename> so concurrent uploads of the same
// filename never collide in the bucket.
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := sanitizeFilename(header.Filename)
	key := fmt.Sprintf("%s-%s", uuid.New().String(), name)

	ref, err := h.backend.UploadFile(r.Context(), key, file)
	if err != nil {
		log.Printf("[api] upload %s failed: %v", name, err)
		writeStorageError(w, err)
		return
	}

	rec := files.Record{
		Name:       name,
		File:       ref,
		Size:       header.Size,
		UploadedAt: time.Now().UTC(),
	}
	if err := h.repo.Save(r.Context(), rec); err != nil {
		log.Printf("[api] saving reference for %s failed: %v", name, err)
		http.Error(w, "failed to save file reference", http.StatusInternalServerError)
		return
	}

	log.Printf("[api] uploaded %s (%d bytes) to %s", name, header.Size, ref.Backend)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(rec)
}

// ListFiles handles GET /api/v1/files
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.List(r.Context())
	if err != nil {
		log.Printf("[api] list failed: %v", err)
		http.Error(w, "failed to list files", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// DownloadFile handles GET /api/v1/files/{name}. By default the backend
// may answer with a redirect to its CDN; ?proxy=true forces the server to
// stream the bytes itself.
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	rec, err := h.repo.Get(r.Context(), name)
	if err != nil {
		log.Printf("[api] lookup %s failed: %v", name, err)
		http.Error(w, "failed to look up file", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	preferStream := r.URL.Query().Get("proxy") == "true"
	dl, err := h.backend.DownloadFileDB(r.Context(), rec.File, preferStream)
	if err != nil {
		log.Printf("[api] download %s failed: %v", name, err)
		writeStorageError(w, err)
		return
	}

	if dl.URL != "" {
		http.Redirect(w, r, dl.URL, http.StatusFound)
		return
	}

	defer dl.Body.Close()
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.Name))
	if _, err := io.Copy(w, dl.Body); err != nil {
		log.Printf("[api] streaming %s failed: %v", name, err)
	}
}

// DeleteFile handles DELETE /api/v1/files/{name}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	rec, err := h.repo.Get(r.Context(), name)
	if err != nil {
		log.Printf("[api] lookup %s failed: %v", name, err)
		http.Error(w, "failed to look up file", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	if err := h.backend.DeleteFileDB(r.Context(), rec.File); err != nil {
		log.Printf("[api] delete %s failed: %v", name, err)
		writeStorageError(w, err)
		return
	}

	if err := h.repo.Delete(r.Context(), name); err != nil {
		log.Printf("[api] removing reference for %s failed: %v", name, err)
		http.Error(w, "failed to remove file reference", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeStorageError maps backend failures to a 502: the remote store, not
// this server, rejected the operation
func writeStorageError(w http.ResponseWriter, err error) {
	var serr *storage.StorageError
	if errors.As(err, &serr) {
		http.Error(w, "storage backend error", http.StatusBadGateway)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// sanitizeFilename reduces a client-supplied filename to a single safe
// path segment
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}
