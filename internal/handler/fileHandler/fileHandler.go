package fileHandler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"file-storage-service/internal/model/fileInfo"
	"file-storage-service/internal/model/user"
	"file-storage-service/internal/objectStore"
	"file-storage-service/internal/service/accessService"
	"file-storage-service/internal/service/fileService"
	"file-storage-service/pkg/logger"
	"file-storage-service/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxMemory = 32 << 20

type Access interface {
	ListFiles(ctx context.Context, requester user.Principal, owner string) ([]*fileInfo.File, error)
	GetFile(ctx context.Context, requester user.Principal, id uuid.UUID) (*fileInfo.File, error)
	OpenFileContent(ctx context.Context, requester user.Principal, id uuid.UUID) (*fileInfo.File, *objectStore.Object, error)
	ListHistory(ctx context.Context, requester user.Principal, id uuid.UUID) ([]*fileInfo.Revision, error)
	CreateFile(ctx context.Context, requester user.Principal, name string, r io.Reader, contentType string, size int64) (*fileInfo.File, error)
	RenameFile(ctx context.Context, requester user.Principal, id uuid.UUID, newName string) (*fileInfo.File, error)
	DeleteFile(ctx context.Context, requester user.Principal, id uuid.UUID) error
}

var _ Access = (*accessService.AccessService)(nil)

type FileHandler struct {
	access        Access
	maxUploadSize int64
}

// NewFileHandler returns the handler of /files. maxUploadSize <= 0 means no limit.
func NewFileHandler(access Access, maxUploadSize int64) *FileHandler {
	return &FileHandler{access: access, maxUploadSize: maxUploadSize}
}

// Routes mounts the file endpoints on r. Requests must already carry an
// authenticated principal.
func (h *FileHandler) Routes(r chi.Router) {
	r.Route("/files", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Upload)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Rename)
			r.Delete("/", h.Delete)
			r.Get("/view", h.View)
			r.Get("/download", h.Download)
			r.Get("/history", h.History)
		})
	})
}

type errorResponse struct {
	Error       string `json:"error"`
	OldKey      string `json:"old_key,omitempty"`
	NewKey      string `json:"new_key,omitempty"`
	NewKeyInUse bool   `json:"new_key_in_use,omitempty"`
}

type renameRequest struct {
	Name string `json:"name"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	switch accessService.Classify(err) {
	case accessService.KindNotFound:
		status = http.StatusNotFound
		resp.Error = "file not found"
	case accessService.KindBadRequest:
		status = http.StatusBadRequest
		if errors.Is(err, fileService.ErrConflict) {
			status = http.StatusConflict
		}
	case accessService.KindForbidden:
		status = http.StatusForbidden
	default:
		var partial *fileService.PartialFailureError
		if errors.As(err, &partial) {
			resp.OldKey, resp.NewKey, resp.NewKeyInUse = partial.OldKey, partial.NewKey, partial.NewKeyInUse
		}
		logger.GetLogger(r.Context()).Error("request failed", zap.Error(err))
		resp.Error = "internal server error"
		if partial != nil {
			resp.Error = "rename partially applied"
		}
	}
	writeJSON(w, status, resp)
}

func principal(w http.ResponseWriter, r *http.Request) (user.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
	}
	return p, ok
}

func fileID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid file id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	files, err := h.access.ListFiles(r.Context(), p, r.URL.Query().Get("owner"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := fileID(w, r)
	if !ok {
		return
	}
	file, err := h.access.GetFile(r.Context(), p, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

func (h *FileHandler) History(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := fileID(w, r)
	if !ok {
		return
	}
	revisions, err := h.access.ListHistory(r.Context(), p, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, revisions)
}

// Upload accepts a multipart form with the content in field "file". The
// stored name is form field "name" or, when absent, the uploaded file name.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if h.maxUploadSize > 0 {
		if r.ContentLength > h.maxUploadSize {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "file is too large"})
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "file is too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	content, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "form field \"file\" is required"})
		return
	}
	defer content.Close()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	file, err := h.access.CreateFile(r.Context(), p, name, content, header.Header.Get("Content-Type"), header.Size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, file)
}

func (h *FileHandler) Rename(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := fileID(w, r)
	if !ok {
		return
	}
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	file, err := h.access.RenameFile(r.Context(), p, id, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := fileID(w, r)
	if !ok {
		return
	}
	if err := h.access.DeleteFile(r.Context(), p, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FileHandler) View(w http.ResponseWriter, r *http.Request) {
	h.serveContent(w, r, "inline")
}

func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.serveContent(w, r, "attachment")
}

func (h *FileHandler) serveContent(w http.ResponseWriter, r *http.Request, disposition string) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := fileID(w, r)
	if !ok {
		return
	}
	file, obj, err := h.access.OpenFileContent(r.Context(), p, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = file.ContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": file.Name}))
	if obj.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		logger.GetLogger(r.Context()).Warn("content stream interrupted",
			zap.String("file_id", id.String()), zap.Error(err))
	}
}
