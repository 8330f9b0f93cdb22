package tasks

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tryonstudio/backend/internal/httpx"
	"github.com/tryonstudio/backend/internal/latency"
)

// MaxUploadBytes is the product photo size limit.
const MaxUploadBytes = 10 << 20

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

type UploadResponse struct {
	Ref      string `json:"ref"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// Upload handles POST /v1/uploads with a multipart "image" field. The bytes
// are discarded; the client gets an opaque ref to pass to CreateTask.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	// Allow some room for the multipart envelope on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.WriteMessage(w, http.StatusRequestEntityTooLarge, "image must be 10MB or smaller")
			return
		}
		httpx.WriteMessage(w, http.StatusBadRequest, "expected multipart form with an image field")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("image")
	if err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "image field is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExt[ext] {
		httpx.WriteMessage(w, http.StatusUnsupportedMediaType, "only JPG and PNG images are supported")
		return
	}
	if header.Size > MaxUploadBytes {
		httpx.WriteMessage(w, http.StatusRequestEntityTooLarge, "image must be 10MB or smaller")
		return
	}

	if err := latency.Wait(r.Context(), h.uploadLatency); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	ref := "upload://" + uuid.NewString() + ext
	h.log.Info("product image uploaded", "ref", ref, "size", header.Size)
	httpx.WriteJSON(w, http.StatusCreated, UploadResponse{Ref: ref, Filename: header.Filename, Size: header.Size})
}
