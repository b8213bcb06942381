package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/wonny/salesdesk/backend/internal/ingest"
	"github.com/wonny/salesdesk/backend/pkg/logger"
)

// multipartMemory is the part of a multipart body kept in memory before
// spilling to temp files
const multipartMemory = 8 << 20

// Ingester stores one uploaded file as a new dataset version
type Ingester interface {
	Ingest(ctx context.Context, filename string, r io.Reader) (*ingest.Result, error)
}

// Warmer precomputes reports for a freshly stored version
type Warmer interface {
	Warm(ctx context.Context, version string) (string, error)
}

// UploadHandler handles file uploads
// ⭐ SSOT: 업로드 API 핸들러는 이 구조체에서만
type UploadHandler struct {
	ingester Ingester
	reports  Warmer
	maxBytes int64
	logger   *logger.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(ing Ingester, reports Warmer, maxBytes int64, log *logger.Logger) *UploadHandler {
	return &UploadHandler{
		ingester: ing,
		reports:  reports,
		maxBytes: maxBytes,
		logger:   log,
	}
}

// UploadResponse is returned for an accepted upload
type UploadResponse struct {
	Status   string   `json:"status"`
	Rows     int      `json:"rows_processed"`
	Version  string   `json:"version"`
	Warnings []string `json:"warnings"`
}

// Upload ingests the multipart field "file"
// POST /upload
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxBytes {
		respondError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		respondError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil || header.Filename == "" {
		respondError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	res, err := h.ingester.Ingest(r.Context(), header.Filename, file)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	// 캐시 예열 실패는 업로드 실패가 아님
	if _, err := h.reports.Warm(r.Context(), res.Version); err != nil {
		h.logger.WithError(err).WithField("version", res.Version).Warn("Failed to warm report cache")
	}

	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	respondJSON(w, http.StatusOK, UploadResponse{
		Status:   "success",
		Rows:     res.Rows,
		Version:  res.Version,
		Warnings: warnings,
	})
}
