package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/salesdesk/backend/internal/ingest"
	"github.com/wonny/salesdesk/backend/internal/ingest/reader"
	"github.com/wonny/salesdesk/backend/internal/reporting"
	"github.com/wonny/salesdesk/backend/internal/store"
	"github.com/wonny/salesdesk/backend/pkg/logger"
)

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondFailure maps domain errors onto status codes
// ⭐ SSOT: 에러 → HTTP 상태 코드 매핑은 여기서만
func respondFailure(w http.ResponseWriter, log *logger.Logger, err error) {
	var schemaErr *ingest.SchemaError
	var integrityErr *ingest.DataIntegrityError

	switch {
	case errors.As(err, &schemaErr), errors.As(err, &integrityErr):
		respondJSON(w, http.StatusUnprocessableEntity, map[string][]string{
			"errors": {err.Error()},
		})
	case errors.Is(err, reader.ErrUnsupportedFormat):
		respondError(w, http.StatusBadRequest, "Unsupported file type (valid: .csv, .xls, .xlsx)")
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "Version not found")
	case errors.Is(err, store.ErrNoData):
		respondError(w, http.StatusNotFound, "No data available")
	case errors.Is(err, reporting.ErrUnknownReport):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		log.WithError(err).Error("Request failed")
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
