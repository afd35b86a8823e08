package handlers

import (
	"net/http"
	"strconv"

	"github.com/Amitkumar-56/mpcpl-backend/internal/services"
)

type AuditHandler struct {
	audit *services.AuditLogger
}

func NewAuditHandler(audit *services.AuditLogger) *AuditHandler {
	return &AuditHandler{audit: audit}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	recordType := r.URL.Query().Get("record_type")
	if recordType == "" {
		respondWithError(w, http.StatusBadRequest, "record_type query parameter is required")
		return
	}

	recordID, err := strconv.ParseInt(r.URL.Query().Get("record_id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "record_id query parameter is required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.audit.List(recordType, recordID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}
