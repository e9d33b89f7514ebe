package handlers

import (
	"net/http"
	"strconv"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 200
)

// ListAuditLogs returns the newest audit rows first, paged by
// limit/offset query params.
func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultAuditPageSize)
	if limit < 1 || limit > maxAuditPageSize {
		respondError(w, http.StatusBadRequest, "limit out of range")
		return
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		respondError(w, http.StatusBadRequest, "offset must not be negative")
		return
	}
	logs, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list audit logs")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return value
}
