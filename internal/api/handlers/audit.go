package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/stratum-quant/stratum/internal/audit"
	"github.com/stratum-quant/stratum/internal/contracts"
	"github.com/stratum-quant/stratum/pkg/logger"
)

// AuditReader exposes the override log for review.
type AuditReader interface {
	Query(ctx context.Context, q audit.Query) ([]contracts.OverrideResult, error)
	Stats(ctx context.Context, q audit.Query) (audit.Stats, error)
}

// AuditHandler serves the override audit log.
type AuditHandler struct {
	store  AuditReader
	logger *logger.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(store AuditReader, log *logger.Logger) *AuditHandler {
	return &AuditHandler{
		store:  store,
		logger: log,
	}
}

// GetRecords returns override records matching the query parameters.
// GET /api/audit?ticker=AAA&from=2026-01-01&to=2026-03-31&limit=50
func (h *AuditHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.store.Query(r.Context(), q)
	if err != nil {
		h.logger.WithError(err).Error("Failed to query override log")
		respondError(w, http.StatusInternalServerError, "Failed to query override log")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"count":   len(records),
			"records": records,
		},
	})
}

// GetStats returns aggregate statistics over matching records.
// GET /api/audit/stats
func (h *AuditHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.store.Stats(r.Context(), q)
	if err != nil {
		h.logger.WithError(err).Error("Failed to aggregate override log")
		respondError(w, http.StatusInternalServerError, "Failed to aggregate override log")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    stats,
	})
}

func queryFromRequest(r *http.Request) (audit.Query, error) {
	q := audit.Query{
		Ticker: r.URL.Query().Get("ticker"),
	}

	var err error
	if q.From, err = parseDateParam(r, "from"); err != nil {
		return audit.Query{}, err
	}
	if q.To, err = parseDateParam(r, "to"); err != nil {
		return audit.Query{}, err
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return audit.Query{}, errBadParam("limit must be a positive integer")
		}
		q.Limit = limit
	}

	return q, nil
}

func parseDateParam(r *http.Request, name string) (time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, errBadParam(name + " must be a date in YYYY-MM-DD form")
	}
	if name == "to" {
		// Make the range inclusive of the whole end day.
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

type errBadParam string

func (e errBadParam) Error() string { return string(e) }
