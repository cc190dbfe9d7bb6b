package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/stratum-quant/stratum/internal/contracts"
	"github.com/stratum-quant/stratum/pkg/logger"
)

// SnapshotSource provides the latest scored universe snapshot.
type SnapshotSource interface {
	Latest(ctx context.Context) *contracts.UniverseSnapshot
}

// RankingsHandler serves the scored universe.
type RankingsHandler struct {
	snapshots SnapshotSource
	logger    *logger.Logger
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(snapshots SnapshotSource, log *logger.Logger) *RankingsHandler {
	return &RankingsHandler{
		snapshots: snapshots,
		logger:    log,
	}
}

// GetRankings returns the full ranked universe, highest percentile
// first.
// GET /api/rankings?limit=N
func (h *RankingsHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	snapshot := h.snapshots.Latest(r.Context())
	if snapshot == nil {
		respondError(w, http.StatusServiceUnavailable, "No scoring run has completed yet")
		return
	}

	results := snapshot.Results
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if limit < len(results) {
			results = results[:limit]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"date":        snapshot.Date.Format("2006-01-02"),
			"policy_hash": snapshot.PolicyHash,
			"count":       len(results),
			"results":     results,
			"skipped":     snapshot.Skipped,
		},
	})
}

// GetRanking returns one entity's composite result.
// GET /api/rankings/{ticker}
func (h *RankingsHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	snapshot := h.snapshots.Latest(r.Context())
	if snapshot == nil {
		respondError(w, http.StatusServiceUnavailable, "No scoring run has completed yet")
		return
	}

	result, ok := snapshot.Find(ticker)
	if !ok {
		respondError(w, http.StatusNotFound, "Ticker not found in universe: "+ticker)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

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
