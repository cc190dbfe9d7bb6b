package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/stratum-quant/stratum/internal/contracts"
	"github.com/stratum-quant/stratum/internal/override"
	"github.com/stratum-quant/stratum/pkg/logger"
)

// OverrideHandler accepts override requests and runs them through the
// override pipeline against the latest frozen snapshot.
type OverrideHandler struct {
	service   *override.Service
	snapshots SnapshotSource
	logger    *logger.Logger
}

// NewOverrideHandler creates a new override handler.
func NewOverrideHandler(service *override.Service, snapshots SnapshotSource, log *logger.Logger) *OverrideHandler {
	return &OverrideHandler{
		service:   service,
		snapshots: snapshots,
		logger:    log,
	}
}

// Apply applies one override. The response always carries the base and
// final results side by side plus every guardrail violation raised;
// guardrail violations do not fail the request.
// POST /api/overrides
func (h *OverrideHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req contracts.OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	snapshot := h.snapshots.Latest(r.Context())
	if snapshot == nil {
		respondError(w, http.StatusServiceUnavailable, "No scoring run has completed yet")
		return
	}

	result, err := h.service.Process(r.Context(), req, snapshot)
	if err != nil {
		var verr *override.ValidationError
		if errors.As(err, &verr) {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"success":    false,
				"error":      "Override request rejected",
				"violations": verr.Violations,
			})
			return
		}
		if strings.Contains(err.Error(), "not found in universe") {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.WithError(err).WithField("ticker", req.Ticker).Error("Failed to process override")
		respondError(w, http.StatusInternalServerError, "Failed to process override")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}
