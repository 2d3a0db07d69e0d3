// handlers/admin_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gewnthar/cragbook/log"
	"github.com/gewnthar/cragbook/models"
	"github.com/gewnthar/cragbook/scraper"
)

// SyncRunner is the reconciliation engine as seen by the HTTP layer.
type SyncRunner interface {
	Preview(ctx context.Context) (*models.Diff, error)
	Apply(ctx context.Context, trigger models.SyncTrigger) (*models.ApplyResult, error)
	WouldBeSkipped(diff *models.Diff) bool
}

const (
	msgSheetNotShared = "The route spreadsheet is not shared with the sync service. Share the sheet with the service account and try again."
	msgSyncFailed     = "Route sync failed. Check the server logs for details."
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.WithComponent("http").Error().Err(err).Msg("Error marshalling JSON response")
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	log.WithComponent("http").Warn().Int("status", code).Msg(message)
	respondWithJSON(w, code, models.ErrorResponse{Error: message})
}

// respondWithSyncError maps an engine failure to the admin-facing message.
func respondWithSyncError(w http.ResponseWriter, err error) {
	if errors.Is(err, scraper.ErrFeedPermission) {
		respondWithError(w, http.StatusBadGateway, msgSheetNotShared)
		return
	}
	respondWithError(w, http.StatusInternalServerError, msgSyncFailed)
}

// PreviewSync handles POST /api/admin/routes/sync/preview.
func (h *Handlers) PreviewSync(w http.ResponseWriter, r *http.Request) {
	diff, err := h.sync.Preview(r.Context())
	if err != nil {
		respondWithSyncError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, models.PreviewResponse{
		Diff:           diff,
		NewCount:       len(diff.New),
		ExistingCount:  len(diff.Existing),
		MissingCount:   len(diff.Missing),
		RejectedCount:  len(diff.Rejected),
		WouldBeSkipped: h.sync.WouldBeSkipped(diff),
	})
}

// ApplySync handles POST /api/admin/routes/sync/apply. The request body is
// ignored; the diff is always derived again from the live sheet.
func (h *Handlers) ApplySync(w http.ResponseWriter, r *http.Request) {
	result, err := h.sync.Apply(r.Context(), models.TriggerAdmin)
	if err != nil {
		respondWithSyncError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// ListSyncRuns handles GET /api/admin/sync-runs?limit=N.
func (h *Handlers) ListSyncRuns(w http.ResponseWriter, r *http.Request) {
	limit := h.syncRunsMax
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n < limit {
			limit = n
		}
	}

	runs, err := h.routes.RecentSyncRuns(r.Context(), limit)
	if err != nil {
		log.WithComponent("http").Error().Err(err).Msg("Failed to list sync runs")
		respondWithError(w, http.StatusInternalServerError, "Failed to list sync runs")
		return
	}
	respondWithJSON(w, http.StatusOK, runs)
}
