// handlers/cron_handler.go
package handlers

import (
	"net/http"

	"github.com/gewnthar/cragbook/models"
)

// CronSync handles POST /api/cron/routes/sync from the external scheduler.
// Failures are reported generically; details go to the log and the run history.
func (h *Handlers) CronSync(w http.ResponseWriter, r *http.Request) {
	result, err := h.sync.Apply(r.Context(), models.TriggerScheduled)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, msgSyncFailed)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
