// handlers/route_handler.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gewnthar/cragbook/database"
	"github.com/gewnthar/cragbook/log"
	"github.com/gewnthar/cragbook/models"
	"github.com/gewnthar/cragbook/services"
)

// RouteQueries is the read side of the catalog.
type RouteQueries interface {
	ListRoutes(ctx context.Context, status models.RouteStatus) (*models.RouteListResponse, error)
	GetRoute(ctx context.Context, id int64) (*models.Route, error)
	RecentSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error)
}

// ListRoutes handles GET /api/routes?status=active|archived.
func (h *Handlers) ListRoutes(w http.ResponseWriter, r *http.Request) {
	status := models.RouteStatus(r.URL.Query().Get("status"))

	resp, err := h.routes.ListRoutes(r.Context(), status)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.WithComponent("http").Error().Err(err).Msg("Failed to list routes")
		respondWithError(w, http.StatusInternalServerError, "Failed to list routes")
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// GetRoute handles GET /api/routes/{id}.
func (h *Handlers) GetRoute(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "route id must be a positive integer")
		return
	}

	route, err := h.routes.GetRoute(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "route not found")
			return
		}
		log.WithComponent("http").Error().Err(err).Int64("route_id", id).Msg("Failed to get route")
		respondWithError(w, http.StatusInternalServerError, "Failed to get route")
		return
	}
	respondWithJSON(w, http.StatusOK, route)
}
