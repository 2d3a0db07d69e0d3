// services/route_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gewnthar/cragbook/models"
)

// ErrInvalidStatus rejects a listing filter that is not a route status.
var ErrInvalidStatus = errors.New("status must be active or archived")

// RouteReader is the read side of the route store.
type RouteReader interface {
	ListRoutes(ctx context.Context, status models.RouteStatus) ([]models.Route, error)
	GetRoute(ctx context.Context, id int64) (*models.Route, error)
	ListSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error)
}

// RouteService serves catalog reads to the HTTP layer.
type RouteService struct {
	store RouteReader
}

func NewRouteService(store RouteReader) *RouteService {
	return &RouteService{store: store}
}

// ListRoutes returns routes in one status; an empty status means active.
func (s *RouteService) ListRoutes(ctx context.Context, status models.RouteStatus) (*models.RouteListResponse, error) {
	switch status {
	case "":
		status = models.RouteStatusActive
	case models.RouteStatusActive, models.RouteStatusArchived:
	default:
		return nil, fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}

	routes, err := s.store.ListRoutes(ctx, status)
	if err != nil {
		return nil, err
	}
	return &models.RouteListResponse{Status: status, Count: len(routes), Routes: routes}, nil
}

func (s *RouteService) GetRoute(ctx context.Context, id int64) (*models.Route, error) {
	return s.store.GetRoute(ctx, id)
}

// RecentSyncRuns returns up to limit sync runs, newest first.
func (s *RouteService) RecentSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	return s.store.ListSyncRuns(ctx, limit)
}
