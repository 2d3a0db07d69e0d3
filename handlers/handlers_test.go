package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/cragbook/database"
	"github.com/gewnthar/cragbook/models"
	"github.com/gewnthar/cragbook/scraper"
	"github.com/gewnthar/cragbook/services"
)

const (
	testAdminToken = "admin-token"
	testCronSecret = "cron-secret"
)

type fakeSync struct {
	diff      *models.Diff
	result    *models.ApplyResult
	err       error
	skip      bool
	triggers  []models.SyncTrigger
	previewed int
}

func (f *fakeSync) Preview(context.Context) (*models.Diff, error) {
	f.previewed++
	return f.diff, f.err
}

func (f *fakeSync) Apply(_ context.Context, trigger models.SyncTrigger) (*models.ApplyResult, error) {
	f.triggers = append(f.triggers, trigger)
	return f.result, f.err
}

func (f *fakeSync) WouldBeSkipped(*models.Diff) bool { return f.skip }

type fakeRoutes struct {
	routes    []models.Route
	runs      []models.SyncRun
	runsLimit int
}

func (f *fakeRoutes) ListRoutes(_ context.Context, status models.RouteStatus) (*models.RouteListResponse, error) {
	if status == "" {
		status = models.RouteStatusActive
	}
	if status != models.RouteStatusActive && status != models.RouteStatusArchived {
		return nil, fmt.Errorf("%q: %w", status, services.ErrInvalidStatus)
	}
	var out []models.Route
	for _, r := range f.routes {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return &models.RouteListResponse{Status: status, Count: len(out), Routes: out}, nil
}

func (f *fakeRoutes) GetRoute(_ context.Context, id int64) (*models.Route, error) {
	for _, r := range f.routes {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("route %d: %w", id, database.ErrNotFound)
}

func (f *fakeRoutes) RecentSyncRuns(_ context.Context, limit int) ([]models.SyncRun, error) {
	f.runsLimit = limit
	return f.runs, nil
}

func newTestRouter(sync *fakeSync, routes *fakeRoutes, ping func(context.Context) error) http.Handler {
	h := New(sync, routes, ping, 20)
	return NewRouter(h, Config{AdminToken: testAdminToken, CronSecret: testCronSecret})
}

func do(t *testing.T, h http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func adminAuth() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testAdminToken}
}

func TestPreviewSync(t *testing.T) {
	diff := models.NewDiff()
	diff.New = []models.Candidate{{WallID: "the-cave", Grade: "V6", Color: "Red", SetDate: "2024-05-02"}}
	diff.Missing = []models.Route{{ID: 4}, {ID: 5}}
	sync := &fakeSync{diff: diff, skip: true}
	router := newTestRouter(sync, &fakeRoutes{}, nil)

	rec := do(t, router, http.MethodPost, "/api/admin/routes/sync/preview", adminAuth())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.PreviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.NewCount)
	assert.Equal(t, 2, resp.MissingCount)
	assert.True(t, resp.WouldBeSkipped)
	assert.Empty(t, sync.triggers, "preview must not apply")
}

func TestAdminRequiresBearerToken(t *testing.T) {
	sync := &fakeSync{diff: models.NewDiff(), result: &models.ApplyResult{}}
	router := newTestRouter(sync, &fakeRoutes{}, nil)

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"missing header", nil},
		{"wrong token", map[string]string{"Authorization": "Bearer nope"}},
		{"wrong scheme", map[string]string{"Authorization": "Basic " + testAdminToken}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/admin/routes/sync/apply", tt.headers)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
	assert.Empty(t, sync.triggers)
}

func TestApplySync(t *testing.T) {
	sync := &fakeSync{result: &models.ApplyResult{RunID: "run-1", Added: 1, Updated: 1, AddedRoutes: []models.Route{}}}
	router := newTestRouter(sync, &fakeRoutes{}, nil)

	rec := do(t, router, http.MethodPost, "/api/admin/routes/sync/apply", adminAuth())
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ApplyResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, []models.SyncTrigger{models.TriggerAdmin}, sync.triggers)
}

func TestApplySyncSkippedIsOK(t *testing.T) {
	sync := &fakeSync{result: &models.ApplyResult{RunID: "run-2", Skipped: true, RoutesThatWouldBeArchivedCount: 15, AddedRoutes: []models.Route{}}}
	router := newTestRouter(sync, &fakeRoutes{}, nil)

	rec := do(t, router, http.MethodPost, "/api/admin/routes/sync/apply", adminAuth())
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["skipped"])
	assert.EqualValues(t, 15, body["routesThatWouldBeArchivedCount"])
}

func TestAdminSyncErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"permission", fmt.Errorf("fetch: %w", scraper.ErrFeedPermission), http.StatusBadGateway, msgSheetNotShared},
		{"generic", errors.New("connection reset"), http.StatusInternalServerError, msgSyncFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeSync{err: tt.err}, &fakeRoutes{}, nil)

			for _, path := range []string{"/api/admin/routes/sync/preview", "/api/admin/routes/sync/apply"} {
				rec := do(t, router, http.MethodPost, path, adminAuth())
				assert.Equal(t, tt.wantCode, rec.Code, path)

				var resp models.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantMsg, resp.Error)
				assert.NotContains(t, resp.Error, "connection reset")
			}
		})
	}
}

func TestCronSync(t *testing.T) {
	sync := &fakeSync{result: &models.ApplyResult{RunID: "run-3", AddedRoutes: []models.Route{}}}
	router := newTestRouter(sync, &fakeRoutes{}, nil)

	rec := do(t, router, http.MethodPost, "/api/cron/routes/sync", map[string]string{"X-Cron-Secret": "wrong"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, sync.triggers)

	rec = do(t, router, http.MethodPost, "/api/cron/routes/sync", map[string]string{"X-Cron-Secret": testCronSecret})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.SyncTrigger{models.TriggerScheduled}, sync.triggers)
}

func TestCronSyncFailureIsGeneric(t *testing.T) {
	sync := &fakeSync{err: fmt.Errorf("fetch: %w", scraper.ErrFeedPermission)}
	router := newTestRouter(sync, &fakeRoutes{}, nil)

	rec := do(t, router, http.MethodPost, "/api/cron/routes/sync", map[string]string{"X-Cron-Secret": testCronSecret})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, msgSyncFailed, resp.Error)
}

func TestCronLockedWithoutSecret(t *testing.T) {
	sync := &fakeSync{result: &models.ApplyResult{}}
	router := NewRouter(New(sync, &fakeRoutes{}, nil, 0), Config{AdminToken: testAdminToken})

	rec := do(t, router, http.MethodPost, "/api/cron/routes/sync", map[string]string{"X-Cron-Secret": ""})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, sync.triggers)
}

func TestRouteEndpoints(t *testing.T) {
	routes := &fakeRoutes{routes: []models.Route{
		{ID: 1, WallID: "prow", Grade: "V4", Color: "Blue", Status: models.RouteStatusActive, Attributes: []string{}},
		{ID: 2, WallID: "slab", Grade: "V1", Color: "Green", Status: models.RouteStatusArchived, Attributes: []string{}},
	}}
	router := newTestRouter(&fakeSync{}, routes, nil)

	rec := do(t, router, http.MethodGet, "/api/routes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list models.RouteListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, "prow", list.Routes[0].WallID)

	rec = do(t, router, http.MethodGet, "/api/routes?status=archived", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/routes?status=gone", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/routes/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var route models.Route
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &route))
	assert.Equal(t, models.RouteStatusArchived, route.Status)

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/routes/99", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/routes/abc", nil).Code)
}

func TestListSyncRuns(t *testing.T) {
	routes := &fakeRoutes{runs: []models.SyncRun{{ID: "run-1", StartedAt: time.Now()}}}
	router := newTestRouter(&fakeSync{}, routes, nil)

	rec := do(t, router, http.MethodGet, "/api/admin/sync-runs", adminAuth())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, routes.runsLimit)

	rec = do(t, router, http.MethodGet, "/api/admin/sync-runs?limit=5", adminAuth())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, routes.runsLimit)

	rec = do(t, router, http.MethodGet, "/api/admin/sync-runs?limit=500", adminAuth())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, routes.runsLimit)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/admin/sync-runs?limit=x", adminAuth()).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, router, http.MethodGet, "/api/admin/sync-runs", nil).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	healthy := newTestRouter(&fakeSync{}, &fakeRoutes{}, func(context.Context) error { return nil })
	assert.Equal(t, http.StatusOK, do(t, healthy, http.MethodGet, "/api/health", nil).Code)

	down := newTestRouter(&fakeSync{}, &fakeRoutes{}, func(context.Context) error { return errors.New("no db") })
	assert.Equal(t, http.StatusInternalServerError, do(t, down, http.MethodGet, "/api/health", nil).Code)

	rec := do(t, healthy, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cragbook_sync_previews_total")
}

func TestMethodNotAllowed(t *testing.T) {
	router := newTestRouter(&fakeSync{}, &fakeRoutes{}, nil)
	rec := do(t, router, http.MethodGet, "/api/admin/routes/sync/apply", adminAuth())
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
