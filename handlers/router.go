// handlers/router.go
package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gewnthar/cragbook/log"
	"github.com/gewnthar/cragbook/metrics"
)

const (
	defaultSyncRunsMax  = 50
	defaultCronHeader   = "X-Cron-Secret"
	defaultRouteTimeout = 2 * time.Minute
)

// Handlers holds the dependencies of every HTTP endpoint.
type Handlers struct {
	sync        SyncRunner
	routes      RouteQueries
	ping        func(ctx context.Context) error
	syncRunsMax int
}

// Config carries the shared secrets that gate the admin and cron endpoints.
type Config struct {
	AdminToken       string
	CronSecret       string
	CronSecretHeader string
}

func New(sync SyncRunner, routes RouteQueries, ping func(ctx context.Context) error, syncRunsMax int) *Handlers {
	if syncRunsMax <= 0 {
		syncRunsMax = defaultSyncRunsMax
	}
	return &Handlers{sync: sync, routes: routes, ping: ping, syncRunsMax: syncRunsMax}
}

// NewRouter mounts every endpoint on a chi router.
func NewRouter(h *Handlers, cfg Config) chi.Router {
	if cfg.CronSecretHeader == "" {
		cfg.CronSecretHeader = defaultCronHeader
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultRouteTimeout))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondWithError(w, http.StatusNotFound, "no route for "+req.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "method "+req.Method+" not allowed on "+req.URL.Path)
	})

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", h.Health)

		api.Get("/routes", h.ListRoutes)
		api.Get("/routes/{id}", h.GetRoute)

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(requireBearer(cfg.AdminToken))
			admin.Post("/routes/sync/preview", h.PreviewSync)
			admin.Post("/routes/sync/apply", h.ApplySync)
			admin.Get("/sync-runs", h.ListSyncRuns)
		})

		api.With(requireSecretHeader(cfg.CronSecretHeader, cfg.CronSecret)).
			Post("/cron/routes/sync", h.CronSync)
	})

	return r
}

// Health handles GET /api/health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			log.WithComponent("http").Error().Err(err).Msg("Health check failed: DB ping error")
			respondWithJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "database connection error"})
			return
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "cragbook is healthy"})
}

// requireBearer admits requests carrying "Authorization: Bearer <token>".
// An empty token locks the group.
func requireBearer(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" || !ok || !secretsEqual(strings.TrimSpace(got), token) {
				respondWithError(w, http.StatusUnauthorized, "admin authorization required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireSecretHeader admits requests whose header matches secret.
func requireSecretHeader(header, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || !secretsEqual(r.Header.Get(header), secret) {
				respondWithError(w, http.StatusForbidden, "invalid cron secret")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func secretsEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		log.WithComponent("http").Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
