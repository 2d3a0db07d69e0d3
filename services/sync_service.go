// services/sync_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gewnthar/cragbook/log"
	"github.com/gewnthar/cragbook/metrics"
	"github.com/gewnthar/cragbook/models"
	"github.com/gewnthar/cragbook/notify"
	"github.com/gewnthar/cragbook/reconcile"
	"github.com/gewnthar/cragbook/scraper"
)

const defaultNotifyTimeout = 10 * time.Second

// Catalog is the slice of the route store the sync engine needs.
type Catalog interface {
	ListActiveRoutes(ctx context.Context) ([]models.Route, error)
	ApplyDiff(ctx context.Context, diff *models.Diff, now time.Time) ([]models.Route, error)
}

// RunLog records the outcome of every apply pass.
type RunLog interface {
	InsertSyncRun(ctx context.Context, run models.SyncRun) error
}

// SyncOptions tunes the engine. Zero values are usable except Walls.
type SyncOptions struct {
	Walls      []string
	HeaderRows int
	MaxArchive int
	Strictness reconcile.Strictness
	// Location decides which calendar day "today" is for set dates.
	Location *time.Location
	// Now is the clock; tests pin it.
	Now func() time.Time
	// NotifyTimeout bounds each notification send. Defaults to 10s.
	NotifyTimeout time.Duration
}

// SyncService reconciles the staff route spreadsheet with the catalog.
type SyncService struct {
	source   scraper.Source
	catalog  Catalog
	runs     RunLog
	notifier notify.Notifier
	opts     SyncOptions
	governor reconcile.Governor
	newRunID func() string

	// mu serialises Apply passes within this process.
	mu sync.Mutex
}

// NewSyncService wires the engine. runs may be nil when no audit log is kept.
func NewSyncService(source scraper.Source, catalog Catalog, runs RunLog, notifier notify.Notifier, opts SyncOptions) *SyncService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = defaultNotifyTimeout
	}
	if notifier == nil {
		notifier = notify.LogNotifier{Logger: log.WithComponent("notify")}
	}
	return &SyncService{
		source:   source,
		catalog:  catalog,
		runs:     runs,
		notifier: notifier,
		opts:     opts,
		governor: reconcile.Governor{MaxArchive: opts.MaxArchive},
		newRunID: uuid.NewString,
	}
}

// MaxArchive is the removal threshold in force.
func (s *SyncService) MaxArchive() int {
	return s.governor.MaxArchive
}

// Preview fetches the feed and classifies it against the active catalog.
// Nothing is written.
func (s *SyncService) Preview(ctx context.Context) (*models.Diff, error) {
	defer metrics.NewTimer().ObserveDurationVec(metrics.SyncDuration, "preview")
	metrics.SyncPreviewsTotal.Inc()

	return s.derive(ctx, log.WithComponent("sync"))
}

// WouldBeSkipped reports whether Apply would veto this diff.
func (s *SyncService) WouldBeSkipped(diff *models.Diff) bool {
	return s.governor.Check(diff) != nil
}

// Apply re-reads the feed and the catalog, then writes the resulting diff in
// one transaction unless the removal threshold vetoes it. A veto is a
// successful call with Skipped set. Notifications go out after the pass
// releases its lock, on a context detached from ctx and bounded by
// NotifyTimeout.
func (s *SyncService) Apply(ctx context.Context, trigger models.SyncTrigger) (*models.ApplyResult, error) {
	result, send, err := s.apply(ctx, trigger)
	if send != nil {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.NotifyTimeout)
		defer cancel()
		send(nctx)
	}
	return result, err
}

// pendingNotice delivers one notification once the pass is finished.
type pendingNotice func(ctx context.Context)

func (s *SyncService) apply(ctx context.Context, trigger models.SyncTrigger) (*models.ApplyResult, pendingNotice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer metrics.NewTimer().ObserveDurationVec(metrics.SyncDuration, "apply")

	run := models.SyncRun{
		ID:        s.newRunID(),
		Trigger:   trigger,
		StartedAt: s.opts.Now().UTC(),
	}
	runLogger := log.WithRunID(run.ID).With().
		Str("component", "sync").
		Str("trigger", string(trigger)).
		Logger()
	logger := &runLogger
	logger.Info().Msg("Route sync started")

	diff, err := s.derive(ctx, logger)
	if err != nil {
		s.finishFailed(ctx, logger, &run, err)
		return nil, nil, err
	}
	run.Rejected = len(diff.Rejected)

	if err := s.governor.Check(diff); err != nil {
		var veto *reconcile.TooManyRemovalsError
		if !errors.As(err, &veto) {
			s.finishFailed(ctx, logger, &run, err)
			return nil, nil, err
		}
		result, send := s.skip(ctx, logger, &run, veto)
		return result, send, nil
	}

	now := s.opts.Now().UTC()
	added, err := s.catalog.ApplyDiff(ctx, diff, now)
	if err != nil {
		err = fmt.Errorf("failed to apply route sync: %w", err)
		s.finishFailed(ctx, logger, &run, err)
		return nil, nil, err
	}

	result := &models.ApplyResult{
		RunID:       run.ID,
		Added:       len(added),
		Archived:    len(diff.Missing),
		Updated:     len(diff.Existing),
		AddedRoutes: added,
	}

	metrics.RoutesAdded.Add(float64(result.Added))
	metrics.RoutesArchived.Add(float64(result.Archived))
	metrics.RoutesUpdated.Add(float64(result.Updated))
	metrics.SyncRunsTotal.WithLabelValues(string(trigger), string(models.SyncRunApplied)).Inc()

	run.Status = models.SyncRunApplied
	run.Added = result.Added
	run.Archived = result.Archived
	run.Updated = result.Updated
	s.record(ctx, logger, run)

	logger.Info().
		Int("added", result.Added).
		Int("archived", result.Archived).
		Int("updated", result.Updated).
		Int("rejected", run.Rejected).
		Msg("Route sync applied")

	if result.Added == 0 && result.Archived == 0 {
		return result, nil, nil
	}
	summary := notify.SyncSummary{
		RunID:       run.ID,
		Trigger:     trigger,
		AddedRoutes: added,
		Archived:    result.Archived,
		Updated:     result.Updated,
	}
	return result, func(ctx context.Context) {
		if err := s.notifier.SyncSummary(ctx, summary); err != nil {
			logger.Error().Err(err).Msg("Failed to send sync summary notification")
		}
	}, nil
}

func (s *SyncService) derive(ctx context.Context, logger *zerolog.Logger) (*models.Diff, error) {
	ref := s.opts.Now().In(s.opts.Location)

	tabs, err := s.source.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch route feed: %w", err)
	}

	active, err := s.catalog.ListActiveRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read active routes: %w", err)
	}

	parsed := reconcile.ParseFeed(tabs, reconcile.ParseOptions{
		Walls:      s.opts.Walls,
		HeaderRows: s.opts.HeaderRows,
		Reference:  ref,
	}, *logger)

	diff := reconcile.Classify(parsed.Candidates, active, s.opts.Strictness)
	diff.Rejected = append(parsed.Rejected, diff.Rejected...)

	logger.Debug().
		Int("new", len(diff.New)).
		Int("existing", len(diff.Existing)).
		Int("missing", len(diff.Missing)).
		Int("rejected", len(diff.Rejected)).
		Msg("Route feed classified")
	return diff, nil
}

func (s *SyncService) skip(ctx context.Context, logger *zerolog.Logger, run *models.SyncRun, veto *reconcile.TooManyRemovalsError) (*models.ApplyResult, pendingNotice) {
	logger.Warn().
		Int("would_archive", veto.Count).
		Int("limit", veto.Limit).
		Msg("Route sync skipped: too many removals")
	metrics.SyncRunsTotal.WithLabelValues(string(run.Trigger), string(models.SyncRunSkipped)).Inc()

	run.Status = models.SyncRunSkipped
	run.WouldArchive = veto.Count
	s.record(ctx, logger, *run)

	skipped := notify.SyncSkipped{
		RunID:        run.ID,
		Trigger:      run.Trigger,
		WouldArchive: veto.Count,
		Limit:        veto.Limit,
	}
	send := func(ctx context.Context) {
		if err := s.notifier.SyncSkipped(ctx, skipped); err != nil {
			logger.Error().Err(err).Msg("Failed to send sync skipped notification")
		}
	}

	return &models.ApplyResult{
		RunID:                          run.ID,
		Skipped:                        true,
		RoutesThatWouldBeArchivedCount: veto.Count,
		AddedRoutes:                    []models.Route{},
	}, send
}

func (s *SyncService) finishFailed(ctx context.Context, logger *zerolog.Logger, run *models.SyncRun, err error) {
	logger.Error().Err(err).Msg("Route sync failed")
	metrics.SyncRunsTotal.WithLabelValues(string(run.Trigger), string(models.SyncRunFailed)).Inc()

	run.Status = models.SyncRunFailed
	run.ErrorMessage = err.Error()
	// The request context may already be done; the audit row should still land.
	s.record(context.WithoutCancel(ctx), logger, *run)
}

func (s *SyncService) record(ctx context.Context, logger *zerolog.Logger, run models.SyncRun) {
	if s.runs == nil {
		return
	}
	run.FinishedAt = s.opts.Now().UTC()
	if err := s.runs.InsertSyncRun(ctx, run); err != nil {
		logger.Error().Err(err).Msg("Failed to record sync run")
	}
}
