// database/route_store.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gewnthar/cragbook/log"
	"github.com/gewnthar/cragbook/models"
)

// ErrNotFound is returned when a route or sync run id does not exist.
var ErrNotFound = errors.New("not found")

// Store is the route catalog persistence layer over any database/sql pool.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const routeColumns = `id, wall_id, grade, color, difficulty_label, set_date,
	setter_name, style, hold_type, attributes, status, removed_at, created_at`

// ListActiveRoutes returns every active route ordered by id.
func (s *Store) ListActiveRoutes(ctx context.Context) ([]models.Route, error) {
	return s.ListRoutes(ctx, models.RouteStatusActive)
}

// ListRoutes returns the routes with the given status ordered by id.
func (s *Store) ListRoutes(ctx context.Context, status models.RouteStatus) ([]models.Route, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+routeColumns+`
		FROM routes
		WHERE status = ?
		ORDER BY id
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s routes: %w", status, err)
	}
	defer rows.Close()

	routes := []models.Route{}
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan route row: %w", err)
		}
		routes = append(routes, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating route rows: %w", err)
	}
	return routes, nil
}

// GetRoute reads one route by id.
func (s *Store) GetRoute(ctx context.Context, id int64) (*models.Route, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+routeColumns+` FROM routes WHERE id = ?`, id)
	r, err := scanRoute(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("route %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query route %d: %w", id, err)
	}
	return &r, nil
}

// InsertRoute stores a new route and returns its assigned id.
func (s *Store) InsertRoute(ctx context.Context, r models.Route) (int64, error) {
	return insertRoute(ctx, s.db, r)
}

// UpdateRouteMutable overwrites the setter, style and hold type of a route.
func (s *Store) UpdateRouteMutable(ctx context.Context, id int64, setterName string, style, holdType *string) error {
	return updateRouteMutable(ctx, s.db, id, setterName, style, holdType)
}

// ArchiveRoute soft-removes a route.
func (s *Store) ArchiveRoute(ctx context.Context, id int64, at time.Time) error {
	return archiveRoute(ctx, s.db, id, at)
}

// ApplyDiff writes one reconciliation pass inside a single transaction:
// new candidates are inserted as active routes, missing routes are archived
// and matched routes get their mutable fields overwritten. Either every write
// lands or none does. The inserted routes are returned with their ids.
func (s *Store) ApplyDiff(ctx context.Context, diff *models.Diff, now time.Time) ([]models.Route, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for route sync: %w", err)
	}
	defer tx.Rollback()

	added := make([]models.Route, 0, len(diff.New))
	for _, c := range diff.New {
		r := c.NewRoute(now)
		id, err := insertRoute(ctx, tx, r)
		if err != nil {
			return nil, err
		}
		r.ID = id
		added = append(added, r)
	}

	for _, r := range diff.Missing {
		if err := archiveRoute(ctx, tx, r.ID, now); err != nil {
			return nil, err
		}
	}

	for _, e := range diff.Existing {
		if err := updateRouteMutable(ctx, tx, e.RouteID, e.Route.SetterName, e.Route.Style, e.Route.HoldType); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit route sync transaction: %w", err)
	}

	log.WithComponent("database").Debug().
		Int("added", len(added)).
		Int("archived", len(diff.Missing)).
		Int("updated", len(diff.Existing)).
		Msg("Route sync committed")
	return added, nil
}

func insertRoute(ctx context.Context, q queryer, r models.Route) (int64, error) {
	attrs := r.Attributes
	if attrs == nil {
		attrs = []string{}
	}
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal attributes for route %s/%s/%s: %w", r.WallID, r.Grade, r.Color, err)
	}
	status := r.Status
	if status == "" {
		status = models.RouteStatusActive
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO routes (
			wall_id, grade, color, difficulty_label, set_date,
			setter_name, style, hold_type, attributes, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.WallID, r.Grade, r.Color, nullString(r.DifficultyLabel), r.SetDate,
		r.SetterName, nullString(r.Style), nullString(r.HoldType), string(attrsJSON), string(status), r.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert route %s/%s/%s set %s: %w", r.WallID, r.Grade, r.Color, r.SetDate, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read id of inserted route: %w", err)
	}
	return id, nil
}

func updateRouteMutable(ctx context.Context, q queryer, id int64, setterName string, style, holdType *string) error {
	_, err := q.ExecContext(ctx, `
		UPDATE routes SET setter_name = ?, style = ?, hold_type = ? WHERE id = ?
	`, setterName, nullString(style), nullString(holdType), id)
	if err != nil {
		return fmt.Errorf("failed to update route %d: %w", id, err)
	}
	return nil
}

func archiveRoute(ctx context.Context, q queryer, id int64, at time.Time) error {
	_, err := q.ExecContext(ctx, `
		UPDATE routes SET status = ?, removed_at = ? WHERE id = ?
	`, string(models.RouteStatusArchived), at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to archive route %d: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoute(row rowScanner) (models.Route, error) {
	var (
		r                      models.Route
		label, style, holdType sql.NullString
		attrsJSON, status      string
		removedAt              sql.NullTime
	)
	err := row.Scan(
		&r.ID, &r.WallID, &r.Grade, &r.Color, &label, &r.SetDate,
		&r.SetterName, &style, &holdType, &attrsJSON, &status, &removedAt, &r.CreatedAt,
	)
	if err != nil {
		return models.Route{}, err
	}

	r.Status = models.RouteStatus(status)
	if label.Valid {
		r.DifficultyLabel = &label.String
	}
	if style.Valid {
		r.Style = &style.String
	}
	if holdType.Valid {
		r.HoldType = &holdType.String
	}
	if removedAt.Valid {
		t := removedAt.Time
		r.RemovedAt = &t
	}
	r.Attributes = []string{}
	if attrsJSON != "" {
		if err := json.Unmarshal([]byte(attrsJSON), &r.Attributes); err != nil {
			log.WithComponent("database").Warn().Int64("route_id", r.ID).Err(err).Msg("Could not unmarshal route attributes")
			r.Attributes = []string{}
		}
	}
	return r, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
