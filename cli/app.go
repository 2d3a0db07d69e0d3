// cli/app.go
package cli

import (
	"context"
	"fmt"

	"github.com/gewnthar/cragbook/config"
	"github.com/gewnthar/cragbook/database"
	"github.com/gewnthar/cragbook/notify"
	"github.com/gewnthar/cragbook/reconcile"
	"github.com/gewnthar/cragbook/scraper"
	"github.com/gewnthar/cragbook/services"
)

// app is the fully wired service graph shared by the subcommands.
type app struct {
	cfg    *config.Config
	store  *database.Store
	sync   *services.SyncService
	routes *services.RouteService

	closeNotify func() error
}

// openStore connects the global pool and makes sure the tables exist.
func openStore(ctx context.Context, cfg *config.Config) (*database.Store, error) {
	if err := database.InitDB(cfg.Database); err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	if err := database.EnsureSchema(ctx, database.DB, cfg.Database.Dialect); err != nil {
		database.CloseDB()
		return nil, err
	}
	return database.NewStore(database.DB), nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	source, err := scraper.NewSource(ctx, cfg.Feed)
	if err != nil {
		database.CloseDB()
		return nil, fmt.Errorf("error creating route feed: %w", err)
	}

	notifier, closeNotify, err := notify.FromConfig(ctx, cfg.Notify)
	if err != nil {
		database.CloseDB()
		return nil, fmt.Errorf("error creating notifier: %w", err)
	}

	syncSvc := services.NewSyncService(source, store, store, notifier, services.SyncOptions{
		Walls:         cfg.Sync.Walls,
		HeaderRows:    cfg.Feed.HeaderRowCount(),
		MaxArchive:    cfg.Sync.MaxArchive(),
		Strictness:    reconcile.Strictness{DateToleranceDays: cfg.Sync.DateToleranceDays},
		Location:      cfg.Sync.Location,
		NotifyTimeout: cfg.Notify.Timeout,
	})

	return &app{
		cfg:         cfg,
		store:       store,
		sync:        syncSvc,
		routes:      services.NewRouteService(store),
		closeNotify: closeNotify,
	}, nil
}

func (a *app) Close() {
	if a.closeNotify != nil {
		a.closeNotify()
	}
	database.CloseDB()
}
