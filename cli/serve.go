// cli/serve.go
package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gewnthar/cragbook/handlers"
	"github.com/gewnthar/cragbook/log"
	"github.com/gewnthar/cragbook/services"
)

const shutdownTimeout = 15 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the optional in-process scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	cfg := opts.Config
	logger := log.WithComponent("server")

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	h := handlers.New(a.sync, a.routes, a.store.DB().PingContext, cfg.Admin.SyncRunsListMax)
	router := handlers.NewRouter(h, handlers.Config{
		AdminToken:       cfg.Admin.Token,
		CronSecret:       cfg.Cron.Secret,
		CronSecretHeader: cfg.Cron.SecretHeader,
	})
	if cfg.Admin.Token == "" {
		logger.Warn().Msg("admin.token is not set; admin endpoints will reject every request")
	}
	if cfg.Cron.Secret == "" {
		logger.Warn().Msg("cron.secret is not set; the cron endpoint will reject every request")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		services.NewScheduler(a.sync, cfg.Sync.Interval).Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
