package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/table_timeline/internal/app"
	"github.com/Freeeeeet/table_timeline/internal/handler"
	"github.com/Freeeeeet/table_timeline/internal/timeline"
	"github.com/Freeeeeet/table_timeline/migrations"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			rt, err := openDeps(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if migrateUp {
				if err := runMigrations(ctx, rt); err != nil {
					return err
				}
			}

			svc, err := rt.newService(ctx)
			if err != nil {
				return err
			}
			// Warm yesterday through the configured window; other days are
			// pulled from the database on first use.
			today := timeline.StartOfDay(time.Now(), svc.Location())
			if err := svc.Load(ctx, today.AddDate(0, 0, -1), today.AddDate(0, 0, rt.cfg.LoadWindowDays)); err != nil {
				return err
			}

			scheduler := app.NewScheduler(svc, rt.cfg.FlushInterval, rt.logger)
			scheduler.Start(ctx)
			defer scheduler.Stop()

			if rt.cfg.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}
			h := handler.NewTimelineHandler(svc, time.Now, rt.logger)
			srv := &http.Server{
				Addr:              rt.cfg.HTTPAddr,
				Handler:           handler.NewRouter(h, rt.logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				rt.logger.Info("HTTP server listening", zap.String("addr", rt.cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
			case <-ctx.Done():
			}

			rt.logger.Info("Shutting down")
			shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
			defer stop()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown http server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	return cmd
}

func runMigrations(ctx context.Context, rt *deps) error {
	migrator, err := app.NewMigrator(rt.pool, migrations.FS, rt.logger)
	if err != nil {
		return err
	}
	defer migrator.Close()
	return migrator.Run(ctx)
}
