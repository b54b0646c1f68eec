package main

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/table_timeline/internal/app"
	"github.com/Freeeeeet/table_timeline/internal/config"
	"github.com/Freeeeeet/table_timeline/internal/model"
	"github.com/Freeeeeet/table_timeline/internal/repository"
	"github.com/Freeeeeet/table_timeline/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "timeline",
		Short:         "Restaurant table reservation timeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newTemplateCmd())
	root.AddCommand(newSuggestCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "timeline %s (commit=%s, built=%s)\n", Version, CommitSHA, BuildDate)
		},
	}
}

// deps bundles what every database-backed command needs.
type deps struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
}

func openDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireDB(); err != nil {
		return nil, err
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)

	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return &deps{cfg: cfg, logger: logger, pool: pool}, nil
}

func (rt *deps) Close() {
	rt.pool.Close()
	_ = rt.logger.Sync()
}

// newService builds the reservation service for the configured restaurant.
// The restaurant row wins over configuration when present. Callers Load a
// window of days computed in svc.Location().
func (rt *deps) newService(ctx context.Context) (*service.ReservationService, error) {
	floorRepo := repository.NewFloorRepository(rt.pool, rt.logger)
	reservationRepo := repository.NewReservationRepository(rt.pool, rt.logger)

	restaurant := model.Restaurant{
		ID:       rt.cfg.RestaurantID,
		Name:     rt.cfg.RestaurantID,
		Timezone: rt.cfg.RestaurantTimezone,
	}
	stored, err := floorRepo.GetRestaurant(ctx, rt.cfg.RestaurantID)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		restaurant = *stored
	} else {
		rt.logger.Warn("Restaurant not found in database, using configuration",
			zap.String("restaurant_id", rt.cfg.RestaurantID))
	}

	svc, err := service.NewReservationService(
		restaurant,
		reservationRepo,
		floorRepo,
		service.Settings{AvgTicketPerPerson: rt.cfg.AvgTicketPerPerson},
		rt.logger,
	)
	if err != nil {
		return nil, err
	}
	return svc, nil
}
