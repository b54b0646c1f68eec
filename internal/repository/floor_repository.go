package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Freeeeeet/table_timeline/internal/model"
	"github.com/Freeeeeet/table_timeline/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// FloorRepository reads restaurants, sectors and tables.
type FloorRepository struct {
	*base.Repository
	logger *zap.Logger
}

func NewFloorRepository(pool *pgxpool.Pool, logger *zap.Logger) *FloorRepository {
	return &FloorRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

// GetRestaurant returns the restaurant, or nil if it does not exist
func (r *FloorRepository) GetRestaurant(ctx context.Context, id string) (*model.Restaurant, error) {
	query := `
		SELECT id, name, timezone, service_hours
		FROM restaurants
		WHERE id = $1
	`

	var restaurant model.Restaurant
	var hours []byte
	err := r.QueryRow(ctx, query, id).Scan(
		&restaurant.ID,
		&restaurant.Name,
		&restaurant.Timezone,
		&hours,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get restaurant: %w", err)
	}

	if len(hours) > 0 {
		if err := json.Unmarshal(hours, &restaurant.ServiceHours); err != nil {
			return nil, fmt.Errorf("decode service hours: %w", err)
		}
	}
	return &restaurant, nil
}

// ListSectors returns the restaurant's sectors in display order
func (r *FloorRepository) ListSectors(ctx context.Context, restaurantID string) ([]model.Sector, error) {
	query := `
		SELECT id, name, color, sort_order
		FROM sectors
		WHERE restaurant_id = $1
		ORDER BY sort_order, id
	`

	rows, err := r.Query(ctx, query, restaurantID)
	if err != nil {
		r.logger.Error("Failed to query sectors",
			zap.String("restaurant_id", restaurantID),
			zap.Error(err))
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	defer rows.Close()

	var sectors []model.Sector
	for rows.Next() {
		var s model.Sector
		if err := rows.Scan(&s.ID, &s.Name, &s.Color, &s.SortOrder); err != nil {
			return nil, fmt.Errorf("scan sector: %w", err)
		}
		sectors = append(sectors, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sectors: %w", err)
	}
	return sectors, nil
}

// ListTables returns the restaurant's tables ordered by sector, then table
func (r *FloorRepository) ListTables(ctx context.Context, restaurantID string) ([]model.Table, error) {
	query := `
		SELECT t.id, t.sector_id, t.name, t.capacity_min, t.capacity_max, t.sort_order
		FROM dining_tables t
		JOIN sectors s ON s.id = t.sector_id
		WHERE s.restaurant_id = $1
		ORDER BY s.sort_order, t.sort_order, t.id
	`

	rows, err := r.Query(ctx, query, restaurantID)
	if err != nil {
		r.logger.Error("Failed to query tables",
			zap.String("restaurant_id", restaurantID),
			zap.Error(err))
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []model.Table
	for rows.Next() {
		var t model.Table
		err := rows.Scan(
			&t.ID,
			&t.SectorID,
			&t.Name,
			&t.Capacity.Min,
			&t.Capacity.Max,
			&t.SortOrder,
		)
		if err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}
