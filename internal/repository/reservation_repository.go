package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/table_timeline/internal/model"
	"github.com/Freeeeeet/table_timeline/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const reservationColumns = `
	id, table_id, customer_name, customer_phone, customer_email, customer_notes,
	party_size, start_time, end_time, duration_minutes, status, priority,
	notes, source, created_at, updated_at
`

type ReservationRepository struct {
	*base.Repository
	logger *zap.Logger
}

func NewReservationRepository(pool *pgxpool.Pool, logger *zap.Logger) *ReservationRepository {
	return &ReservationRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

// ListBetween returns reservations starting in [from, to)
func (r *ReservationRepository) ListBetween(ctx context.Context, restaurantID string, from, to time.Time) ([]model.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE restaurant_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time, id
	`

	rows, err := r.Query(ctx, query, restaurantID, from, to)
	if err != nil {
		r.logger.Error("Failed to query reservations",
			zap.String("restaurant_id", restaurantID),
			zap.Time("from", from),
			zap.Time("to", to),
			zap.Error(err))
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}
	return reservations, nil
}

// GetByID returns a reservation, or nil if it does not exist
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	res, err := scanReservation(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation by id: %w", err)
	}
	return &res, nil
}

// SaveAll upserts reservations in a single transaction
func (r *ReservationRepository) SaveAll(ctx context.Context, restaurantID string, reservations []model.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}

	query := `
		INSERT INTO reservations (
			id, restaurant_id, table_id, customer_name, customer_phone, customer_email, customer_notes,
			party_size, start_time, end_time, duration_minutes, status, priority,
			notes, source, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			table_id = EXCLUDED.table_id,
			customer_name = EXCLUDED.customer_name,
			customer_phone = EXCLUDED.customer_phone,
			customer_email = EXCLUDED.customer_email,
			customer_notes = EXCLUDED.customer_notes,
			party_size = EXCLUDED.party_size,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			duration_minutes = EXCLUDED.duration_minutes,
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			notes = EXCLUDED.notes,
			source = EXCLUDED.source,
			updated_at = EXCLUDED.updated_at
	`

	err := r.InTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, res := range reservations {
			batch.Queue(query,
				res.ID,
				restaurantID,
				res.TableID,
				res.Customer.Name,
				res.Customer.Phone,
				res.Customer.Email,
				res.Customer.Notes,
				res.PartySize,
				res.StartTime,
				res.EndTime,
				res.DurationMinutes,
				res.Status,
				res.Priority,
				res.Notes,
				res.Source,
				res.CreatedAt,
				res.UpdatedAt,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		r.logger.Error("Failed to save reservations",
			zap.String("restaurant_id", restaurantID),
			zap.Int("count", len(reservations)),
			zap.Error(err))
		return fmt.Errorf("save reservations: %w", err)
	}

	r.logger.Debug("Reservations saved",
		zap.String("restaurant_id", restaurantID),
		zap.Int("count", len(reservations)))
	return nil
}

// Delete removes reservations by id
func (r *ReservationRepository) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	affected, err := r.ExecAffected(ctx, `DELETE FROM reservations WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("delete reservations: %w", err)
	}

	r.logger.Debug("Reservations deleted",
		zap.Int("requested", len(ids)),
		zap.Int64("deleted", affected))
	return nil
}

func scanReservation(row pgx.Row) (model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(
		&res.ID,
		&res.TableID,
		&res.Customer.Name,
		&res.Customer.Phone,
		&res.Customer.Email,
		&res.Customer.Notes,
		&res.PartySize,
		&res.StartTime,
		&res.EndTime,
		&res.DurationMinutes,
		&res.Status,
		&res.Priority,
		&res.Notes,
		&res.Source,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	return res, err
}
