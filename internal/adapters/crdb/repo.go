package crdb

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robertarktes/tourinfo/internal/domain"
)

const (
	SerializationFailureCode = "40001"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.MarkConnection(err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "SET TRANSACTION ISOLATION LEVEL SERIALIZABLE")
	if err != nil {
		return err
	}

	err = fn(tx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == SerializationFailureCode {
			return domain.ErrSerializationFailure
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) CreateReservation(ctx context.Context, tx pgx.Tx, rec domain.Reservation) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO reservations (id, name, email, phone, service_id, service_name, scheduled_at, participants, notes, status, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, rec.ID, rec.Name, rec.Email, rec.Phone, rec.ServiceID, rec.ServiceName, rec.ScheduledAt,
		rec.Participants, rec.Notes, rec.Status, rec.PaymentStatus, rec.CreatedAt, rec.UpdatedAt)
	return domain.MarkConnection(err)
}

func (r *Repository) GetReservation(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	var rec domain.Reservation
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, service_id, service_name, scheduled_at, participants, notes, status, payment_status, created_at, updated_at
		FROM reservations WHERE id = $1
	`, id).Scan(&rec.ID, &rec.Name, &rec.Email, &rec.Phone, &rec.ServiceID, &rec.ServiceName,
		&rec.ScheduledAt, &rec.Participants, &rec.Notes, &rec.Status, &rec.PaymentStatus,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.MarkConnection(err)
	}
	return &rec, nil
}

func (r *Repository) UpdateReservationStatus(ctx context.Context, id uuid.UUID, status domain.ReservationStatus) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE reservations SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	if err != nil {
		return domain.MarkConnection(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE reservations SET payment_status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	if err != nil {
		return domain.MarkConnection(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) CountReservations(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM reservations`).Scan(&count)
	if err != nil {
		return 0, domain.MarkConnection(err)
	}
	return count, nil
}

func (r *Repository) CountReservationsByStatus(ctx context.Context, status domain.ReservationStatus) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM reservations WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, domain.MarkConnection(err)
	}
	return count, nil
}
