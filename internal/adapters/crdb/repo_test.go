package crdb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robertarktes/tourinfo/internal/adapters/crdb"
	"github.com/robertarktes/tourinfo/internal/domain"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRepo(t *testing.T, ctx context.Context) *crdb.Repository {
	t.Helper()

	crdbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "cockroachdb/cockroach:v24.1.1",
			Cmd:          []string{"start-single-node", "--insecure"},
			ExposedPorts: []string{"26257/tcp", "8080/tcp"},
			WaitingFor:   wait.ForHTTP("/health?ready=1").WithPort("8080"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { crdbContainer.Terminate(ctx) })

	dsn, err := crdbContainer.Endpoint(ctx, "postgresql")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, dsn+"/tourinfo?sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		CREATE DATABASE IF NOT EXISTS tourinfo;
		CREATE TABLE IF NOT EXISTS tourinfo.reservations (
			id UUID PRIMARY KEY,
			name TEXT,
			email TEXT,
			phone TEXT,
			service_id UUID,
			service_name TEXT,
			scheduled_at TIMESTAMPTZ,
			participants INT,
			notes TEXT,
			status TEXT CHECK (status IN ('pending', 'confirmed', 'cancelled', 'completed')),
			payment_status TEXT CHECK (payment_status IN ('pending', 'paid', 'failed')),
			created_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ
		);
	`)
	if err != nil {
		t.Fatal(err)
	}

	return crdb.NewRepository(pool)
}

func TestRepository_CreateAndGetReservation(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t, ctx)

	rec := domain.NewReservation("Alice", "a@b.com", "+100", uuid.New(), "Tour X", time.Now().Add(48*time.Hour), 2, "window seat")

	err := repo.WithTx(ctx, func(tx pgx.Tx) error {
		return repo.CreateReservation(ctx, tx, rec)
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	fetched, err := repo.GetReservation(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fetched.Email != "a@b.com" || fetched.Status != domain.StatusPending || fetched.Participants != 2 {
		t.Errorf("unexpected reservation: %+v", fetched)
	}

	_, err = repo.GetReservation(ctx, uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRepository_UpdateStatusAndCounts(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t, ctx)

	first := domain.NewReservation("Alice", "a@b.com", "", uuid.New(), "Tour X", time.Now(), 2, "")
	second := domain.NewReservation("Bob", "b@c.com", "", uuid.New(), "Tour Y", time.Now(), 1, "")
	for _, rec := range []domain.Reservation{first, second} {
		rec := rec
		if err := repo.WithTx(ctx, func(tx pgx.Tx) error {
			return repo.CreateReservation(ctx, tx, rec)
		}); err != nil {
			t.Fatal(err)
		}
	}

	if err := repo.UpdateReservationStatus(ctx, first.ID, domain.StatusConfirmed); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := repo.UpdatePaymentStatus(ctx, first.ID, domain.PaymentPaid); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	err := repo.UpdateReservationStatus(ctx, uuid.New(), domain.StatusCancelled)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	total, err := repo.CountReservations(ctx)
	if err != nil || total != 2 {
		t.Errorf("expected 2 reservations, got %d (%v)", total, err)
	}
	confirmed, err := repo.CountReservationsByStatus(ctx, domain.StatusConfirmed)
	if err != nil || confirmed != 1 {
		t.Errorf("expected 1 confirmed, got %d (%v)", confirmed, err)
	}
	pending, err := repo.CountReservationsByStatus(ctx, domain.StatusPending)
	if err != nil || pending != 1 {
		t.Errorf("expected 1 pending, got %d (%v)", pending, err)
	}
}
