package stats

import (
	"context"

	"github.com/robertarktes/tourinfo/internal/domain"
)

type ReservationCounter interface {
	CountReservations(ctx context.Context) (int64, error)
	CountReservationsByStatus(ctx context.Context, status domain.ReservationStatus) (int64, error)
}

type NoticeCounter interface {
	CountUnreadNotices(ctx context.Context) (int64, error)
}

type VisitorCounter interface {
	VisitorCount(ctx context.Context) (int64, error)
}

// DashboardSources assembles the standard dashboard query set against the
// three backing stores.
func DashboardSources(reservations ReservationCounter, notices NoticeCounter, visitors VisitorCounter) []Source {
	return []Source{
		{Name: "reservations_total", Fetch: reservations.CountReservations},
		{Name: "reservations_pending", Fetch: func(ctx context.Context) (int64, error) {
			return reservations.CountReservationsByStatus(ctx, domain.StatusPending)
		}},
		{Name: "reservations_confirmed", Fetch: func(ctx context.Context) (int64, error) {
			return reservations.CountReservationsByStatus(ctx, domain.StatusConfirmed)
		}},
		{Name: "unread_notices", Fetch: notices.CountUnreadNotices},
		{Name: "monthly_visitors", Fetch: visitors.VisitorCount},
	}
}
