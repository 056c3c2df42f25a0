package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/robertarktes/tourinfo/internal/domain"
	"github.com/robertarktes/tourinfo/internal/mail"
	"github.com/robertarktes/tourinfo/internal/observability"
)

type NoticeStore interface {
	Insert(ctx context.Context, notice domain.AdminNotice) error
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte) error
}

type Dispatcher interface {
	Send(ctx context.Context, msg domain.DeliveryMessage) domain.DeliveryOutcome
}

type Feed interface {
	Publish(typ domain.NotificationType, title, message string, metadata map[string]string) domain.EmergencyNotification
}

// Orchestrator schedules the fan-out that follows a reservation write.
// Tasks are fire-and-forget: the caller returns as soon as they are
// scheduled, no task's failure or panic reaches another task or the
// caller, and results are only logged. There is no deduplication — a
// repeated call for the same record fans out again.
type Orchestrator struct {
	notices    NoticeStore
	events     EventPublisher
	dispatcher Dispatcher
	feed       Feed
	builder    *mail.Builder
	logger     observability.Logger
	wg         sync.WaitGroup
}

func New(notices NoticeStore, events EventPublisher, dispatcher Dispatcher, feed Feed, builder *mail.Builder, logger observability.Logger) *Orchestrator {
	return &Orchestrator{
		notices:    notices,
		events:     events,
		dispatcher: dispatcher,
		feed:       feed,
		builder:    builder,
		logger:     logger,
	}
}

// ReservationCreated schedules four independent tasks. Each closes over
// its own copy of rec; there is no shared mutable state between them and
// no ordering guarantee.
func (o *Orchestrator) ReservationCreated(rec domain.Reservation) {
	o.spawn("admin_notice", func(ctx context.Context) {
		o.recordNotice(ctx, "reservation.created", rec, domain.AdminNotice{
			Type:    domain.NotificationReservation,
			Title:   "New reservation",
			Message: fmt.Sprintf("%s booked %s for %d participant(s)", rec.Name, rec.ServiceName, rec.Participants),
		})
	})

	o.spawn("confirmation_email", func(ctx context.Context) {
		out := o.dispatcher.Send(ctx, o.builder.Confirmation(rec))
		o.logOutcome(rec, out)
	})

	o.spawn("operator_email", func(ctx context.Context) {
		out := o.dispatcher.Send(ctx, o.builder.OperatorNotice(rec))
		o.logOutcome(rec, out)
	})

	o.spawn("emergency_feed", func(ctx context.Context) {
		o.feed.Publish(domain.NotificationReservation,
			"New reservation: "+rec.ServiceName,
			fmt.Sprintf("%s (%s) booked %s for %d participant(s)", rec.Name, rec.Email, rec.ServiceName, rec.Participants),
			map[string]string{"reservation_id": rec.ID.String()},
		)
	})
}

// ReservationUpdated runs the smaller fan-out for a status change: admin
// notice plus one customer email with the kind picked by the new status.
func (o *Orchestrator) ReservationUpdated(rec domain.Reservation, previous domain.ReservationStatus) {
	o.spawn("admin_notice", func(ctx context.Context) {
		o.recordNotice(ctx, "reservation.status_changed", rec, domain.AdminNotice{
			Type:    domain.NotificationReservation,
			Title:   "Reservation status changed",
			Message: fmt.Sprintf("Reservation for %s moved %s -> %s", rec.ServiceName, previous, rec.Status),
		})
	})

	o.spawn("status_email", func(ctx context.Context) {
		out := o.dispatcher.Send(ctx, o.builder.StatusChange(rec))
		o.logOutcome(rec, out)
	})
}

// Wait drains in-flight tasks. Used only at shutdown; scheduled tasks are
// otherwise not cancellable.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) spawn(name string, fn func(ctx context.Context)) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				o.logger.WithField("task", name).Error("fan-out task panicked: ", r)
			}
		}()
		fn(context.Background())
	}()
}

func (o *Orchestrator) recordNotice(ctx context.Context, eventType string, rec domain.Reservation, notice domain.AdminNotice) {
	if err := o.notices.Insert(ctx, notice); err != nil {
		o.logger.WithField("reservation_id", rec.ID.String()).Error("failed to record admin notice: ", err)
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"reservation_id": rec.ID,
		"service_name":   rec.ServiceName,
		"status":         rec.Status,
		"payment_status": rec.PaymentStatus,
	})
	if err := o.events.Publish(ctx, eventType, payload); err != nil {
		o.logger.WithField("reservation_id", rec.ID.String()).Error("failed to publish event: ", err)
	}
}

func (o *Orchestrator) logOutcome(rec domain.Reservation, out domain.DeliveryOutcome) {
	entry := o.logger.
		WithField("reservation_id", rec.ID.String()).
		WithField("provider", out.Provider).
		WithField("fallback_used", out.FallbackUsed)
	if out.Success {
		entry.Info("reservation mail delivered")
		return
	}
	entry.Error("reservation mail failed: ", out.Err)
}
