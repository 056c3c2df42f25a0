package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type Reservation struct {
	ID            uuid.UUID
	Name          string
	Email         string
	Phone         string
	ServiceID     uuid.UUID
	ServiceName   string
	ScheduledAt   time.Time
	Participants  int
	Notes         string
	Status        ReservationStatus
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewReservation(name, email, phone string, serviceID uuid.UUID, serviceName string, scheduledAt time.Time, participants int, notes string) Reservation {
	now := time.Now()
	return Reservation{
		ID:            uuid.New(),
		Name:          name,
		Email:         email,
		Phone:         phone,
		ServiceID:     serviceID,
		ServiceName:   serviceName,
		ScheduledAt:   scheduledAt,
		Participants:  participants,
		Notes:         notes,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (r Reservation) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(r.Email) == "" || !strings.Contains(r.Email, "@") {
		return ErrInvalidInput
	}
	if r.ServiceID == uuid.Nil {
		return ErrInvalidInput
	}
	if r.Participants < 1 {
		return ErrInvalidInput
	}
	return nil
}

func ValidStatus(s ReservationStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}
