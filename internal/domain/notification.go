package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationReservation NotificationType = "reservation"
	NotificationPayment     NotificationType = "payment"
	NotificationSystem      NotificationType = "system"
)

// EmergencyNotification lives only in process memory. It is the delivery
// channel of last resort when every network-backed channel is down.
type EmergencyNotification struct {
	ID        uuid.UUID
	Type      NotificationType
	Title     string
	Message   string
	IsRead    bool
	CreatedAt time.Time
	Metadata  map[string]string
}

// AdminNotice is the back-office notification row persisted in the notice
// store.
type AdminNotice struct {
	ID        uuid.UUID
	Type      NotificationType
	Title     string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}
