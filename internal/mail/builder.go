package mail

import (
	"strconv"

	"github.com/robertarktes/tourinfo/internal/domain"
)

const dateLayout = "2006-01-02 15:04"

// Builder constructs delivery messages for a reservation. Messages are
// values: built fresh per send, immutable afterwards.
type Builder struct {
	operatorEmail  string
	paymentBaseURL string
}

func NewBuilder(operatorEmail, paymentBaseURL string) *Builder {
	return &Builder{operatorEmail: operatorEmail, paymentBaseURL: paymentBaseURL}
}

func (b *Builder) fields(rec domain.Reservation) map[string]string {
	return map[string]string{
		"name":         rec.Name,
		"email":        rec.Email,
		"phone":        rec.Phone,
		"service_name": rec.ServiceName,
		"date":         rec.ScheduledAt.Format(dateLayout),
		"participants": strconv.Itoa(rec.Participants),
		"notes":        rec.Notes,
		"status":       string(rec.Status),
		"payment_url":  b.paymentBaseURL + "/" + rec.ID.String(),
	}
}

func (b *Builder) Confirmation(rec domain.Reservation) domain.DeliveryMessage {
	return domain.DeliveryMessage{
		To:      rec.Email,
		Subject: "Reservation received: " + rec.ServiceName,
		HTML:    Render(confirmationHTML, b.fields(rec)),
		Kind:    domain.KindConfirmation,
	}
}

// OperatorNotice goes to the back-office operator with reply-to set to the
// customer, so a reply lands in the customer's inbox directly.
func (b *Builder) OperatorNotice(rec domain.Reservation) domain.DeliveryMessage {
	return domain.DeliveryMessage{
		To:      b.operatorEmail,
		ReplyTo: rec.Email,
		Subject: "New reservation: " + rec.ServiceName,
		HTML:    Render(operatorNoticeHTML, b.fields(rec)),
		Kind:    domain.KindAdminNotice,
	}
}

// StatusChange picks the message kind from the new status: confirmation of
// a reservation means payment is now due, so it carries the payment link.
func (b *Builder) StatusChange(rec domain.Reservation) domain.DeliveryMessage {
	if rec.Status == domain.StatusConfirmed {
		return domain.DeliveryMessage{
			To:      rec.Email,
			Subject: "Reservation confirmed: " + rec.ServiceName,
			HTML:    Render(paymentLinkHTML, b.fields(rec)),
			Kind:    domain.KindPaymentLink,
		}
	}
	return domain.DeliveryMessage{
		To:      rec.Email,
		Subject: "Reservation update: " + rec.ServiceName,
		HTML:    Render(statusChangeHTML, b.fields(rec)),
		Kind:    domain.KindConfirmation,
	}
}
