package domain

type MessageKind string

const (
	KindConfirmation MessageKind = "confirmation"
	KindPaymentLink  MessageKind = "payment_link"
	KindAdminNotice  MessageKind = "admin_notice"
)

// DeliveryMessage is built fresh per send attempt and never mutated after
// construction.
type DeliveryMessage struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Kind    MessageKind
}

// DeliveryOutcome is the dispatcher's result. It is a value, not an error:
// total delivery failure is reported through Success/Err, never raised
// across the orchestrator boundary.
type DeliveryOutcome struct {
	Success      bool
	Provider     string
	FallbackUsed bool
	Err          string
}
