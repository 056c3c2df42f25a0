package delivery

import (
	"context"

	"github.com/robertarktes/tourinfo/internal/domain"
)

// Channel is one way to get a message out. Implementations may fail or
// panic; the dispatcher contains both.
type Channel interface {
	Name() string
	// Deliver returns the provider's message id, which may be empty —
	// a successful send without an id is still a success.
	Deliver(ctx context.Context, msg domain.DeliveryMessage) (string, error)
}
