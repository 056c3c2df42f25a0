package delivery

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/tourinfo/internal/domain"
	"github.com/robertarktes/tourinfo/internal/observability"
)

// Dispatcher sends each message through a fixed, ordered list of channels:
// primary first, secondary only if the primary fails or panics. It never
// returns an error or panics — total exhaustion is reported in the outcome.
type Dispatcher struct {
	channels []Channel
	logger   observability.Logger
}

func NewDispatcher(primary, secondary Channel, logger observability.Logger) *Dispatcher {
	return &Dispatcher{channels: []Channel{primary, secondary}, logger: logger}
}

func (d *Dispatcher) Send(ctx context.Context, msg domain.DeliveryMessage) domain.DeliveryOutcome {
	if strings.TrimSpace(msg.To) == "" {
		observability.DeliveryAttempts.WithLabelValues("none", string(msg.Kind), "invalid").Inc()
		return domain.DeliveryOutcome{Success: false, Err: "empty recipient"}
	}

	var lastErr error
	lastProvider := ""
	for i, ch := range d.channels {
		if i > 0 {
			observability.DeliveryFallbacks.Inc()
		}
		id, err := d.attempt(ctx, ch, msg)
		lastProvider = ch.Name()
		if err == nil {
			observability.DeliveryAttempts.WithLabelValues(ch.Name(), string(msg.Kind), "success").Inc()
			d.logger.WithField("provider", ch.Name()).WithField("kind", string(msg.Kind)).WithField("message_id", id).Info("message delivered")
			return domain.DeliveryOutcome{Success: true, Provider: ch.Name(), FallbackUsed: i > 0}
		}
		lastErr = err
		observability.DeliveryAttempts.WithLabelValues(ch.Name(), string(msg.Kind), "failure").Inc()
		d.logger.WithField("provider", ch.Name()).WithField("kind", string(msg.Kind)).Warn("delivery attempt failed: ", err)
	}

	d.logger.WithField("kind", string(msg.Kind)).Error("all delivery channels exhausted: ", lastErr)
	return domain.DeliveryOutcome{
		Success:      false,
		Provider:     lastProvider,
		FallbackUsed: true,
		Err:          lastErr.Error(),
	}
}

// attempt contains a single channel call, converting panics into errors so
// a misbehaving provider SDK cannot take the fan-out task down.
func (d *Dispatcher) attempt(ctx context.Context, ch Channel, msg domain.DeliveryMessage) (id string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("channel %s panicked: %v", ch.Name(), r)
		}
	}()
	return ch.Deliver(ctx, msg)
}
