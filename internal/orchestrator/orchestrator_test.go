package orchestrator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robertarktes/tourinfo/internal/domain"
	"github.com/robertarktes/tourinfo/internal/mail"
	"github.com/robertarktes/tourinfo/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	notices []domain.AdminNotice
	fail    error
	panics  bool
}

func (s *fakeStore) Insert(ctx context.Context, notice domain.AdminNotice) error {
	if s.panics {
		panic("store exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.notices = append(s.notices, notice)
	return nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []string
}

func (e *fakeEvents) Publish(ctx context.Context, eventType string, payload []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, eventType)
	return nil
}

type fakeDispatcher struct {
	mu       sync.Mutex
	messages []domain.DeliveryMessage
	outcome  domain.DeliveryOutcome
	block    chan struct{} // when set, Send blocks until closed
}

func (d *fakeDispatcher) Send(ctx context.Context, msg domain.DeliveryMessage) domain.DeliveryOutcome {
	if d.block != nil {
		<-d.block
	}
	d.mu.Lock()
	d.messages = append(d.messages, msg)
	d.mu.Unlock()
	return d.outcome
}

func (d *fakeDispatcher) sent() []domain.DeliveryMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.DeliveryMessage, len(d.messages))
	copy(out, d.messages)
	return out
}

type fakeFeed struct {
	mu      sync.Mutex
	entries []domain.EmergencyNotification
}

func (f *fakeFeed) Publish(typ domain.NotificationType, title, message string, metadata map[string]string) domain.EmergencyNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := domain.EmergencyNotification{ID: uuid.New(), Type: typ, Title: title, Message: message, Metadata: metadata}
	f.entries = append(f.entries, n)
	return n
}

func (f *fakeFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func testReservation() domain.Reservation {
	return domain.NewReservation(
		"Alice", "a@b.com", "+100",
		uuid.New(), "Tour X",
		time.Now().Add(48*time.Hour), 2, "",
	)
}

func newTestOrchestrator(store *fakeStore, events *fakeEvents, disp *fakeDispatcher, f *fakeFeed) *Orchestrator {
	builder := mail.NewBuilder("operator@tourinfo.example", "https://tourinfo.example/pay")
	return New(store, events, disp, f, builder, observability.NewLogger())
}

func TestReservationCreated_FansOutFourTasks(t *testing.T) {
	store := &fakeStore{}
	events := &fakeEvents{}
	disp := &fakeDispatcher{outcome: domain.DeliveryOutcome{Success: true, Provider: "primary"}}
	f := &fakeFeed{}
	o := newTestOrchestrator(store, events, disp, f)

	rec := testReservation()
	o.ReservationCreated(rec)
	o.Wait()

	assert.Len(t, store.notices, 1)
	assert.Equal(t, []string{"reservation.created"}, events.events)
	assert.Equal(t, 1, f.count())

	msgs := disp.sent()
	require.Len(t, msgs, 2)
	var customer, operator *domain.DeliveryMessage
	for i := range msgs {
		if msgs[i].Kind == domain.KindConfirmation {
			customer = &msgs[i]
		} else {
			operator = &msgs[i]
		}
	}
	require.NotNil(t, customer)
	require.NotNil(t, operator)
	assert.Equal(t, "a@b.com", customer.To)
	assert.Contains(t, customer.Subject, "Tour X")
	assert.Equal(t, "operator@tourinfo.example", operator.To)
	assert.Equal(t, "a@b.com", operator.ReplyTo, "operator notice replies to the customer")
}

func TestReservationCreated_ReturnsBeforeDispatchSettles(t *testing.T) {
	store := &fakeStore{}
	events := &fakeEvents{}
	disp := &fakeDispatcher{
		outcome: domain.DeliveryOutcome{Success: true},
		block:   make(chan struct{}),
	}
	f := &fakeFeed{}
	o := newTestOrchestrator(store, events, disp, f)

	done := make(chan struct{})
	go func() {
		o.ReservationCreated(testReservation())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ReservationCreated blocked on dispatch")
	}
	require.Empty(t, disp.sent(), "no dispatch has settled yet")

	close(disp.block)
	o.Wait()
	assert.Len(t, disp.sent(), 2)
}

func TestReservationCreated_FeedEntrySurvivesTotalDeliveryFailure(t *testing.T) {
	store := &fakeStore{fail: errors.New("mongo down")}
	events := &fakeEvents{}
	disp := &fakeDispatcher{outcome: domain.DeliveryOutcome{Success: false, FallbackUsed: true, Err: "both channels down"}}
	f := &fakeFeed{}
	o := newTestOrchestrator(store, events, disp, f)

	o.ReservationCreated(testReservation())
	o.Wait()

	assert.Equal(t, 1, f.count(), "emergency feed is independent of every other channel")
}

func TestReservationCreated_PanicInOneTaskIsolated(t *testing.T) {
	store := &fakeStore{panics: true}
	events := &fakeEvents{}
	disp := &fakeDispatcher{outcome: domain.DeliveryOutcome{Success: true}}
	f := &fakeFeed{}
	o := newTestOrchestrator(store, events, disp, f)

	assert.NotPanics(t, func() {
		o.ReservationCreated(testReservation())
		o.Wait()
	})

	assert.Len(t, disp.sent(), 2, "mail tasks unaffected by the panicking task")
	assert.Equal(t, 1, f.count())
}

func TestReservationUpdated_SmallerFanOut(t *testing.T) {
	store := &fakeStore{}
	events := &fakeEvents{}
	disp := &fakeDispatcher{outcome: domain.DeliveryOutcome{Success: true}}
	f := &fakeFeed{}
	o := newTestOrchestrator(store, events, disp, f)

	rec := testReservation()
	rec.Status = domain.StatusConfirmed
	o.ReservationUpdated(rec, domain.StatusPending)
	o.Wait()

	assert.Len(t, store.notices, 1)
	assert.Equal(t, []string{"reservation.status_changed"}, events.events)
	assert.Equal(t, 0, f.count(), "status updates do not publish feed entries")

	msgs := disp.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.KindPaymentLink, msgs[0].Kind, "confirmation carries the payment link")
	assert.True(t, strings.Contains(msgs[0].HTML, rec.ID.String()), "payment link embeds the reservation id")
}
