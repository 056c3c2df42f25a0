package delivery

import (
	"context"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/tourinfo/internal/domain"
	"github.com/robertarktes/tourinfo/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	name    string
	deliver func(ctx context.Context, msg domain.DeliveryMessage) (string, error)

	mu    sync.Mutex
	calls []domain.DeliveryMessage
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Deliver(ctx context.Context, msg domain.DeliveryMessage) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, msg)
	f.mu.Unlock()
	return f.deliver(ctx, msg)
}

func (f *fakeChannel) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func okChannel(name, id string) *fakeChannel {
	return &fakeChannel{name: name, deliver: func(context.Context, domain.DeliveryMessage) (string, error) {
		return id, nil
	}}
}

func failChannel(name string) *fakeChannel {
	return &fakeChannel{name: name, deliver: func(context.Context, domain.DeliveryMessage) (string, error) {
		return "", errors.New("provider down")
	}}
}

func testMessage() domain.DeliveryMessage {
	return domain.DeliveryMessage{
		To:      "a@b.com",
		Subject: "Reservation received: Tour X",
		HTML:    "<html></html>",
		Kind:    domain.KindConfirmation,
	}
}

func TestDispatcher_PrimarySucceeds(t *testing.T) {
	primary := okChannel("primary", "msg-1")
	secondary := okChannel("secondary", "msg-2")
	d := NewDispatcher(primary, secondary, observability.NewLogger())

	out := d.Send(context.Background(), testMessage())

	assert.True(t, out.Success)
	assert.Equal(t, "primary", out.Provider)
	assert.False(t, out.FallbackUsed)
	assert.Equal(t, 1, primary.callCount())
	assert.Equal(t, 0, secondary.callCount(), "secondary must not be attempted when primary succeeds")
}

func TestDispatcher_PrimaryFailsSecondaryAttemptedOnce(t *testing.T) {
	primary := failChannel("primary")
	secondary := okChannel("secondary", "")
	d := NewDispatcher(primary, secondary, observability.NewLogger())

	out := d.Send(context.Background(), testMessage())

	require.True(t, out.Success)
	assert.Equal(t, "secondary", out.Provider)
	assert.True(t, out.FallbackUsed)
	assert.Equal(t, 1, secondary.callCount(), "secondary must be attempted exactly once")

	// Fallback carries the identical message.
	assert.Equal(t, "a@b.com", secondary.calls[0].To)
	assert.Equal(t, primary.calls[0].Subject, secondary.calls[0].Subject)
}

func TestDispatcher_PrimaryPanicTriggersFallback(t *testing.T) {
	primary := &fakeChannel{name: "primary", deliver: func(context.Context, domain.DeliveryMessage) (string, error) {
		panic("sdk bug")
	}}
	secondary := okChannel("secondary", "msg-2")
	d := NewDispatcher(primary, secondary, observability.NewLogger())

	out := d.Send(context.Background(), testMessage())

	assert.True(t, out.Success)
	assert.True(t, out.FallbackUsed)
	assert.Equal(t, 1, secondary.callCount())
}

func TestDispatcher_BothFail(t *testing.T) {
	primary := failChannel("primary")
	secondary := failChannel("secondary")
	d := NewDispatcher(primary, secondary, observability.NewLogger())

	var out domain.DeliveryOutcome
	assert.NotPanics(t, func() {
		out = d.Send(context.Background(), testMessage())
	})

	assert.False(t, out.Success)
	assert.True(t, out.FallbackUsed)
	assert.NotEmpty(t, out.Err)
	assert.Equal(t, 1, primary.callCount())
	assert.Equal(t, 1, secondary.callCount())
}

func TestDispatcher_EmptyRecipientFailsFast(t *testing.T) {
	primary := okChannel("primary", "msg-1")
	secondary := okChannel("secondary", "msg-2")
	d := NewDispatcher(primary, secondary, observability.NewLogger())

	msg := testMessage()
	msg.To = "   "
	out := d.Send(context.Background(), msg)

	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Err)
	assert.Equal(t, 0, primary.callCount(), "no provider call on validation failure")
	assert.Equal(t, 0, secondary.callCount())
}

func TestDispatcher_EmptyProviderIDIsSuccess(t *testing.T) {
	primary := okChannel("primary", "")
	d := NewDispatcher(primary, okChannel("secondary", ""), observability.NewLogger())

	out := d.Send(context.Background(), testMessage())

	assert.True(t, out.Success)
	assert.False(t, out.FallbackUsed)
}
