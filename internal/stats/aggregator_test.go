package stats

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/tourinfo/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSource(name string, value int64) Source {
	return Source{Name: name, Fetch: func(context.Context) (int64, error) { return value, nil }}
}

func failingSource(name string) Source {
	return Source{Name: name, Fetch: func(context.Context) (int64, error) {
		return 0, errors.New("query failed")
	}}
}

func slowSource(name string, value int64, delay time.Duration) Source {
	return Source{Name: name, Fetch: func(ctx context.Context) (int64, error) {
		time.Sleep(delay)
		return value, nil
	}}
}

func TestAggregate_AllSucceed(t *testing.T) {
	a := New(observability.NewLogger(), time.Second,
		fixedSource("total", 10),
		fixedSource("pending", 3),
	)

	snap := a.Aggregate(context.Background())

	assert.False(t, snap.TimedOut)
	assert.Empty(t, snap.Failed)
	assert.Equal(t, int64(10), snap.Values["total"])
	assert.Equal(t, int64(3), snap.Values["pending"])
}

func TestAggregate_OneFailureDoesNotBlockOthers(t *testing.T) {
	a := New(observability.NewLogger(), time.Second,
		fixedSource("total", 10),
		failingSource("unread"),
		fixedSource("visitors", 42),
	)

	snap := a.Aggregate(context.Background())

	assert.False(t, snap.TimedOut)
	assert.Equal(t, []string{"unread"}, snap.Failed)
	assert.Equal(t, int64(10), snap.Values["total"])
	assert.Equal(t, int64(42), snap.Values["visitors"])
	assert.Equal(t, int64(0), snap.Values["unread"], "failed source defaults to zero")
}

func TestAggregate_DeadlineReturnsPartialData(t *testing.T) {
	a := New(observability.NewLogger(), 50*time.Millisecond,
		fixedSource("fast", 7),
		slowSource("slow", 99, 500*time.Millisecond),
	)

	start := time.Now()
	snap := a.Aggregate(context.Background())
	elapsed := time.Since(start)

	assert.True(t, snap.TimedOut)
	assert.Less(t, elapsed, 300*time.Millisecond, "aggregate must not wait for the slow source")
	assert.Equal(t, int64(7), snap.Values["fast"])
	assert.Equal(t, int64(0), snap.Values["slow"], "unresolved source defaults to zero")
}

func TestAggregate_AllFailStillProducesSnapshot(t *testing.T) {
	a := New(observability.NewLogger(), time.Second,
		failingSource("a"),
		failingSource("b"),
	)

	snap := a.Aggregate(context.Background())

	require.NotNil(t, snap.Values, "composite is always producible")
	assert.False(t, snap.TimedOut)
	assert.Len(t, snap.Failed, 2)
	assert.Equal(t, int64(0), snap.Values["a"])
	assert.Equal(t, int64(0), snap.Values["b"])
}

func TestAggregate_NoSources(t *testing.T) {
	a := New(observability.NewLogger(), time.Second)

	snap := a.Aggregate(context.Background())

	assert.False(t, snap.TimedOut)
	assert.Empty(t, snap.Values)
}
