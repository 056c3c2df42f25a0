package feed

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/tourinfo/internal/domain"
	"github.com/robertarktes/tourinfo/internal/observability"
)

// Listener receives the full notification list after a structural change.
type Listener func([]domain.EmergencyNotification)

// Feed is the process-local notification store of last resort. Every
// operation is synchronous, in-memory and infallible; it stays available
// when every network-backed channel is down. Constructed once at startup,
// torn down only by process exit. Entries accumulate until deleted.
type Feed struct {
	mu           sync.Mutex
	entries      []domain.EmergencyNotification
	listeners    map[int]Listener
	nextListener int
	lastNotified []domain.EmergencyNotification
}

// New seeds the feed with the system-status entries every fresh process
// starts with.
func New() *Feed {
	f := &Feed{listeners: make(map[int]Listener)}
	f.Publish(domain.NotificationSystem, "Notification service online", "In-process notification feed is active.", nil)
	return f
}

func (f *Feed) Publish(typ domain.NotificationType, title, message string, metadata map[string]string) domain.EmergencyNotification {
	f.mu.Lock()
	n := domain.EmergencyNotification{
		ID:        uuid.New(),
		Type:      typ,
		Title:     title,
		Message:   message,
		IsRead:    false,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}
	f.entries = append(f.entries, n)
	observability.FeedEntries.Set(float64(len(f.entries)))
	listeners, snapshot := f.changedLocked()
	f.mu.Unlock()

	f.notify(listeners, snapshot)
	return n
}

func (f *Feed) List() []domain.EmergencyNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneEntries(f.entries)
}

func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.entries {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// MarkRead flips only the matching entry. Unknown ids and already-read
// entries are no-ops and fire no listener.
func (f *Feed) MarkRead(id uuid.UUID) {
	f.mu.Lock()
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i].IsRead = true
			break
		}
	}
	listeners, snapshot := f.changedLocked()
	f.mu.Unlock()

	f.notify(listeners, snapshot)
}

func (f *Feed) Delete(id uuid.UUID) {
	f.mu.Lock()
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			break
		}
	}
	observability.FeedEntries.Set(float64(len(f.entries)))
	listeners, snapshot := f.changedLocked()
	f.mu.Unlock()

	f.notify(listeners, snapshot)
}

// Subscribe registers a listener and returns its unsubscribe func. The
// listener is not called with the current state; it fires on the next
// structural change.
func (f *Feed) Subscribe(l Listener) func() {
	f.mu.Lock()
	id := f.nextListener
	f.nextListener++
	f.listeners[id] = l
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

// changedLocked compares the current entries against the last notified
// snapshot. Structurally identical states yield no listeners, which keeps
// subscribers from re-rendering on no-op mutations.
func (f *Feed) changedLocked() ([]Listener, []domain.EmergencyNotification) {
	snapshot := cloneEntries(f.entries)
	if equalSnapshots(snapshot, f.lastNotified) {
		return nil, nil
	}
	f.lastNotified = snapshot
	listeners := make([]Listener, 0, len(f.listeners))
	for _, l := range f.listeners {
		listeners = append(listeners, l)
	}
	return listeners, snapshot
}

// notify runs outside the lock over an immutable snapshot, so a listener
// that calls back into the feed cannot deadlock or observe a half-updated
// list.
func (f *Feed) notify(listeners []Listener, snapshot []domain.EmergencyNotification) {
	for _, l := range listeners {
		l(snapshot)
	}
}

func cloneEntries(entries []domain.EmergencyNotification) []domain.EmergencyNotification {
	out := make([]domain.EmergencyNotification, len(entries))
	copy(out, entries)
	return out
}

func equalSnapshots(a, b []domain.EmergencyNotification) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Type != b[i].Type || a[i].Title != b[i].Title ||
			a[i].Message != b[i].Message || a[i].IsRead != b[i].IsRead {
			return false
		}
	}
	return true
}
