package toast

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/notifier/internal/model"
	"github.com/jwalitptl/notifier/pkg/logger"
)

type fakeMarker struct {
	mu     sync.Mutex
	marked []uuid.UUID
	err    error
}

func (f *fakeMarker) MarkAsRead(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.marked = append(f.marked, id)
	return nil
}

func (f *fakeMarker) markedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.marked)
}

type fakeNavigator struct {
	mu      sync.Mutex
	focused int
	urls    []string
}

func (f *fakeNavigator) Focus() {
	f.mu.Lock()
	f.focused++
	f.mu.Unlock()
}

func (f *fakeNavigator) Navigate(url string) {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func newTestManager(t *testing.T) (*Manager, *fakeMarker, *fakeNavigator) {
	t.Helper()
	marker := &fakeMarker{}
	nav := &fakeNavigator{}
	m := NewManager(marker, nav, testLogger(), nil)
	t.Cleanup(m.Close)
	return m, marker, nav
}

func testEvent(priority model.Priority) model.Event {
	return model.Event{
		ID:        uuid.New(),
		Category:  model.CategoryMessage,
		Title:     "Refill approved",
		Message:   "Your refill request was approved",
		Priority:  priority,
		CreatedAt: time.Now(),
	}
}

func TestToastIDsAreMonotonic(t *testing.T) {
	m, _, _ := newTestManager(t)

	a := m.Create(testEvent(model.PriorityNormal), time.Minute)
	b := m.Create(testEvent(model.PriorityNormal), time.Minute)
	c := m.Create(testEvent(model.PriorityNormal), time.Minute)

	assert.Less(t, a.ToastID, b.ToastID)
	assert.Less(t, b.ToastID, c.ToastID)
}

func TestCreateComputesExpiry(t *testing.T) {
	m, _, _ := newTestManager(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	m.WithClock(func() time.Time { return now })

	entry := m.Create(testEvent(model.PriorityNormal), 5*time.Second)
	assert.Equal(t, now.Add(5*time.Second), entry.ExpiresAt)
	assert.Equal(t, model.ToastStateActive, entry.State)
}

func TestAutoExpiryRemovesEntry(t *testing.T) {
	m, _, _ := newTestManager(t)

	m.Create(testEvent(model.PriorityNormal), 30*time.Millisecond)
	require.Len(t, m.Active(), 1)

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, m.Active())
}

func TestUrgentNeverAutoExpires(t *testing.T) {
	m, _, _ := newTestManager(t)

	entry := m.Create(testEvent(model.PriorityUrgent), 20*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	require.Len(t, m.Active(), 1)
	assert.True(t, m.Dismiss(entry.ToastID))
	assert.Empty(t, m.Active())
}

func TestPinSurvivesExpiryThenDismissRemoves(t *testing.T) {
	m, _, _ := newTestManager(t)

	entry := m.Create(testEvent(model.PriorityNormal), 40*time.Millisecond)
	require.True(t, m.Pin(entry.ToastID))

	time.Sleep(120 * time.Millisecond)
	active := m.Active()
	require.Len(t, active, 1)
	assert.True(t, active[0].IsPinned)
	assert.Equal(t, model.ToastStatePinned, active[0].State)
	assert.True(t, active[0].ExpiresAt.IsZero())

	assert.True(t, m.Dismiss(entry.ToastID))
	assert.Empty(t, m.Active())
}

func TestPinIsIdempotent(t *testing.T) {
	m, _, _ := newTestManager(t)

	entry := m.Create(testEvent(model.PriorityNormal), time.Minute)
	// Hover fires pin repeatedly.
	assert.True(t, m.Pin(entry.ToastID))
	assert.True(t, m.Pin(entry.ToastID))
	assert.True(t, m.Pin(entry.ToastID))

	require.Len(t, m.Active(), 1)
}

func TestPinUnknownID(t *testing.T) {
	m, _, _ := newTestManager(t)
	assert.False(t, m.Pin(999))
}

func TestDismissAllClearsMixedCollection(t *testing.T) {
	m, _, _ := newTestManager(t)

	m.Create(testEvent(model.PriorityNormal), 50*time.Millisecond)
	pinned := m.Create(testEvent(model.PriorityNormal), 50*time.Millisecond)
	m.Pin(pinned.ToastID)
	m.Create(testEvent(model.PriorityUrgent), 50*time.Millisecond)

	m.DismissAll()
	assert.Empty(t, m.Active())

	// No late expiry callback resurrects or panics after the timers were
	// cancelled.
	time.Sleep(120 * time.Millisecond)
	assert.Empty(t, m.Active())
}

func TestClickMarksUnreadThenDismissesThenNavigates(t *testing.T) {
	m, marker, nav := newTestManager(t)

	event := testEvent(model.PriorityNormal)
	event.ActionURL = "/orders/42"
	entry := m.Create(event, time.Minute)

	require.True(t, m.Click(entry.ToastID))

	assert.Empty(t, m.Active())
	nav.mu.Lock()
	assert.Equal(t, 1, nav.focused)
	assert.Equal(t, []string{"/orders/42"}, nav.urls)
	nav.mu.Unlock()

	assert.Eventually(t, func() bool { return marker.markedCount() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestClickOnReadEventSkipsMarkAsRead(t *testing.T) {
	m, marker, _ := newTestManager(t)

	event := testEvent(model.PriorityNormal)
	event.IsRead = true
	entry := m.Create(event, time.Minute)

	require.True(t, m.Click(entry.ToastID))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, marker.markedCount())
}

func TestClickNavigatesEvenWhenMarkAsReadFails(t *testing.T) {
	m, marker, nav := newTestManager(t)
	marker.err = assert.AnError

	event := testEvent(model.PriorityNormal)
	event.ActionURL = "/tickets/7"
	entry := m.Create(event, time.Minute)

	require.True(t, m.Click(entry.ToastID))

	nav.mu.Lock()
	defer nav.mu.Unlock()
	assert.Equal(t, []string{"/tickets/7"}, nav.urls)
}

func TestCloseCancelsExpiryTimers(t *testing.T) {
	marker := &fakeMarker{}
	m := NewManager(marker, &fakeNavigator{}, testLogger(), nil)

	m.Create(testEvent(model.PriorityNormal), 30*time.Millisecond)
	m.Close()

	time.Sleep(100 * time.Millisecond)
	// The entry is still there: its timer was cleared on close.
	assert.Len(t, m.Active(), 1)
}
