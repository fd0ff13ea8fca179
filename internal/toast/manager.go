// Package toast manages the transient in-app toast collection. Each entry is
// a small state machine: active entries auto-expire unless pinned or urgent,
// pinned entries only leave by explicit dismissal, and nothing survives a
// restart.
package toast

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/notifier/internal/model"
	"github.com/jwalitptl/notifier/pkg/logger"
	"github.com/jwalitptl/notifier/pkg/metrics"
	"github.com/jwalitptl/notifier/pkg/surface"
)

const markAsReadTimeout = 5 * time.Second

// ReadMarker is the slice of the list hook the toast manager needs.
type ReadMarker interface {
	MarkAsRead(ctx context.Context, id uuid.UUID) error
}

// Manager owns the active-toast collection and its expiry timers.
type Manager struct {
	marker    ReadMarker
	navigator surface.Navigator
	logger    *logger.Logger
	metrics   *metrics.Metrics
	clock     func() time.Time

	mu      sync.Mutex
	entries map[int64]*model.ToastEntry
	timers  map[int64]*time.Timer
	nextID  int64
	closed  bool
}

func NewManager(marker ReadMarker, navigator surface.Navigator, log *logger.Logger, m *metrics.Metrics) *Manager {
	return &Manager{
		marker:    marker,
		navigator: navigator,
		logger:    log,
		metrics:   m,
		clock:     time.Now,
		entries:   make(map[int64]*model.ToastEntry),
		timers:    make(map[int64]*time.Timer),
	}
}

// WithClock overrides the clock, for tests.
func (m *Manager) WithClock(clock func() time.Time) *Manager {
	m.clock = clock
	return m
}

// Create inserts a new active entry and schedules auto-removal at
// now+duration. Urgent events never auto-expire regardless of pin state.
func (m *Manager) Create(event model.Event, duration time.Duration) model.ToastEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID

	entry := &model.ToastEntry{
		Event:     event,
		ToastID:   id,
		ExpiresAt: m.clock().Add(duration),
		State:     model.ToastStateActive,
	}
	m.entries[id] = entry

	if event.Priority != model.PriorityUrgent && !m.closed {
		m.timers[id] = time.AfterFunc(duration, func() { m.expire(id) })
	}

	if m.metrics != nil {
		m.metrics.ActiveToasts.Set(float64(len(m.entries)))
	}
	return *entry
}

// Pin keeps an entry on screen until dismissed. Idempotent: the presentation
// layer calls it on every hover.
func (m *Manager) Pin(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[id]
	if !ok {
		return false
	}
	entry.IsPinned = true
	entry.State = model.ToastStatePinned
	entry.ExpiresAt = time.Time{}
	m.cancelTimer(id)
	return true
}

// Dismiss removes an entry unconditionally, pinned or urgent included.
func (m *Manager) Dismiss(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remove(id)
}

// DismissAll clears the whole collection and cancels every pending expiry.
func (m *Manager) DismissAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
	m.entries = make(map[int64]*model.ToastEntry)
	if m.metrics != nil {
		m.metrics.ActiveToasts.Set(0)
	}
}

// Click handles user activation of a toast: unread entries get marked read
// first (best effort, never blocking), then the entry is dismissed, then
// navigation to the action URL happens if one is present.
func (m *Manager) Click(id int64) bool {
	m.mu.Lock()
	entry, ok := m.entries[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	event := entry.Event
	m.mu.Unlock()

	if !event.IsRead && m.marker != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), markAsReadTimeout)
			defer cancel()
			if err := m.marker.MarkAsRead(ctx, event.ID); err != nil {
				m.logger.Error(err, "mark-as-read failed", "notification_id", event.ID.String())
			}
		}()
	}

	m.mu.Lock()
	m.remove(id)
	m.mu.Unlock()

	if event.ActionURL != "" && m.navigator != nil {
		m.navigator.Focus()
		m.navigator.Navigate(event.ActionURL)
	}
	return true
}

// Active returns the collection ordered by creation.
func (m *Manager) Active() []model.ToastEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.ToastEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ToastID < out[j].ToastID })
	return out
}

// Close cancels every owned timer. Entries created afterwards never expire.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
}

func (m *Manager) expire(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[id]
	if !ok || entry.IsPinned {
		// Pin raced the timer; the pin wins.
		return
	}
	if m.remove(id) && m.metrics != nil {
		m.metrics.ToastsExpired.Inc()
	}
}

// caller must hold m.mu
func (m *Manager) remove(id int64) bool {
	if _, ok := m.entries[id]; !ok {
		return false
	}
	delete(m.entries, id)
	m.cancelTimer(id)
	if m.metrics != nil {
		m.metrics.ActiveToasts.Set(float64(len(m.entries)))
	}
	return true
}

// caller must hold m.mu
func (m *Manager) cancelTimer(id int64) {
	if t, ok := m.timers[id]; ok {
		t.Stop()
		delete(m.timers, id)
	}
}
