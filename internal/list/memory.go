package list

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jwalitptl/notifier/internal/model"
)

// MemoryList keeps notifications in process memory. It backs tests and
// shells that run without a database.
type MemoryList struct {
	mu     sync.Mutex
	events []*model.Event
}

func NewMemoryList() *MemoryList {
	return &MemoryList{}
}

func (l *MemoryList) AddNotification(_ context.Context, event *model.Event) error {
	e := *event
	l.mu.Lock()
	l.events = append([]*model.Event{&e}, l.events...)
	l.mu.Unlock()
	return nil
}

func (l *MemoryList) MarkAsRead(_ context.Context, id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.events {
		if e.ID == id {
			e.IsRead = true
			return nil
		}
	}
	return nil
}

func (l *MemoryList) Refresh(_ context.Context) error {
	return nil
}

func (l *MemoryList) UnreadCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if !e.IsRead {
			n++
		}
	}
	return n
}

func (l *MemoryList) Notifications() []*model.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*model.Event, len(l.events))
	for i, e := range l.events {
		c := *e
		out[i] = &c
	}
	return out
}
