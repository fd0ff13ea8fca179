package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/notifier/internal/list"
	"github.com/jwalitptl/notifier/internal/model"
)

const defaultPageSize = 50

// notificationList is the database-backed notification list. Reads on the
// dispatch path (unread count, current page) come from an in-memory cache so
// the badge never waits on a query; Refresh reloads the cache.
type notificationList struct {
	db       *sqlx.DB
	pageSize int

	mu     sync.Mutex
	cached []*model.Event
	unread int
}

func NewNotificationList(db *sqlx.DB) list.List {
	return &notificationList{
		db:       db,
		pageSize: defaultPageSize,
	}
}

func (r *notificationList) AddNotification(ctx context.Context, event *model.Event) error {
	query := `
        INSERT INTO notifications (
            id, category, title, message, priority, action_url, created_at, is_read
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (id) DO NOTHING
    `
	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Category,
		event.Title,
		event.Message,
		event.Priority,
		event.ActionURL,
		event.CreatedAt,
		event.IsRead,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	e := *event
	r.mu.Lock()
	r.cached = append([]*model.Event{&e}, r.cached...)
	if len(r.cached) > r.pageSize {
		r.cached = r.cached[:r.pageSize]
	}
	if !e.IsRead {
		r.unread++
	}
	r.mu.Unlock()
	return nil
}

func (r *notificationList) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND is_read = FALSE`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil || rows == 0 {
		return nil
	}

	r.mu.Lock()
	for _, e := range r.cached {
		if e.ID == id && !e.IsRead {
			e.IsRead = true
			break
		}
	}
	if r.unread > 0 {
		r.unread--
	}
	r.mu.Unlock()
	return nil
}

func (r *notificationList) Refresh(ctx context.Context) error {
	var events []*model.Event
	query := `
        SELECT id, category, title, message, priority, action_url, created_at, is_read
        FROM notifications
        ORDER BY created_at DESC
        LIMIT $1
    `
	if err := r.db.SelectContext(ctx, &events, query, r.pageSize); err != nil {
		return fmt.Errorf("failed to load notifications: %w", err)
	}

	var unread int
	if err := r.db.GetContext(ctx, &unread,
		`SELECT COUNT(*) FROM notifications WHERE is_read = FALSE`); err != nil {
		return fmt.Errorf("failed to count unread notifications: %w", err)
	}

	r.mu.Lock()
	r.cached = events
	r.unread = unread
	r.mu.Unlock()
	return nil
}

func (r *notificationList) UnreadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unread
}

func (r *notificationList) Notifications() []*model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Event, len(r.cached))
	for i, e := range r.cached {
		c := *e
		out[i] = &c
	}
	return out
}
