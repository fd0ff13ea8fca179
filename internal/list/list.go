// Package list defines the notification list the engine feeds. Pagination,
// archival and durability live behind this interface, not in the engine.
package list

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/notifier/internal/model"
)

// List is the notification list hook.
type List interface {
	// AddNotification appends one pushed event to the list.
	AddNotification(ctx context.Context, event *model.Event) error
	// MarkAsRead flags one notification read. Best effort for callers on
	// the dispatch path.
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	// Refresh re-fetches the list from its source, used on broadcast
	// signals.
	Refresh(ctx context.Context) error
	UnreadCount() int
	Notifications() []*model.Event
}
