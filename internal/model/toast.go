package model

import "time"

type ToastState string

const (
	ToastStateActive ToastState = "active"
	ToastStatePinned ToastState = "pinned"
)

// ToastEntry wraps one delivered event for the in-app toast surface. Entries
// live only in memory; a reload loses them all, by design.
type ToastEntry struct {
	Event

	// ToastID is process-lifetime unique and monotonically increasing.
	ToastID int64 `json:"toast_id"`

	// ExpiresAt zero means the entry never auto-expires (pinned or urgent).
	ExpiresAt time.Time  `json:"expires_at,omitempty"`
	IsPinned  bool       `json:"is_pinned"`
	State     ToastState `json:"state"`
}
