package model

import (
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type Category string

const (
	CategoryPrescription Category = "prescription"
	CategoryOrder        Category = "order"
	CategoryAppointment  Category = "appointment"
	CategoryPayment      Category = "payment"
	CategoryMessage      Category = "message"
	CategorySystem       Category = "system"
	CategoryRefill       Category = "refill"
	CategoryShipment     Category = "shipment"
	CategoryPatient      Category = "patient"
)

// Event is one pushed notification as delivered by the realtime transport.
// Events are immutable once received; the engine wraps them, never mutates them.
type Event struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Category  Category  `db:"category" json:"category"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Priority  Priority  `db:"priority" json:"priority"`
	ActionURL string    `db:"action_url" json:"action_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	IsRead    bool      `db:"is_read" json:"is_read"`
}

// PushPayload is the envelope the transport hands to subscribers: either a
// single new notification, or a broadcast signal telling clients to re-fetch
// the list.
type PushPayload struct {
	Notification *Event `json:"notification,omitempty"`
	Broadcast    bool   `json:"broadcast,omitempty"`
}
