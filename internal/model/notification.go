package model

import (
	"time"

	"github.com/google/uuid"
)

// Review event actions. They double as notification setting keys.
const (
	ActionSubmitted = "submitted"
	ActionApproved  = "approved"
	ActionRejected  = "rejected"
	ActionPublished = "published"
)

// NotificationActions lists every action a tenant can toggle.
var NotificationActions = []string{ActionSubmitted, ActionApproved, ActionRejected, ActionPublished}

// IsNotificationAction reports whether action is a known setting key.
func IsNotificationAction(action string) bool {
	for _, a := range NotificationActions {
		if a == action {
			return true
		}
	}
	return false
}

type Notification struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	TenantID  uuid.UUID  `db:"tenant_id" json:"client_id"`
	Kind      Kind       `db:"kind" json:"kind"`
	ContentID uuid.UUID  `db:"content_id" json:"content_id"`
	Action    string     `db:"action" json:"action"`
	Message   string     `db:"message" json:"message"`
	IsRead    bool       `db:"is_read" json:"is_read"`
	ReadAt    *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// ReviewEvent is published after a content item changes status.
type ReviewEvent struct {
	Kind       Kind      `json:"kind"`
	ContentID  uuid.UUID `json:"content_id"`
	TenantID   uuid.UUID `json:"client_id"`
	Action     string    `json:"action"`
	ActorID    uuid.UUID `json:"actor_id"`
	Label      string    `json:"label"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
