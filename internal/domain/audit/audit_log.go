package audit

import (
	"context"
	"time"

	"github.com/erp/notify/internal/domain/shared"
	"github.com/google/uuid"
)

// Action identifies what kind of event an audit entry records
type Action string

const (
	ActionNotificationSent   Action = "NOTIFICATION_SENT"
	ActionPreferencesUpdated Action = "PREFERENCES_UPDATED"
	ActionNotificationsSwept Action = "NOTIFICATIONS_SWEPT"
)

// IsValid returns true if the action is a known audit action
func (a Action) IsValid() bool {
	switch a {
	case ActionNotificationSent, ActionPreferencesUpdated, ActionNotificationsSwept:
		return true
	default:
		return false
	}
}

// Entry records who did what, when, and the details of the change.
// Entries are append-only; nothing in the system updates or deletes them.
type Entry struct {
	shared.BaseEntity
	Action     Action
	UserID     *uuid.UUID
	EntityType string
	EntityID   *uuid.UUID
	Details    map[string]any
}

// NewEntry creates an audit entry
func NewEntry(action Action, userID *uuid.UUID, entityType string, entityID *uuid.UUID, details map[string]any) (*Entry, error) {
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTION", "Invalid audit action")
	}
	return &Entry{
		BaseEntity: shared.NewBaseEntity(),
		Action:     action,
		UserID:     userID,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}, nil
}

// Recorder persists audit entries. Recording failures must never fail the
// operation being audited; implementations log and swallow errors.
type Recorder interface {
	Record(ctx context.Context, e *Entry)
}

// Repository defines persistence and retrieval of audit entries
type Repository interface {
	Save(ctx context.Context, e *Entry) error
	FindByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]*Entry, error)
	FindByAction(ctx context.Context, action Action, since time.Time) ([]*Entry, error)
}
