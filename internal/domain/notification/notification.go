package notification

import (
	"time"

	"github.com/erp/notify/internal/domain/shared"
	"github.com/google/uuid"
)

// ErrNotOwner is returned when a user tries to mutate a notification that
// belongs to someone else. The record is left unmodified.
var ErrNotOwner = shared.NewDomainError("FORBIDDEN", "Notification does not belong to user")

// Notification is a delivery record for one recipient. A single row is
// created per dispatch and represents the in-app delivery; email and SMS
// attempts are fire-and-forget side effects recorded only in the audit log.
type Notification struct {
	shared.BaseEntity
	UserID        uuid.UUID
	Type          Type
	Priority      Priority
	Channel       Channel
	Title         string
	Message       string
	Read          bool
	ReadAt        *time.Time
	Sent          bool
	SentAt        *time.Time
	ScheduledAt   *time.Time
	ActionURL     string
	ActionLabel   string
	ReferenceType string
	ReferenceID   *uuid.UUID
	TemplateData  TemplateData
	Active        bool
}

// New creates an unsent in-app notification record for a user
func New(userID uuid.UUID, typ Type, priority Priority, title, message string) *Notification {
	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Type:       typ,
		Priority:   priority,
		Channel:    ChannelInApp,
		Title:      title,
		Message:    message,
		Active:     true,
	}
}

// WithAction attaches a navigation target shown alongside the notification
func (n *Notification) WithAction(url, label string) *Notification {
	n.ActionURL = url
	n.ActionLabel = label
	return n
}

// WithReference links the notification to the business entity it is about
func (n *Notification) WithReference(entityType string, entityID uuid.UUID) *Notification {
	n.ReferenceType = entityType
	n.ReferenceID = &entityID
	return n
}

// WithTemplateData snapshots the placeholder values used at render time
// so the dispatch can be replayed or audited later
func (n *Notification) WithTemplateData(data TemplateData) *Notification {
	n.TemplateData = data
	return n
}

// Schedule defers the notification to a later delivery time. The scheduled
// sweep marks it sent once the time has passed; routing is not re-applied.
func (n *Notification) Schedule(at time.Time) {
	n.ScheduledAt = &at
	n.Sent = false
	n.SentAt = nil
	n.Touch()
}

// MarkSent flags the notification as delivered. sent=true always carries
// a sent timestamp.
func (n *Notification) MarkSent() {
	now := time.Now()
	n.Sent = true
	n.SentAt = &now
	n.Touch()
}

// IsDue reports whether a scheduled notification is ready for the sweep
func (n *Notification) IsDue(now time.Time) bool {
	return !n.Sent && n.ScheduledAt != nil && !n.ScheduledAt.After(now)
}

// MarkReadBy marks the notification as read on behalf of a user. Only the
// owner may read it. read=true implies sent=true, so an unsent record is
// promoted to sent at the same instant. Marking twice is a no-op.
func (n *Notification) MarkReadBy(userID uuid.UUID) error {
	if n.UserID != userID {
		return ErrNotOwner
	}
	if n.Read {
		return nil
	}
	now := time.Now()
	n.Read = true
	n.ReadAt = &now
	if !n.Sent {
		n.Sent = true
		n.SentAt = &now
	}
	n.Touch()
	return nil
}

// DeactivateBy soft-deletes the notification on behalf of its owner.
// Deactivated records disappear from user-facing queries but are retained
// for audit and export until the retention sweep.
func (n *Notification) DeactivateBy(userID uuid.UUID) error {
	if n.UserID != userID {
		return ErrNotOwner
	}
	n.Active = false
	n.Touch()
	return nil
}

// Deactivate soft-deletes without an ownership check, for system sweeps
func (n *Notification) Deactivate() {
	n.Active = false
	n.Touch()
}
