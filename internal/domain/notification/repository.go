package notification

import (
	"context"
	"time"

	"github.com/erp/notify/internal/domain/shared"
	"github.com/google/uuid"
)

// Query narrows user-facing notification listings. Nil fields are ignored.
type Query struct {
	Read     *bool
	Type     *Type
	Priority *Priority
	Filter   shared.Filter
}

// Repository defines persistence for notification delivery records.
// All user-facing finders exclude inactive (soft-deleted) rows.
type Repository interface {
	// FindByID finds an active notification by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// FindByUser returns a page of a user's active notifications, newest
	// first, optionally filtered by read state, type, and priority
	FindByUser(ctx context.Context, userID uuid.UUID, q Query) ([]*Notification, int64, error)

	// FindUnreadByUser returns all of a user's unread active notifications
	FindUnreadByUser(ctx context.Context, userID uuid.UUID) ([]*Notification, error)

	// FindByIDsForUser returns the active notifications among ids that
	// belong to the user
	FindByIDsForUser(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*Notification, error)

	// Search returns active notifications whose title or message contains
	// the term (case-insensitive), newest first
	Search(ctx context.Context, userID uuid.UUID, term string, filter shared.Filter) ([]*Notification, int64, error)

	// CountByUser counts a user's active notifications
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// CountUnreadByUser counts a user's unread active notifications
	CountUnreadByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// CountReadByUser counts a user's read active notifications
	CountReadByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// CountCreatedBetween counts a user's active notifications created in
	// the half-open interval [from, to)
	CountCreatedBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error)

	// TypeBreakdown returns per-type counts of a user's active notifications
	TypeBreakdown(ctx context.Context, userID uuid.UUID) (map[Type]int64, error)

	// FindDueScheduled returns active unsent notifications whose scheduled
	// time is at or before now
	FindDueScheduled(ctx context.Context, now time.Time) ([]*Notification, error)

	// DeactivateOldRead soft-deletes read notifications created before the
	// cutoff and returns the number of rows touched
	DeactivateOldRead(ctx context.Context, cutoff time.Time) (int64, error)

	// Save creates or updates a notification
	Save(ctx context.Context, n *Notification) error

	// SaveAll persists a batch of notifications
	SaveAll(ctx context.Context, ns []*Notification) error
}

// PreferenceRepository defines persistence for user notification settings
type PreferenceRepository interface {
	// FindByUser finds a user's preference row, shared.ErrNotFound if absent
	FindByUser(ctx context.Context, userID uuid.UUID) (*Preference, error)

	// Save creates or updates a preference row
	Save(ctx context.Context, p *Preference) error
}

// TemplateRepository defines read access to notification templates
type TemplateRepository interface {
	// FindByType finds the template for a notification type,
	// ErrTemplateNotFound if none is registered
	FindByType(ctx context.Context, typ Type) (*Template, error)

	// Save registers or replaces a template
	Save(ctx context.Context, t *Template) error
}
