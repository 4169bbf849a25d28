package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the directory lookups the dispatcher needs
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByIDs finds multiple users by IDs; missing IDs are skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)

	// FindAllActive returns every active user, for broadcast sends
	FindAllActive(ctx context.Context) ([]*User, error)

	// Save creates or updates a user
	Save(ctx context.Context, u *User) error
}
