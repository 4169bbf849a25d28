package identity

import (
	"regexp"
	"strings"

	"github.com/erp/notify/internal/domain/shared"
)

// ErrUserNotFound aborts a dispatch before any record is written
var ErrUserNotFound = shared.NewDomainError("USER_NOT_FOUND", "User not found")

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is the recipient directory entry the dispatcher resolves contact
// points from. Account management lives elsewhere; this package only needs
// enough of the user to route and address notifications.
type User struct {
	shared.BaseEntity
	Username string
	Email    string
	Phone    string
	FullName string
	Active   bool
}

// NewUser creates an active directory entry
func NewUser(username, email string) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	email = strings.TrimSpace(email)
	if email != "" && !emailPattern.MatchString(email) {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	return &User{
		BaseEntity: shared.NewBaseEntity(),
		Username:   username,
		Email:      email,
		Active:     true,
	}, nil
}

// HasEmail reports whether email delivery has an address to go to
func (u *User) HasEmail() bool {
	return u.Email != ""
}

// HasPhone reports whether SMS delivery has a number to go to
func (u *User) HasPhone() bool {
	return u.Phone != ""
}
