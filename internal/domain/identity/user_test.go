package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("  Aisha.K  ", "aisha@example.com")
	require.NoError(t, err)

	assert.Equal(t, "aisha.k", u.Username)
	assert.Equal(t, "aisha@example.com", u.Email)
	assert.True(t, u.Active)
	assert.True(t, u.HasEmail())
	assert.False(t, u.HasPhone())
}

func TestNewUserValidation(t *testing.T) {
	_, err := NewUser("", "a@b.co")
	assert.Error(t, err)

	_, err = NewUser("khalid", "not-an-email")
	assert.Error(t, err)

	// empty email is allowed, in-app routing still works
	u, err := NewUser("khalid", "")
	require.NoError(t, err)
	assert.False(t, u.HasEmail())
}
