package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// UserID is the service-generated identifier of a user, serialized as a UUID string.
type UserID string

// Username is the unique login name of a user.
type Username string

// Password is stored and compared exactly as supplied.
type Password string

// NewUserID returns a fresh random identifier.
func NewUserID() UserID {
	return UserID(uuid.New().String())
}

// ParseUserID validates raw as a UUID and returns it in canonical form.
func ParseUserID(raw string) (UserID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid user id %q: %w", raw, err)
	}
	return UserID(id.String()), nil
}

func (id UserID) String() string { return string(id) }

// Matches reports whether sample is exactly the stored password.
func (p Password) Matches(sample Password) bool {
	return p == sample
}

// User represents a registered account.
type User struct {
	ID       UserID   `json:"id"`
	Username Username `json:"username"`
	Password Password `json:"password"`
}
