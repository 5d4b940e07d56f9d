package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// emailPattern is a permissive sanity check; real deliverability is the
// mail system's problem, not ours.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User is the owner identity every engine entity is scoped to. The engine
// itself never authenticates users; it receives an already-authenticated
// user ID from the API layer.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email and bcrypt password hash.
// Returns an error if validation fails.
func NewUser(email, hashedPassword string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}

	if !emailPattern.MatchString(u.Email) {
		return NewValidationError("email", "is not a valid address", ErrInvalidEmail)
	}

	if u.HashedPassword == "" {
		return NewValidationError("password", "hash cannot be empty", nil)
	}

	return nil
}
