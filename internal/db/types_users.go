package db

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/types"
)

// ErrDuplicateUser is returned by CreateUser when the identity subject or
// email is already registered.
var ErrDuplicateUser = errors.New("user already exists")

// User represents a user signed in through Google
type User struct {
	ID            uuid.UUID `json:"id"`
	GoogleSubject string    `json:"-" db:"google_sub"` // Never serialize to JSON
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Picture       string    `json:"picture,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToTypes converts the record to its API shape.
func (u *User) ToTypes() *types.User {
	if u == nil {
		return nil
	}
	return &types.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Picture:   u.Picture,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
