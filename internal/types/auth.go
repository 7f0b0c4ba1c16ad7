// Package types provides type definitions for structured data used throughout the resume builder.
package types

import (
	"time"

	"github.com/google/uuid"
)

// GoogleLoginRequest carries the ID token returned by Google Sign-In.
type GoogleLoginRequest struct {
	Credential string `json:"credential" validate:"notblank"`
}

// IdentityClaim is the verified payload of a third-party identity token.
type IdentityClaim struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// User represents a user profile for API responses.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LoginResponse represents the login response with user data and session token.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Validate validates the GoogleLoginRequest using the shared validator.
func (r *GoogleLoginRequest) Validate() error {
	return NewValidator().Struct(r)
}
