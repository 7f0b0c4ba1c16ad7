// Package auth verifies third-party identity tokens.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/resume-builder/internal/types"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

// ErrInvalidIdentity is wrapped by every verification failure.
var ErrInvalidIdentity = errors.New("invalid identity token")

// PayloadValidator checks an ID token's signature, expiry and audience.
// *idtoken.Validator satisfies it.
type PayloadValidator interface {
	Validate(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

// GoogleVerifier verifies Google Sign-In ID tokens issued for one OAuth client.
type GoogleVerifier struct {
	validator PayloadValidator
	clientID  string
}

// NewGoogleVerifier creates a verifier that fetches Google's signing keys
// over HTTP. opts are passed to the underlying idtoken validator.
func NewGoogleVerifier(ctx context.Context, clientID string, opts ...option.ClientOption) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, fmt.Errorf("google client ID is required")
	}
	v, err := idtoken.NewValidator(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ID token validator: %w", err)
	}
	return NewGoogleVerifierWithValidator(v, clientID), nil
}

// NewGoogleVerifierWithValidator creates a verifier around an existing validator.
func NewGoogleVerifierWithValidator(v PayloadValidator, clientID string) *GoogleVerifier {
	return &GoogleVerifier{validator: v, clientID: clientID}
}

// Verify validates rawToken and returns the identity it asserts.
func (g *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*types.IdentityClaim, error) {
	if rawToken == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrInvalidIdentity)
	}

	payload, err := g.validator.Validate(ctx, rawToken, g.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}

	claim := &types.IdentityClaim{
		Subject: payload.Subject,
		Email:   stringClaim(payload.Claims, "email"),
		Name:    stringClaim(payload.Claims, "name"),
		Picture: stringClaim(payload.Claims, "picture"),
	}
	if claim.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidIdentity)
	}
	if claim.Email == "" {
		return nil, fmt.Errorf("%w: missing email", ErrInvalidIdentity)
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, fmt.Errorf("%w: email not verified", ErrInvalidIdentity)
	}
	return claim, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
