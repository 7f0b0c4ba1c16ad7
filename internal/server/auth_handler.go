package server

import (
	"context"
	"log"
	"net/http"

	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/types"
)

// IdentityVerifier turns a third-party ID token into a verified identity.
// *auth.GoogleVerifier satisfies it.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (*types.IdentityClaim, error)
}

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	verifier    IdentityVerifier
	userService *UserService
	jwtService  *JWTService
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(verifier IdentityVerifier, userService *UserService, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{
		verifier:    verifier,
		userService: userService,
		jwtService:  jwtService,
	}
}

// GoogleLogin exchanges a Google ID token for a session token.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.GoogleLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "decode login", err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, "validate login", &resume.ErrValidation{Field: "credential", Message: "Google credential is required"})
		return
	}

	claim, err := h.verifier.Verify(r.Context(), req.Credential)
	if err != nil {
		log.Printf("[auth] rejected identity token: %v", err)
		writeError(w, "verify identity", &ErrAuthentication{Reason: err.Error()})
		return
	}

	user, err := h.userService.EnsureUser(r.Context(), claim)
	if err != nil {
		writeError(w, "ensure user", err)
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		writeError(w, "generate token", err)
		return
	}

	successMessage(w, http.StatusOK, "Login successful", types.LoginResponse{
		User:  user,
		Token: token,
	})
}

// Me returns the authenticated caller's user record.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, "me", &ErrAuthentication{Reason: err.Error()})
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, "me", err)
		return
	}
	success(w, http.StatusOK, user)
}
