package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/types"
	"golang.org/x/sync/singleflight"
)

// UserStore is the persistence the user directory needs. *db.DB and
// *memstore.Store satisfy it.
type UserStore interface {
	CreateUser(ctx context.Context, claim *types.IdentityClaim) (*db.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserBySubject(ctx context.Context, subject string) (*db.User, error)
}

// UserService maps verified identities to local user records.
type UserService struct {
	store UserStore
	group singleflight.Group
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

// EnsureUser returns the user for claim's subject, creating it on first
// sign-in. Repeated and concurrent calls for one subject yield one record.
func (s *UserService) EnsureUser(ctx context.Context, claim *types.IdentityClaim) (*types.User, error) {
	if claim == nil || claim.Subject == "" {
		return nil, &ErrAuthentication{Reason: "identity has no subject"}
	}

	// The shared call outlives any one caller's cancellation.
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(claim.Subject, func() (any, error) {
		return s.ensure(flightCtx, claim)
	})
	if err != nil {
		return nil, err
	}
	user := *v.(*types.User)
	return &user, nil
}

func (s *UserService) ensure(ctx context.Context, claim *types.IdentityClaim) (*types.User, error) {
	existing, err := s.store.GetUserBySubject(ctx, claim.Subject)
	if err != nil {
		return nil, &resume.ErrStore{Op: "get user by subject", Err: err}
	}
	if existing != nil {
		return existing.ToTypes(), nil
	}

	created, err := s.store.CreateUser(ctx, claim)
	if err == nil {
		return created.ToTypes(), nil
	}
	if !errors.Is(err, db.ErrDuplicateUser) {
		return nil, &resume.ErrStore{Op: "create user", Err: err}
	}

	// Another request created the subject first, or the email is taken.
	existing, err = s.store.GetUserBySubject(ctx, claim.Subject)
	if err != nil {
		return nil, &resume.ErrStore{Op: "get user by subject", Err: err}
	}
	if existing == nil {
		return nil, &ErrEmailConflict{Email: claim.Email}
	}
	return existing.ToTypes(), nil
}

// GetUser returns the user with id.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, &resume.ErrStore{Op: "get user", Err: fmt.Errorf("id %s: %w", id, err)}
	}
	if user == nil {
		return nil, &resume.ErrNotFound{Resource: "user", ID: id}
	}
	return user.ToTypes(), nil
}
