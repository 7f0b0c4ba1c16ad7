package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/resume-builder/internal/types"
)

const userColumns = `id, google_sub, email, name, picture, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.GoogleSubject, &u.Email, &u.Name, &u.Picture, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user for a verified identity. Returns ErrDuplicateUser
// when the subject or email already exists.
func (db *DB) CreateUser(ctx context.Context, claim *types.IdentityClaim) (*User, error) {
	user, err := scanUser(db.pool.QueryRow(ctx,
		`INSERT INTO users (google_sub, email, name, picture)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (google_sub) DO NOTHING
		 RETURNING `+userColumns,
		claim.Subject, claim.Email, claim.Name, claim.Picture,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by ID
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserBySubject retrieves a user by external identity subject
func (db *DB) GetUserBySubject(ctx context.Context, subject string) (*User, error) {
	user, err := scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE google_sub = $1`, subject))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by subject: %w", err)
	}
	return user, nil
}
