package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/resume-builder/internal/types"
)

// CreateSnapshot stores a new resume snapshot
func (db *DB) CreateSnapshot(ctx context.Context, snapshot *types.ResumeSnapshot) error {
	content, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal resume: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO resumes (id, user_id, name, layout, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)`,
		snapshot.ID, snapshot.UserID, snapshot.Name, snapshot.Layout, string(content),
		snapshot.CreatedAt, snapshot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create resume: %w", err)
	}
	return nil
}

// GetSnapshot retrieves a resume snapshot by ID, or nil
func (db *DB) GetSnapshot(ctx context.Context, id uuid.UUID) (*types.ResumeSnapshot, error) {
	snapshot, err := scanSnapshot(db.pool.QueryRow(ctx,
		`SELECT user_id, content FROM resumes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return snapshot, nil
}

// ListSnapshots retrieves a user's resume snapshots, newest first
func (db *DB) ListSnapshots(ctx context.Context, userID uuid.UUID) ([]types.ResumeSnapshot, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT user_id, content FROM resumes WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	var snapshots []types.ResumeSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		snapshots = append(snapshots, *snapshot)
	}
	return snapshots, rows.Err()
}

// UpdateSnapshot replaces a snapshot's content, scoped to its owner
func (db *DB) UpdateSnapshot(ctx context.Context, snapshot *types.ResumeSnapshot) (bool, error) {
	content, err := json.Marshal(snapshot)
	if err != nil {
		return false, fmt.Errorf("failed to marshal resume: %w", err)
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE resumes SET name = $3, layout = $4, content = $5::jsonb, updated_at = $6
		 WHERE id = $1 AND user_id = $2`,
		snapshot.ID, snapshot.UserID, snapshot.Name, snapshot.Layout, string(content), snapshot.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update resume: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// DeleteSnapshot deletes a snapshot, scoped to its owner
func (db *DB) DeleteSnapshot(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	result, err := db.pool.Exec(ctx, `DELETE FROM resumes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete resume: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

func scanSnapshot(row pgx.Row) (*types.ResumeSnapshot, error) {
	var (
		userID  uuid.UUID
		content []byte
	)
	if err := row.Scan(&userID, &content); err != nil {
		return nil, err
	}
	var snapshot types.ResumeSnapshot
	if err := json.Unmarshal(content, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode resume: %w", err)
	}
	// The column is authoritative for ownership.
	snapshot.UserID = userID
	return &snapshot, nil
}
