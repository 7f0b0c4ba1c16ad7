package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/types"
)

// Every mutation below is one statement on one row, so PostgreSQL's row
// lock makes it atomic. Concurrent appends or edits of different entries
// re-read the latest entries array after waiting on the lock.

var _ resume.Store = (*DB)(nil)

const aggregateColumns = `id, user_id, kind, entries, created_at, updated_at`

// containsEntry matches rows whose entries array holds an object with id $3.
const containsEntry = `entries @> jsonb_build_array(jsonb_build_object('id', $3::text))`

func scanAggregate(row pgx.Row) (*resume.StoredAggregate, error) {
	var (
		agg     resume.StoredAggregate
		kind    string
		entries []byte
	)
	if err := row.Scan(&agg.ID, &agg.UserID, &kind, &entries, &agg.CreatedAt, &agg.UpdatedAt); err != nil {
		return nil, err
	}
	agg.Kind = types.SectionKind(kind)
	if err := json.Unmarshal(entries, &agg.Entries); err != nil {
		return nil, fmt.Errorf("failed to decode %s entries: %w", kind, err)
	}
	return &agg, nil
}

// AppendEntries creates the user's aggregate if absent and appends entries
// to the end of it.
func (db *DB) AppendEntries(ctx context.Context, userID uuid.UUID, kind types.SectionKind, entries []json.RawMessage) (*resume.StoredAggregate, error) {
	payload, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entries: %w", err)
	}

	agg, err := scanAggregate(db.pool.QueryRow(ctx,
		`INSERT INTO section_aggregates (user_id, kind, entries)
		 VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (user_id, kind) DO UPDATE
		     SET entries = section_aggregates.entries || EXCLUDED.entries,
		         updated_at = NOW()
		 RETURNING `+aggregateColumns,
		userID, string(kind), string(payload),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to append %s entries: %w", kind, err)
	}
	return agg, nil
}

// EntryExists reports whether the user's aggregate holds an entry with entryID.
func (db *DB) EntryExists(ctx context.Context, userID uuid.UUID, kind types.SectionKind, entryID uuid.UUID) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM section_aggregates
		     WHERE user_id = $1 AND kind = $2 AND `+containsEntry+`
		 )`,
		userID, string(kind), entryID.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to probe %s entry: %w", kind, err)
	}
	return exists, nil
}

// ReplaceEntry rewrites only the element whose id matches, keeping its
// position. Returns nil when no aggregate holds the entry.
func (db *DB) ReplaceEntry(ctx context.Context, userID uuid.UUID, kind types.SectionKind, entryID uuid.UUID, entry json.RawMessage) (*resume.StoredAggregate, error) {
	agg, err := scanAggregate(db.pool.QueryRow(ctx,
		`UPDATE section_aggregates
		 SET entries = (
		         SELECT jsonb_agg(CASE WHEN t.elem->>'id' = $3::text THEN $4::jsonb ELSE t.elem END ORDER BY t.pos)
		         FROM jsonb_array_elements(section_aggregates.entries) WITH ORDINALITY AS t(elem, pos)
		     ),
		     updated_at = NOW()
		 WHERE user_id = $1 AND kind = $2 AND `+containsEntry+`
		 RETURNING `+aggregateColumns,
		userID, string(kind), entryID.String(), string(entry),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to replace %s entry: %w", kind, err)
	}
	return agg, nil
}

// RemoveEntry pulls the element whose id matches. Returns nil when nothing
// was removed. The aggregate itself is kept even when it becomes empty.
func (db *DB) RemoveEntry(ctx context.Context, userID uuid.UUID, kind types.SectionKind, entryID uuid.UUID) (*resume.StoredAggregate, error) {
	agg, err := scanAggregate(db.pool.QueryRow(ctx,
		`UPDATE section_aggregates
		 SET entries = COALESCE((
		         SELECT jsonb_agg(t.elem ORDER BY t.pos)
		         FROM jsonb_array_elements(section_aggregates.entries) WITH ORDINALITY AS t(elem, pos)
		         WHERE t.elem->>'id' IS DISTINCT FROM $3::text
		     ), '[]'::jsonb),
		     updated_at = NOW()
		 WHERE user_id = $1 AND kind = $2 AND `+containsEntry+`
		 RETURNING `+aggregateColumns,
		userID, string(kind), entryID.String(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to remove %s entry: %w", kind, err)
	}
	return agg, nil
}

// GetAggregate retrieves the user's aggregate of the given kind, or nil.
func (db *DB) GetAggregate(ctx context.Context, userID uuid.UUID, kind types.SectionKind) (*resume.StoredAggregate, error) {
	agg, err := scanAggregate(db.pool.QueryRow(ctx,
		`SELECT `+aggregateColumns+` FROM section_aggregates WHERE user_id = $1 AND kind = $2`,
		userID, string(kind),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s aggregate: %w", kind, err)
	}
	return agg, nil
}
