package resume

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/types"
)

// StoredAggregate is a section aggregate as persisted: entries are opaque
// JSON documents, each carrying its own "id".
type StoredAggregate struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Kind      types.SectionKind
	Entries   []json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SectionStore persists per-user section aggregates. Every mutating method
// must be a single atomic operation on one aggregate; callers never
// read-modify-write.
type SectionStore interface {
	// AppendEntries creates the aggregate if absent and appends entries to it.
	AppendEntries(ctx context.Context, userID uuid.UUID, kind types.SectionKind, entries []json.RawMessage) (*StoredAggregate, error)
	// EntryExists reports whether the user's aggregate holds an entry with entryID.
	EntryExists(ctx context.Context, userID uuid.UUID, kind types.SectionKind, entryID uuid.UUID) (bool, error)
	// ReplaceEntry swaps the matching entry in place. Returns nil when nothing matched.
	ReplaceEntry(ctx context.Context, userID uuid.UUID, kind types.SectionKind, entryID uuid.UUID, entry json.RawMessage) (*StoredAggregate, error)
	// RemoveEntry pulls the matching entry. Returns nil when nothing was removed.
	RemoveEntry(ctx context.Context, userID uuid.UUID, kind types.SectionKind, entryID uuid.UUID) (*StoredAggregate, error)
	// GetAggregate returns nil when the user has no aggregate of this kind.
	GetAggregate(ctx context.Context, userID uuid.UUID, kind types.SectionKind) (*StoredAggregate, error)
}

// SnapshotStore persists named resume snapshots.
type SnapshotStore interface {
	CreateSnapshot(ctx context.Context, snapshot *types.ResumeSnapshot) error
	// GetSnapshot returns nil when no snapshot has the id.
	GetSnapshot(ctx context.Context, id uuid.UUID) (*types.ResumeSnapshot, error)
	ListSnapshots(ctx context.Context, userID uuid.UUID) ([]types.ResumeSnapshot, error)
	// UpdateSnapshot replaces the snapshot content, scoped to its owner.
	// Returns false when no row matched.
	UpdateSnapshot(ctx context.Context, snapshot *types.ResumeSnapshot) (bool, error)
	// DeleteSnapshot removes the snapshot, scoped to its owner. Returns false
	// when no row matched.
	DeleteSnapshot(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

// Store is everything the resume services need from persistence.
type Store interface {
	SectionStore
	SnapshotStore
}
