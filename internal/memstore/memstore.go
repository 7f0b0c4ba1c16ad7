// Package memstore provides an in-memory implementation of the resume and
// user stores. Each method holds one mutex for its whole duration, which
// gives the same per-document atomicity as the PostgreSQL store.
package memstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/types"
)

var _ resume.Store = (*Store)(nil)

type aggregateKey struct {
	userID uuid.UUID
	kind   types.SectionKind
}

type aggregate struct {
	id        uuid.UUID
	entries   []json.RawMessage
	createdAt time.Time
	updatedAt time.Time
}

type entryHeader struct {
	ID uuid.UUID `json:"id"`
}

// Store is an in-memory resume.Store and user store.
type Store struct {
	mu         sync.Mutex
	aggregates map[aggregateKey]*aggregate
	snapshots  map[uuid.UUID][]byte
	users      map[uuid.UUID]*db.User
	bySubject  map[string]uuid.UUID
	byEmail    map[string]uuid.UUID
	now        func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		aggregates: make(map[aggregateKey]*aggregate),
		snapshots:  make(map[uuid.UUID][]byte),
		users:      make(map[uuid.UUID]*db.User),
		bySubject:  make(map[string]uuid.UUID),
		byEmail:    make(map[string]uuid.UUID),
		now:        time.Now,
	}
}

// Close is a no-op; it lets Store stand in for the database handle.
func (s *Store) Close() {}

// -----------------------------------------------------------------------------
// Section aggregates
// -----------------------------------------------------------------------------

// AppendEntries creates the aggregate if needed and appends entries.
func (s *Store) AppendEntries(_ context.Context, userID uuid.UUID, kind types.SectionKind, entries []json.RawMessage) (*resume.StoredAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := aggregateKey{userID: userID, kind: kind}
	now := s.now().UTC()
	agg, ok := s.aggregates[key]
	if !ok {
		agg = &aggregate{id: uuid.New(), createdAt: now}
		s.aggregates[key] = agg
	}
	for _, e := range entries {
		agg.entries = append(agg.entries, clone(e))
	}
	agg.updatedAt = now
	return s.snapshotAggregate(key, agg), nil
}

// EntryExists reports whether the user's aggregate holds entryID.
func (s *Store) EntryExists(_ context.Context, userID uuid.UUID, kind types.SectionKind, entryID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg, ok := s.aggregates[aggregateKey{userID: userID, kind: kind}]
	if !ok {
		return false, nil
	}
	idx, err := indexOf(agg.entries, entryID)
	if err != nil {
		return false, err
	}
	return idx >= 0, nil
}

// ReplaceEntry swaps the matching entry in place.
func (s *Store) ReplaceEntry(_ context.Context, userID uuid.UUID, kind types.SectionKind, entryID uuid.UUID, entry json.RawMessage) (*resume.StoredAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := aggregateKey{userID: userID, kind: kind}
	agg, ok := s.aggregates[key]
	if !ok {
		return nil, nil
	}
	idx, err := indexOf(agg.entries, entryID)
	if err != nil || idx < 0 {
		return nil, err
	}
	agg.entries[idx] = clone(entry)
	agg.updatedAt = s.now().UTC()
	return s.snapshotAggregate(key, agg), nil
}

// RemoveEntry pulls the matching entry.
func (s *Store) RemoveEntry(_ context.Context, userID uuid.UUID, kind types.SectionKind, entryID uuid.UUID) (*resume.StoredAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := aggregateKey{userID: userID, kind: kind}
	agg, ok := s.aggregates[key]
	if !ok {
		return nil, nil
	}
	idx, err := indexOf(agg.entries, entryID)
	if err != nil || idx < 0 {
		return nil, err
	}
	agg.entries = append(agg.entries[:idx:idx], agg.entries[idx+1:]...)
	agg.updatedAt = s.now().UTC()
	return s.snapshotAggregate(key, agg), nil
}

// GetAggregate returns nil when the user has no aggregate of this kind.
func (s *Store) GetAggregate(_ context.Context, userID uuid.UUID, kind types.SectionKind) (*resume.StoredAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := aggregateKey{userID: userID, kind: kind}
	agg, ok := s.aggregates[key]
	if !ok {
		return nil, nil
	}
	return s.snapshotAggregate(key, agg), nil
}

func (s *Store) snapshotAggregate(key aggregateKey, agg *aggregate) *resume.StoredAggregate {
	entries := make([]json.RawMessage, len(agg.entries))
	for i, e := range agg.entries {
		entries[i] = clone(e)
	}
	return &resume.StoredAggregate{
		ID:        agg.id,
		UserID:    key.userID,
		Kind:      key.kind,
		Entries:   entries,
		CreatedAt: agg.createdAt,
		UpdatedAt: agg.updatedAt,
	}
}

func indexOf(entries []json.RawMessage, id uuid.UUID) (int, error) {
	for i, e := range entries {
		var h entryHeader
		if err := json.Unmarshal(e, &h); err != nil {
			return -1, fmt.Errorf("corrupt entry at %d: %w", i, err)
		}
		if h.ID == id {
			return i, nil
		}
	}
	return -1, nil
}

func clone(raw json.RawMessage) json.RawMessage {
	return bytes.Clone(raw)
}

// -----------------------------------------------------------------------------
// Resume snapshots
// -----------------------------------------------------------------------------

// CreateSnapshot stores a copy of snapshot.
func (s *Store) CreateSnapshot(_ context.Context, snapshot *types.ResumeSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode resume: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.snapshots[snapshot.ID]; exists {
		return fmt.Errorf("resume already exists: %s", snapshot.ID)
	}
	s.snapshots[snapshot.ID] = raw
	return nil
}

// GetSnapshot returns nil when no snapshot has the id.
func (s *Store) GetSnapshot(_ context.Context, id uuid.UUID) (*types.ResumeSnapshot, error) {
	s.mu.Lock()
	raw, ok := s.snapshots[id]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return decodeSnapshot(raw)
}

// ListSnapshots returns the user's snapshots, newest first.
func (s *Store) ListSnapshots(_ context.Context, userID uuid.UUID) ([]types.ResumeSnapshot, error) {
	s.mu.Lock()
	raws := make([][]byte, 0, len(s.snapshots))
	for _, raw := range s.snapshots {
		raws = append(raws, raw)
	}
	s.mu.Unlock()

	var out []types.ResumeSnapshot
	for _, raw := range raws {
		snapshot, err := decodeSnapshot(raw)
		if err != nil {
			return nil, err
		}
		if snapshot.UserID == userID {
			out = append(out, *snapshot)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateSnapshot replaces the snapshot if its owner matches.
func (s *Store) UpdateSnapshot(_ context.Context, snapshot *types.ResumeSnapshot) (bool, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return false, fmt.Errorf("failed to encode resume: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.snapshots[snapshot.ID]
	if !ok {
		return false, nil
	}
	current, err := decodeSnapshot(existing)
	if err != nil {
		return false, err
	}
	if current.UserID != snapshot.UserID {
		return false, nil
	}
	s.snapshots[snapshot.ID] = raw
	return true, nil
}

// DeleteSnapshot removes the snapshot if its owner matches.
func (s *Store) DeleteSnapshot(_ context.Context, id, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.snapshots[id]
	if !ok {
		return false, nil
	}
	current, err := decodeSnapshot(existing)
	if err != nil {
		return false, err
	}
	if current.UserID != userID {
		return false, nil
	}
	delete(s.snapshots, id)
	return true, nil
}

func decodeSnapshot(raw []byte) (*types.ResumeSnapshot, error) {
	var snapshot types.ResumeSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode resume: %w", err)
	}
	return &snapshot, nil
}

// -----------------------------------------------------------------------------
// Users
// -----------------------------------------------------------------------------

// CreateUser inserts a user. Subject and email are unique; a clash returns
// db.ErrDuplicateUser.
func (s *Store) CreateUser(_ context.Context, claim *types.IdentityClaim) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bySubject[claim.Subject]; ok {
		return nil, db.ErrDuplicateUser
	}
	if _, ok := s.byEmail[claim.Email]; ok {
		return nil, db.ErrDuplicateUser
	}

	now := s.now().UTC()
	user := &db.User{
		ID:            uuid.New(),
		GoogleSubject: claim.Subject,
		Email:         claim.Email,
		Name:          claim.Name,
		Picture:       claim.Picture,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.users[user.ID] = user
	s.bySubject[user.GoogleSubject] = user.ID
	s.byEmail[user.Email] = user.ID

	copied := *user
	return &copied, nil
}

// GetUser returns nil when no user has the id.
func (s *Store) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

// GetUserBySubject returns nil when no user has the identity subject.
func (s *Store) GetUserBySubject(_ context.Context, subject string) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.bySubject[subject]
	if !ok {
		return nil, nil
	}
	copied := *s.users[id]
	return &copied, nil
}

// UserCount returns the number of stored users.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}
