// Package resume implements the per-user resume section model: validated
// append, in-place update and removal of section entries, named resume
// snapshots guarded by ownership, and whole-profile assembly.
package resume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/types"
)

// MessageFieldsRequired is the client-facing text for missing required fields.
const MessageFieldsRequired = "All fields are required"

// EntryPtr is satisfied by pointers to section entry types.
type EntryPtr[T any] interface {
	*T
	EntryID() uuid.UUID
	SetEntryID(id uuid.UUID)
}

// Section is the create/read/update/delete service for one section kind.
// Every operation is scoped to the user id taken from the caller's session.
type Section[T any, P EntryPtr[T]] struct {
	kind     types.SectionKind
	store    SectionStore
	validate *validator.Validate
}

// NewSection creates the service for kind backed by store.
func NewSection[T any, P EntryPtr[T]](kind types.SectionKind, store SectionStore) *Section[T, P] {
	return &Section[T, P]{
		kind:     kind,
		store:    store,
		validate: types.NewValidator(),
	}
}

// Kind returns the section kind this service manages.
func (s *Section[T, P]) Kind() types.SectionKind {
	return s.kind
}

// Add validates every entry, assigns each a fresh id, and appends them to
// the user's aggregate in one atomic upsert-append. It returns the updated
// aggregate and the entries as stored.
func (s *Section[T, P]) Add(ctx context.Context, userID uuid.UUID, entries []T) (*types.Aggregate[T], []T, error) {
	if len(entries) == 0 {
		return nil, nil, &ErrValidation{Message: MessageFieldsRequired}
	}
	for i := range entries {
		if err := s.check(&entries[i]); err != nil {
			if len(entries) > 1 {
				err.Field = fmt.Sprintf("[%d].%s", i, err.Field)
			}
			return nil, nil, err
		}
	}

	added := make([]T, len(entries))
	docs := make([]json.RawMessage, len(entries))
	for i, entry := range entries {
		P(&entry).SetEntryID(uuid.New())
		raw, err := json.Marshal(entry)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode %s entry: %w", s.kind, err)
		}
		added[i] = entry
		docs[i] = raw
	}

	stored, err := s.store.AppendEntries(ctx, userID, s.kind, docs)
	if err != nil {
		return nil, nil, storeErr("append "+string(s.kind), err)
	}
	agg, err := s.decode(stored)
	if err != nil {
		return nil, nil, err
	}
	return agg, added, nil
}

// Get returns the user's aggregate. A missing or empty aggregate is not found.
func (s *Section[T, P]) Get(ctx context.Context, userID uuid.UUID) (*types.Aggregate[T], error) {
	stored, err := s.store.GetAggregate(ctx, userID, s.kind)
	if err != nil {
		return nil, storeErr("get "+string(s.kind), err)
	}
	if stored == nil || len(stored.Entries) == 0 {
		return nil, &ErrNotFound{Resource: string(s.kind) + " section"}
	}
	return s.decode(stored)
}

// Entries returns the user's entries, or an empty slice when the section has
// never been written.
func (s *Section[T, P]) Entries(ctx context.Context, userID uuid.UUID) ([]T, error) {
	stored, err := s.store.GetAggregate(ctx, userID, s.kind)
	if err != nil {
		return nil, storeErr("get "+string(s.kind), err)
	}
	if stored == nil {
		return []T{}, nil
	}
	agg, err := s.decode(stored)
	if err != nil {
		return nil, err
	}
	return agg.Entries, nil
}

// Update replaces the fields of one entry in place, keeping its id and
// position. Sibling entries are not touched.
func (s *Section[T, P]) Update(ctx context.Context, userID, entryID uuid.UUID, entry T) (*types.Aggregate[T], error) {
	if err := s.check(&entry); err != nil {
		return nil, err
	}

	exists, err := s.store.EntryExists(ctx, userID, s.kind, entryID)
	if err != nil {
		return nil, storeErr("probe "+string(s.kind), err)
	}
	if !exists {
		return nil, s.entryNotFound(entryID)
	}

	P(&entry).SetEntryID(entryID)
	raw, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s entry: %w", s.kind, err)
	}

	stored, err := s.store.ReplaceEntry(ctx, userID, s.kind, entryID, raw)
	if err != nil {
		return nil, storeErr("replace "+string(s.kind), err)
	}
	if stored == nil {
		// Removed between the probe and the write.
		return nil, s.entryNotFound(entryID)
	}
	return s.decode(stored)
}

// Delete removes the entry with entryID. Not found is derived from the
// store reporting that nothing changed.
func (s *Section[T, P]) Delete(ctx context.Context, userID, entryID uuid.UUID) (*types.Aggregate[T], error) {
	stored, err := s.store.RemoveEntry(ctx, userID, s.kind, entryID)
	if err != nil {
		return nil, storeErr("remove "+string(s.kind), err)
	}
	if stored == nil {
		return nil, s.entryNotFound(entryID)
	}
	return s.decode(stored)
}

func (s *Section[T, P]) entryNotFound(id uuid.UUID) error {
	return &ErrNotFound{Resource: string(s.kind) + " entry", ID: id}
}

func (s *Section[T, P]) check(entry *T) *ErrValidation {
	if err := s.validate.Struct(entry); err != nil {
		return toValidationError(err)
	}
	return nil
}

func (s *Section[T, P]) decode(stored *StoredAggregate) (*types.Aggregate[T], error) {
	agg := &types.Aggregate[T]{
		ID:        stored.ID,
		UserID:    stored.UserID,
		Kind:      s.kind,
		Entries:   make([]T, 0, len(stored.Entries)),
		CreatedAt: stored.CreatedAt,
		UpdatedAt: stored.UpdatedAt,
	}
	for _, raw := range stored.Entries {
		var entry T
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, storeErr("decode "+string(s.kind), err)
		}
		agg.Entries = append(agg.Entries, entry)
	}
	return agg, nil
}

// toValidationError reduces validator output to the first failing field.
func toValidationError(err error) *ErrValidation {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ErrValidation{Message: MessageFieldsRequired}
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required", "notblank", "min":
		return &ErrValidation{Field: fe.Field(), Message: MessageFieldsRequired}
	default:
		return &ErrValidation{Field: fe.Field(), Message: "Invalid value"}
	}
}
