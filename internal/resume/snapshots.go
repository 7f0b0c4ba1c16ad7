package resume

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

const snapshotResource = "resume"

// Snapshots manages named resume snapshots. Every read, update and delete
// by id loads the snapshot first and checks its owner before acting.
type Snapshots struct {
	store    SnapshotStore
	sections *Sections
	validate *validator.Validate
	now      func() time.Time
}

// NewSnapshots creates the snapshot service. sections is used to build
// snapshots from the caller's live profile.
func NewSnapshots(store SnapshotStore, sections *Sections) *Snapshots {
	return &Snapshots{
		store:    store,
		sections: sections,
		validate: types.NewValidator(),
		now:      time.Now,
	}
}

// DecodeInput checks a raw request body against the snapshot schema and
// decodes it. Schema violations are validation errors.
func DecodeInput(body []byte) (*types.SnapshotInput, error) {
	if err := schemas.ValidateResumeSnapshot(body); err != nil {
		var schemaErr *schemas.ValidationError
		if errors.As(err, &schemaErr) {
			first := schemaErr.First()
			return nil, &ErrValidation{Field: first.Field, Message: schemaMessage(first)}
		}
		return nil, err
	}

	var in types.SnapshotInput
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, &ErrValidation{Message: "Invalid request body"}
	}
	return &in, nil
}

// schemaMessage keeps missing and blank fields on the same wording the
// section endpoints use.
func schemaMessage(fe schemas.FieldError) string {
	switch fe.Type {
	case "required", "string_gte":
		return MessageFieldsRequired
	case "invalid_json":
		return "Invalid request body"
	}
	return fe.Message
}

// Create saves a new snapshot owned by userID.
func (s *Snapshots) Create(ctx context.Context, userID uuid.UUID, in *types.SnapshotInput) (*types.ResumeSnapshot, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	snapshot := &types.ResumeSnapshot{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	snapshot.ApplyInput(in)
	assignMissingIDs(snapshot)

	if err := s.store.CreateSnapshot(ctx, snapshot); err != nil {
		return nil, storeErr("create resume", err)
	}
	return snapshot, nil
}

// CreateFromProfile copies the caller's live sections into a new snapshot.
func (s *Snapshots) CreateFromProfile(ctx context.Context, userID uuid.UUID, req *types.FromProfileRequest) (*types.ResumeSnapshot, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, toValidationError(err)
	}

	profile, err := s.sections.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.Create(ctx, userID, &types.SnapshotInput{
		Name:           req.Name,
		Layout:         req.Layout,
		Personal:       profile.Personal,
		Education:      profile.Education,
		Experience:     profile.Experience,
		Skills:         profile.Skills,
		Projects:       profile.Projects,
		Certifications: profile.Certifications,
	})
}

// Get returns the snapshot if userID owns it.
func (s *Snapshots) Get(ctx context.Context, userID, id uuid.UUID) (*types.ResumeSnapshot, error) {
	return s.loadOwned(ctx, userID, id)
}

// List returns summaries of every snapshot owned by userID, newest first.
func (s *Snapshots) List(ctx context.Context, userID uuid.UUID) ([]types.SnapshotSummary, error) {
	snapshots, err := s.store.ListSnapshots(ctx, userID)
	if err != nil {
		return nil, storeErr("list resumes", err)
	}
	summaries := make([]types.SnapshotSummary, 0, len(snapshots))
	for i := range snapshots {
		summaries = append(summaries, snapshots[i].Summary())
	}
	return summaries, nil
}

// Update replaces the content of a snapshot owned by userID.
func (s *Snapshots) Update(ctx context.Context, userID, id uuid.UUID, in *types.SnapshotInput) (*types.ResumeSnapshot, error) {
	snapshot, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	snapshot.ApplyInput(in)
	snapshot.UpdatedAt = s.now().UTC()
	assignMissingIDs(snapshot)

	ok, err := s.store.UpdateSnapshot(ctx, snapshot)
	if err != nil {
		return nil, storeErr("update resume", err)
	}
	if !ok {
		return nil, &ErrNotFound{Resource: snapshotResource, ID: id}
	}
	return snapshot, nil
}

// Delete removes a snapshot owned by userID.
func (s *Snapshots) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.loadOwned(ctx, userID, id); err != nil {
		return err
	}

	ok, err := s.store.DeleteSnapshot(ctx, id, userID)
	if err != nil {
		return storeErr("delete resume", err)
	}
	if !ok {
		return &ErrNotFound{Resource: snapshotResource, ID: id}
	}
	return nil
}

// loadOwned is the ownership guard: absent is not found, present but owned
// by someone else is forbidden.
func (s *Snapshots) loadOwned(ctx context.Context, userID, id uuid.UUID) (*types.ResumeSnapshot, error) {
	snapshot, err := s.store.GetSnapshot(ctx, id)
	if err != nil {
		return nil, storeErr("get resume", err)
	}
	if snapshot == nil {
		return nil, &ErrNotFound{Resource: snapshotResource, ID: id}
	}
	if snapshot.UserID != userID {
		return nil, &ErrForbidden{Resource: snapshotResource, ID: id}
	}
	snapshot.FillEmptySections()
	return snapshot, nil
}

func (s *Snapshots) check(in *types.SnapshotInput) error {
	if in == nil {
		return &ErrValidation{Message: MessageFieldsRequired}
	}
	if err := s.validate.Struct(in); err != nil {
		return toValidationError(err)
	}
	return nil
}

// assignMissingIDs gives every nested entry an id that is unique within its
// list. Supplied ids are kept unless an earlier entry already uses them.
func assignMissingIDs(s *types.ResumeSnapshot) {
	uniqueIDs(s.Personal)
	uniqueIDs(s.Education)
	uniqueIDs(s.Experience)
	uniqueIDs(s.Skills)
	uniqueIDs(s.Projects)
	uniqueIDs(s.Certifications)
}

func uniqueIDs[T any, P EntryPtr[T]](entries []T) {
	seen := make(map[uuid.UUID]struct{}, len(entries))
	for i := range entries {
		entry := P(&entries[i])
		id := entry.EntryID()
		if _, dup := seen[id]; id == uuid.Nil || dup {
			id = uuid.New()
			entry.SetEntryID(id)
		}
		seen[id] = struct{}{}
	}
}
