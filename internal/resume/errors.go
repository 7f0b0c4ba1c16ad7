package resume

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrValidation indicates a create or update payload is missing required fields
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Field)
}

// ErrNotFound indicates the aggregate, entry, or snapshot does not exist
type ErrNotFound struct {
	Resource string
	ID       uuid.UUID
}

func (e *ErrNotFound) Error() string {
	if e.ID == uuid.Nil {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrForbidden indicates the resource exists but belongs to another user
type ErrForbidden struct {
	Resource string
	ID       uuid.UUID
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("not allowed to access %s %s", e.Resource, e.ID)
}

// ErrStore wraps a persistence failure. Its text is for logs only.
type ErrStore struct {
	Op  string
	Err error
}

func (e *ErrStore) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *ErrStore) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	return &ErrStore{Op: op, Err: err}
}
