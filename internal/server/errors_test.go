package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: &resume.ErrValidation{Field: "degree", Message: resume.MessageFieldsRequired}, want: http.StatusBadRequest},
		{name: "authentication", err: &ErrAuthentication{Reason: "expired"}, want: http.StatusUnauthorized},
		{name: "forbidden", err: &resume.ErrForbidden{Resource: "resume", ID: uuid.New()}, want: http.StatusForbidden},
		{name: "not found", err: &resume.ErrNotFound{Resource: "experience entry", ID: uuid.New()}, want: http.StatusNotFound},
		{name: "conflict", err: &ErrEmailConflict{Email: "a@example.com"}, want: http.StatusConflict},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", &resume.ErrNotFound{Resource: "user"}), want: http.StatusNotFound},
		{name: "store", err: &resume.ErrStore{Op: "append", Err: errors.New("connection reset")}, want: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestClientMessage_HidesInternalErrors(t *testing.T) {
	err := &resume.ErrStore{Op: "append", Err: errors.New("pq: password authentication failed for user admin")}
	assert.Equal(t, "Internal server error", clientMessage(err))
}

func TestClientMessage_Validation(t *testing.T) {
	err := &resume.ErrValidation{Field: "description", Message: resume.MessageFieldsRequired}
	assert.Equal(t, resume.MessageFieldsRequired, clientMessage(err))
}
