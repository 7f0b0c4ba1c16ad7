package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/server/middleware"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// readBody reads the request body up to maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &resume.ErrValidation{Message: "Request body too large"}
		}
		return nil, &resume.ErrValidation{Message: "Invalid request body"}
	}
	return body, nil
}

// decodeJSON decodes the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &resume.ErrValidation{Message: "Invalid request body"}
	}
	return nil
}

// decodeOneOrMany decodes a body holding either one object or an array of them.
func decodeOneOrMany[T any](w http.ResponseWriter, r *http.Request) ([]T, error) {
	body, err := readBody(w, r)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, &resume.ErrValidation{Message: resume.MessageFieldsRequired}
	}

	if trimmed[0] == '[' {
		var entries []T
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, &resume.ErrValidation{Message: "Invalid request body"}
		}
		return entries, nil
	}

	var entry T
	if err := json.Unmarshal(trimmed, &entry); err != nil {
		return nil, &resume.ErrValidation{Message: "Invalid request body"}
	}
	return []T{entry}, nil
}

// pathID parses the {id} path value. Malformed ids are validation errors.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &resume.ErrValidation{Field: "id", Message: "Invalid id"}
	}
	return id, nil
}

// requireUser returns the caller's user id set by the auth middleware.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, "auth", &ErrAuthentication{Reason: err.Error()})
		return uuid.Nil, false
	}
	return userID, true
}
