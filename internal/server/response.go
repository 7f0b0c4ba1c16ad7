package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jonathan/resume-builder/internal/resume"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// jsonResponse writes a JSON response
func jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// success writes {success:true, data}.
func success(w http.ResponseWriter, status int, data any) {
	jsonResponse(w, status, envelope{Success: true, Data: data})
}

// successMessage writes {success:true, message, data}.
func successMessage(w http.ResponseWriter, status int, message string, data any) {
	jsonResponse(w, status, envelope{Success: true, Message: message, Data: data})
}

// writeError maps err onto its status and client message. Server-side
// failures are logged with op and never echoed.
func writeError(w http.ResponseWriter, op string, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[store] %s: %v", op, err)
	}

	body := envelope{Success: false, Message: clientMessage(err)}
	var validationErr *resume.ErrValidation
	if errors.As(err, &validationErr) && validationErr.Field != "" {
		body.Data = map[string]string{"field": validationErr.Field}
	}
	jsonResponse(w, status, body)
}
