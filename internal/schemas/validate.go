// Package schemas provides JSON Schema validation of resume documents.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed resume_snapshot.schema.json
var resumeSnapshotSchema string

var (
	snapshotOnce   sync.Once
	snapshotSchema *gojsonschema.Schema
	snapshotErr    error
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Type    string // gojsonschema error type, e.g. "required"
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Name    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Name, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// First returns the first field error, or the zero value if there is none.
func (ve *ValidationError) First() FieldError {
	if len(ve.Errors) == 0 {
		return FieldError{}
	}
	return ve.Errors[0]
}

// ValidateResumeSnapshot validates a snapshot request body against the
// embedded resume snapshot schema.
func ValidateResumeSnapshot(document []byte) error {
	snapshotOnce.Do(func() {
		snapshotSchema, snapshotErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(resumeSnapshotSchema))
	})
	if snapshotErr != nil {
		return &SchemaLoadError{
			Name:    "resume_snapshot",
			Message: "embedded schema is invalid",
			Cause:   snapshotErr,
		}
	}

	result, err := snapshotSchema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		// The document itself is not parseable JSON.
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Type: "invalid_json", Message: err.Error()}}}
	}
	return toValidationError(result)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Name:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return toValidationError(result)
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		// Required errors are reported on the parent; name the missing property.
		if property, ok := desc.Details()["property"].(string); ok && desc.Type() == "required" {
			if field == "(root)" {
				field = property
			} else {
				field += "." + property
			}
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Type:    desc.Type(),
			Message: desc.Description(),
		})
	}
	return validationErr
}
