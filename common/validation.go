package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MissingIdentityMessage is the warning shown when a record has neither an ID nor a name.
const MissingIdentityMessage = "Enter at least an ID or Name"

// ValidationError represents a single validation error for a record
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RecordValidationResult holds validation results for a single record
type RecordValidationResult struct {
	RowNumber int               `json:"row_number"`
	RecordID  string            `json:"record_id,omitempty"`
	Valid     bool              `json:"valid"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (r *RecordValidationResult) AddError(field, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// ToJSON converts validation errors to JSON string
func (r *RecordValidationResult) ToJSON() string {
	if len(r.Errors) == 0 {
		return ""
	}
	data, _ := json.Marshal(r.Errors)
	return string(data)
}

// FirstMessage returns the first error message, or "" when valid.
func (r *RecordValidationResult) FirstMessage() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// ValidateRequired checks if a string field is not empty
func ValidateRequired(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", field),
		}
	}
	return nil
}

// ValidateRange checks that value lies in [min, max]
func ValidateRange(field string, value, min, max float64) *ValidationError {
	if value < min || value > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must be between %g and %g", field, min, max),
		}
	}
	return nil
}

// ValidateRecord checks a roster row. Only the identity rule applies:
// a row needs an ID or a name after trimming.
func ValidateRecord(id, name string, rowNum int) *RecordValidationResult {
	result := &RecordValidationResult{
		RowNumber: rowNum,
		RecordID:  strings.TrimSpace(id),
		Valid:     true,
	}
	if ValidateRequired("id", id) != nil && ValidateRequired("name", name) != nil {
		result.AddError("id", MissingIdentityMessage)
	}
	return result
}
