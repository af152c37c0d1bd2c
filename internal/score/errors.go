package score

import "strings"

// MissingFieldsMessage is the client-facing text of a ValidationError.
const MissingFieldsMessage = "Missing required fields"

// ValidationError is returned when the payload lacks one of the required fields.
type ValidationError struct {
	// Missing — names of the absent fields, in RequiredFields order
	Missing []string
}

// Error returns the fixed client-facing message.
func (ve *ValidationError) Error() string {
	return MissingFieldsMessage
}

// Detail lists the missing fields for logs.
func (ve *ValidationError) Detail() string {
	return strings.Join(ve.Missing, ", ")
}

// NewValidationError creates a ValidationError for the given field names.
func NewValidationError(missing []string) *ValidationError {
	return &ValidationError{Missing: missing}
}

// ScoringError is returned when conversion, scaling or prediction fails.
// Its message is the text of the underlying error.
type ScoringError struct {
	err error
}

// Error returns the text of the underlying error.
func (se *ScoringError) Error() string {
	return se.err.Error()
}

func (se *ScoringError) Unwrap() error {
	return se.err
}

// NewScoringError wraps err into a ScoringError.
func NewScoringError(err error) *ScoringError {
	return &ScoringError{err: err}
}
