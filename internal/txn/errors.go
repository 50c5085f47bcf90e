package txn

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed or out-of-range input. Fields names the
// offending transaction fields (or missing batch columns) when the failure
// is field-level; it is empty for batch-level failures such as a batch with
// no valid rows.
type ValidationError struct {
	Msg    string
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("validation failed: %s", e.Msg)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Msg, strings.Join(e.Fields, ", "))
}

// NewValidationError builds a ValidationError with optional offending fields.
func NewValidationError(msg string, fields ...string) *ValidationError {
	return &ValidationError{Msg: msg, Fields: fields}
}
