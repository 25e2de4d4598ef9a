package invoice

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrValidation matches any *ValidationError via errors.Is.
var ErrValidation = errors.New("invalid invoice")

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError with a single field failure.
func NewValidationError(field, message string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, message)

	return e
}

// Add records a failure for field. The first message for a field wins.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}

	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// OrNil returns nil when no field failed, so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}

	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}

	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func itemField(i int, name string) string {
	return fmt.Sprintf("items[%d].%s", i, name)
}
