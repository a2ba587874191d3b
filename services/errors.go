package services

import (
	"errors"
	"sort"
	"strings"

	"songboard/models"
)

var (
	// ErrNotFound is returned when an id does not resolve to a record.
	ErrNotFound = models.ErrNotFound

	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError lists the messages of every field that failed validation.
type ValidationError struct {
	Fields map[string][]string `json:"errors"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// Add records msg for field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Err returns e when at least one field failed and nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Invalid builds a single-field validation error.
func Invalid(field, msg string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, msg)
	return e
}
