package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/qaforum/apiserver/types"
)

var (
	// ErrAuthRequired is returned when an operation needs a logged-in viewer.
	ErrAuthRequired = errors.New("authentication required")

	// ErrInvalidLoginForm is returned when username or password is missing.
	ErrInvalidLoginForm = errors.New("invalid login form")

	// ErrInvalidCredentials is returned when no user matches the credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPageOutOfRange is returned for a page past the end of a listing.
	ErrPageOutOfRange = errors.New("page out of range")
)

// ValidationError collects per-field messages for a rejected submission.
type ValidationError struct {
	Fields map[string][]types.Message
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// Add appends msg to the errors of field.
func (e *ValidationError) Add(field string, msg types.Message) {
	if e.Fields == nil {
		e.Fields = make(map[string][]types.Message)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Has reports whether field has at least one error.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// Err returns e when it holds any field error and nil otherwise.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
