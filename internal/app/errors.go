package app

import "errors"

// ErrNotFound indicates a task or time log that does not exist or is
// not owned by the requesting user. The two cases are deliberately
// indistinguishable so that one user cannot probe another's resources.
var ErrNotFound = errors.New("not found")

// ValidationError reports the first violated field of a request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
