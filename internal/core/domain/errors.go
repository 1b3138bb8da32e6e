package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("access forbidden")
	ErrInvalidReference = errors.New("invalid reference")
)

var ErrPostNotFound = fmt.Errorf("post %w", ErrNotFound)
var ErrGroupNotFound = fmt.Errorf("group %w", ErrNotFound)
var ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)

// ErrNotAuthor is returned when someone other than the author tries to edit a post.
var ErrNotAuthor = fmt.Errorf("%w: only the author may edit a post", ErrForbidden)

// ErrUnknownGroup is returned when a post references a group that does not exist.
var ErrUnknownGroup = fmt.Errorf("%w: group does not exist", ErrInvalidReference)

var ErrUnauthenticated = errors.New("authentication required")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserExists = errors.New("user already exists")
var ErrGroupExists = errors.New("group already exists")
var ErrInvalidImage = errors.New("upload a valid image")

// ValidationError reports bad input on a single field. Handlers render it
// next to the offending form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
