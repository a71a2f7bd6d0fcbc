package user

import (
	"errors"
	"strings"
)

// DuplicateMessage is the alert shown when a submission collides with an existing record.
const DuplicateMessage = "User with the same name or email already exists."

var (
	ErrDuplicate      = errors.New("duplicate user name or email")
	ErrNotFound       = errors.New("user not found")
	ErrInvalidSortKey = errors.New("invalid sort key")
)

// FieldIssue is one failed rule on one form field.
type FieldIssue struct {
	Field   string
	Rule    string
	Message string
}

// ValidationError lists every failing form field, in field order.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Field+": "+is.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Messages maps field name to its message, the shape the form renders.
func (e *ValidationError) Messages() map[string]string {
	out := make(map[string]string, len(e.Issues))
	for _, is := range e.Issues {
		out[is.Field] = is.Message
	}
	return out
}
