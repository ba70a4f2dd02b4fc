// ABOUTME: Sentinel errors returned by the trade store.
// ABOUTME: Callers match them with errors.Is.
package storage

import (
	"errors"
	"strings"
)

var (
	// ErrDuplicate is returned when a trade collides on position_id or (date, time).
	ErrDuplicate = errors.New("duplicate trade")
	// ErrNotFound is returned when a trade or tag id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTagExists is returned when renaming a tag to a name already in use.
	ErrTagExists = errors.New("tag already exists")
	// ErrTagInUse is returned when deleting a tag still attached to trades.
	ErrTagInUse = errors.New("tag in use")
	// ErrInvalid is returned for input that fails validation.
	ErrInvalid = errors.New("invalid input")
)

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
