package errors

import "errors"

var (
	// ErrEventConflict marks a duplicate event id delivered with a different
	// payload; the feed refuses it rather than silently diverging.
	ErrEventConflict = errors.New("event feed conflict")
)
