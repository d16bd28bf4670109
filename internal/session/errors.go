package session

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when a submission contains no translatable text.
	ErrEmptyInput = errors.New("session: input text is empty")

	// ErrSessionNotFound is returned when no session exists for the given ID.
	ErrSessionNotFound = errors.New("session: not found")

	// ErrIncompleteSession is returned when a session record is missing the
	// state an operation depends on, e.g. a translate call on a session whose
	// analysis was lost.
	ErrIncompleteSession = errors.New("session: record incomplete")

	// ErrTranslationBackendUnavailable is returned when the translation
	// backend is not configured or not reachable.
	ErrTranslationBackendUnavailable = errors.New("session: translation backend unavailable")
)

// InvalidStateError reports an operation attempted in the wrong lifecycle
// state. It tells the caller which state the operation requires.
type InvalidStateError struct {
	Current  Status
	Required Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("session: invalid state %q, operation requires %q", e.Current, e.Required)
}
