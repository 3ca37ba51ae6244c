package preview

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("preview: aborted")
	// ErrNoBuilder is returned when a session is created without a builder.
	ErrNoBuilder = errors.New("preview: builder is required")
)
