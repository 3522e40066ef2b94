package facultyhub

import "errors"

var (
	// ErrNoGenerator is returned by drafting operations when the configured
	// AI provider cannot generate text.
	ErrNoGenerator = errors.New("configured AI provider cannot draft emails")

	// ErrClosed is returned by operations on a closed Hub.
	ErrClosed = errors.New("hub is closed")
)
