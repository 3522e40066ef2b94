package ingestion

import "errors"

var (
	// ErrSourceDirRequired is returned when no source directory is given.
	ErrSourceDirRequired = errors.New("source directory required")

	// ErrInvalidSource is returned when a source file is neither a JSON array nor an object.
	ErrInvalidSource = errors.New("invalid source document")
)
