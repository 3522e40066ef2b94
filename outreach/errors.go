package outreach

import "errors"

var (
	// ErrGeneratorRequired is returned when a Drafter has no generator.
	ErrGeneratorRequired = errors.New("generator is required")

	// ErrRepositoryRequired is returned when a Log has no repository.
	ErrRepositoryRequired = errors.New("outreach repository is required")

	// ErrLogRequired is returned when a Reminder has no log.
	ErrLogRequired = errors.New("outreach log is required")

	// ErrMissingStudentName is returned when a draft request has no student name.
	ErrMissingStudentName = errors.New("student name is required")

	// ErrMissingProfessorName is returned when a draft request has no professor name.
	ErrMissingProfessorName = errors.New("professor name is required")

	// ErrMissingIntent is returned when intent detection is requested without a note.
	ErrMissingIntent = errors.New("a note is required to detect intent")

	// ErrEmptyDraft is returned when the generator produces only whitespace.
	ErrEmptyDraft = errors.New("generator returned an empty draft")

	// ErrInvalidInterval is returned for non-positive reminder intervals.
	ErrInvalidInterval = errors.New("reminder interval must be positive")

	// ErrInvalidFollowupDelay is returned for non-positive follow-up delays.
	ErrInvalidFollowupDelay = errors.New("follow-up delay must be positive")
)
