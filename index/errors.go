package index

import "errors"

var (
	// ErrRepositoryRequired is returned when no index repository is supplied.
	ErrRepositoryRequired = errors.New("index repository is required")

	// ErrEmbedderRequired is returned when no embedder is supplied.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrCorpusRequired is returned when no corpus is supplied.
	ErrCorpusRequired = errors.New("corpus is required")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrNotBuilt is returned when searching an index that has not been synced
	// with a corpus.
	ErrNotBuilt = errors.New("index has not been built")

	// ErrInvalidK is returned when a search asks for fewer than one result.
	ErrInvalidK = errors.New("k must be at least 1")

	// ErrEmbeddingMismatch is returned when an embedder returns a different
	// number of vectors than texts it was given.
	ErrEmbeddingMismatch = errors.New("embedding count mismatch")
)
