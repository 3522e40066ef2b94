package storage

import (
	"context"
	"time"

	"github.com/poiesic/facultyhub/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases repository resources. It does not close the backend.
	Close() error
}

// IndexRepository persists the embedding index: one document per tag plus
// the manifest describing what the documents were built from.
type IndexRepository interface {
	Repository

	// PutDocuments stores documents keyed by tag, replacing any document
	// already stored under the same tag.
	PutDocuments(ctx context.Context, docs ...*core.IndexedDocument) error

	// GetDocument retrieves the document stored under tag.
	// Returns ErrNotFound if no such document exists.
	GetDocument(ctx context.Context, tag core.Tag) (*core.IndexedDocument, error)

	// GetDocuments returns every stored document in ascending tag order.
	GetDocuments(ctx context.Context) ([]*core.IndexedDocument, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)

	// FindSimilar finds documents similar to the given unit vector.
	// Returns documents with similarity >= minSimilarity, up to limit results,
	// ordered by score descending with ties broken by ascending tag.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// GetManifest returns the stored manifest.
	// Returns ErrNotFound if the index has never been completed.
	GetManifest(ctx context.Context) (*core.IndexManifest, error)

	// PutManifest marks the index as complete for the given manifest.
	PutManifest(ctx context.Context, manifest *core.IndexManifest) error

	// Replace swaps the stored documents and manifest for docs and manifest.
	// Readers see either the previous index or the new one, never a mix, and
	// a failed Replace leaves the previous index in place.
	Replace(ctx context.Context, manifest *core.IndexManifest, docs ...*core.IndexedDocument) error

	// Reset removes every document and the manifest.
	Reset(ctx context.Context) error
}

// OutreachRepository provides operations for the outreach interaction log.
type OutreachRepository interface {
	Repository

	// AddInteractions validates and appends interactions to the log.
	// IDs are always generated from a sequence.
	// Returns the interactions with IDs populated.
	AddInteractions(ctx context.Context, interactions ...*core.Interaction) ([]*core.Interaction, error)

	// UpdateInteractions replaces existing interactions.
	// Returns ErrNotFound if any interaction doesn't exist.
	UpdateInteractions(ctx context.Context, interactions ...*core.Interaction) ([]*core.Interaction, error)

	// GetInteraction retrieves a single interaction by ID.
	// Returns ErrNotFound if the interaction doesn't exist.
	GetInteraction(ctx context.Context, id core.ID) (*core.Interaction, error)

	// ListInteractions returns every interaction ordered by SentAt, then ID.
	ListInteractions(ctx context.Context) ([]*core.Interaction, error)

	// DueFollowups returns unanswered interactions whose FollowupAt is set
	// and not after now, ordered by FollowupAt.
	DueFollowups(ctx context.Context, now time.Time) ([]*core.Interaction, error)
}
