package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces free text from a prompt. It backs outreach email drafting.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate returns the model's completion for prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// CorpusPreparer is implemented by embedders that must see the full document
// set before they can embed, such as a TF-IDF vocabulary builder. Prepared
// returns an embedder fitted to documents and leaves the receiver unchanged.
type CorpusPreparer interface {
	Prepared(documents []string) (Embedder, error)
}

// Identifier is implemented by embedders that can name the model behind
// their vectors. Indexes record the identity so that switching models
// invalidates stored vectors.
type Identifier interface {
	Identity() string
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Generator returns the text generation service, or nil when the
	// provider has none.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}

// EmbedderIdentity returns a stable name for e, used to detect stale vectors.
func EmbedderIdentity(e Embedder) string {
	if id, ok := e.(Identifier); ok {
		return id.Identity()
	}
	return "unknown"
}
