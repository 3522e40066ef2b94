package index

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/facultyhub/ai"
	"github.com/poiesic/facultyhub/core"
)

// BatchProcessor embeds one batch of index documents.
type BatchProcessor struct {
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds the texts of docs and returns copies carrying the
// normalized vectors. The embedding call is retried with exponential backoff.
func (bp *BatchProcessor) Process(ctx context.Context, docs []core.IndexedDocument) ([]*core.IndexedDocument, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Text()
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(docs) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingMismatch, len(docs), len(embeddings))
	}

	out := make([]*core.IndexedDocument, len(docs))
	for i := range docs {
		out[i] = &core.IndexedDocument{
			Tag:      docs[i].Tag,
			Interest: docs[i].Interest,
			Vector:   NormalizeVector(embeddings[i]),
		}
	}
	return out, nil
}
