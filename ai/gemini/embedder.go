package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
)

// maxBatch is the largest number of texts sent in one BatchEmbedContents call.
const maxBatch = 100

// ErrNoEmbedding indicates the API returned no vector for an input.
var ErrNoEmbedding = errors.New("gemini: no embedding returned")

// Embedder implements ai.Embedder with a Gemini embedding model.
type Embedder struct {
	model     *genai.EmbeddingModel
	modelName string
	guard     *guard
	logger    *slog.Logger
}

// Identity names the embedding model.
func (e *Embedder) Identity() string {
	return "gemini:" + e.modelName
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating embedding for single text", "length", len(text))

	result, err := e.guard.do(ctx, func(ctx context.Context) (any, error) {
		resp, err := e.model.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return nil, err
		}
		if resp.Embedding == nil {
			return nil, ErrNoEmbedding
		}
		return resp.Embedding.Values, nil
	})
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, err
	}
	return result.([]float32), nil
}

// EmbedTexts generates vector embeddings for multiple texts, splitting the
// input into API sized batches.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := min(start+maxBatch, len(texts))
		chunk := texts[start:end]

		result, err := e.guard.do(ctx, func(ctx context.Context) (any, error) {
			batch := e.model.NewBatch()
			for _, t := range chunk {
				batch.AddContent(genai.Text(t))
			}
			resp, err := e.model.BatchEmbedContents(ctx, batch)
			if err != nil {
				return nil, err
			}
			if len(resp.Embeddings) != len(chunk) {
				return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrNoEmbedding, len(resp.Embeddings), len(chunk))
			}
			vectors := make([][]float32, len(chunk))
			for i, emb := range resp.Embeddings {
				if emb == nil {
					return nil, ErrNoEmbedding
				}
				vectors[i] = emb.Values
			}
			return vectors, nil
		})
		if err != nil {
			e.logger.Error("failed to generate embeddings", "count", len(chunk), "err", err)
			return nil, err
		}
		out = append(out, result.([][]float32)...)
	}
	return out, nil
}
