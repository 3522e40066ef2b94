package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/facultyhub/core"
	"github.com/poiesic/facultyhub/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend(t *testing.T) {
	t.Run("in memory and on disk", func(t *testing.T) {
		for _, tc := range []struct {
			name     string
			path     string
			inMemory bool
		}{
			{"memory", "", true},
			{"disk", filepath.Join(t.TempDir(), "index"), false},
		} {
			t.Run(tc.name, func(t *testing.T) {
				backend, err := OpenBackend(tc.path, tc.inMemory)
				require.NoError(t, err)
				assert.False(t, backend.IsClosed())

				require.NoError(t, backend.Close())
				assert.True(t, backend.IsClosed())
			})
		}
	})

	t.Run("path is a regular file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "outreach")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

		backend, err := OpenBackend(path, false)
		if err == nil {
			backend.Close()
		}
		assert.Error(t, err)
	})
}

func TestFindSimilar_NoRecords(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	vector := []float32{0.1, 0.2, 0.3}

	results, err := backend.FindSimilar(ctx, vector, 0.5, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func seedDocuments(t *testing.T, docs ...*core.IndexedDocument) (storage.IndexRepository, *Backend) {
	t.Helper()
	indexRepo, outreachRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		outreachRepo.Close()
		indexRepo.Close()
		backend.Close()
	})

	require.NoError(t, indexRepo.PutDocuments(context.Background(), docs...))
	return indexRepo, backend
}

func TestFindSimilar_WithRecords(t *testing.T) {
	_, backend := seedDocuments(t,
		&core.IndexedDocument{Tag: 0, Interest: "Robotics", Vector: []float32{1.0, 0.0, 0.0}},
		&core.IndexedDocument{Tag: 1, Interest: "Control", Vector: []float32{0.9, 0.1, 0.0}},
		&core.IndexedDocument{Tag: 2, Interest: "Biology", Vector: []float32{0.0, 0.0, 1.0}},
		&core.IndexedDocument{Tag: 3, Interest: "Unembedded"},
	)

	results, err := backend.FindSimilar(context.Background(), []float32{1.0, 0.0, 0.0}, 0.8, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Results should be sorted by score descending
	for i := 0; i < len(results)-1; i++ {
		assert.GreaterOrEqual(t, results[i].Score, results[i+1].Score)
	}
	assert.Equal(t, "Robotics", results[0].Document.Interest)
	assert.Greater(t, results[0].Score, float32(0.8))
}

func TestFindSimilar_ThresholdFiltering(t *testing.T) {
	_, backend := seedDocuments(t,
		&core.IndexedDocument{Tag: 0, Interest: "High", Vector: []float32{1.0, 0.0, 0.0}},
		&core.IndexedDocument{Tag: 1, Interest: "Medium", Vector: []float32{0.7, 0.3, 0.0}},
		&core.IndexedDocument{Tag: 2, Interest: "Low", Vector: []float32{0.3, 0.7, 0.0}},
	)
	ctx := context.Background()
	queryVector := []float32{1.0, 0.0, 0.0}

	t.Run("high threshold", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, queryVector, 0.95, 10)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("medium threshold", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, queryVector, 0.6, 10)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("low threshold", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, queryVector, 0.2, 10)
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})
}

func TestFindSimilar_LimitResults(t *testing.T) {
	docs := make([]*core.IndexedDocument, 10)
	for i := range docs {
		docs[i] = &core.IndexedDocument{Tag: core.Tag(i), Interest: "Same", Vector: []float32{0.9, 0.1, 0.0}}
	}
	_, backend := seedDocuments(t, docs...)
	ctx := context.Background()
	queryVector := []float32{1.0, 0.0, 0.0}

	t.Run("limit to 3", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, queryVector, 0.5, 3)
		require.NoError(t, err)
		require.Len(t, results, 3)
		// Equal scores keep ascending tag order
		assert.Equal(t, core.Tag(0), results[0].Document.Tag)
		assert.Equal(t, core.Tag(1), results[1].Document.Tag)
		assert.Equal(t, core.Tag(2), results[2].Document.Tag)
	})

	t.Run("limit higher than results", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, queryVector, 0.5, 100)
		require.NoError(t, err)
		assert.Len(t, results, 10)
	})
}

func TestFindSimilar_InvalidQuery(t *testing.T) {
	_, backend := seedDocuments(t,
		&core.IndexedDocument{Tag: 0, Interest: "AI", Vector: []float32{1, 0}},
	)
	ctx := context.Background()

	_, err := backend.FindSimilar(ctx, []float32{1, 0}, 0, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)

	_, err = backend.FindSimilar(ctx, nil, 0, 5)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)

	_, err = backend.FindSimilar(ctx, []float32{1, 0, 0}, 0, 5)
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
}

func TestFindSimilar_Cancelled(t *testing.T) {
	_, backend := seedDocuments(t,
		&core.IndexedDocument{Tag: 0, Interest: "AI", Vector: []float32{1, 0}},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := backend.FindSimilar(ctx, []float32{1, 0}, 0, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDotProduct(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"same direction", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"unit vectors", []float32{0.6, 0.8}, []float32{0.8, 0.6}, 0.96},
		{"shorter wins", []float32{1, 2, 3}, []float32{1, 2}, 5},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, dotProduct(tt.a, tt.b), 0.0001)
		})
	}
}

func TestWithTransaction(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	require.NoError(t, backend.WithTransaction(ctx, func(context.Context) error { return nil }))

	err = backend.WithTransaction(ctx, func(context.Context) error { return assert.AnError })
	assert.Equal(t, assert.AnError, err)

	require.NoError(t, backend.Close())
	err = backend.WithTransaction(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestDropPrefix(t *testing.T) {
	indexRepo, backend := seedDocuments(t,
		&core.IndexedDocument{Tag: 0, Interest: "AI", Vector: []float32{1, 0}},
		&core.IndexedDocument{Tag: 1, Interest: "Vision", Vector: []float32{0, 1}},
	)
	ctx := context.Background()

	require.NoError(t, backend.DropPrefix([]byte(indexDocumentPrefix)))
	n, err := indexRepo.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInteractionSequence(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	seq, err := backend.GetSequence(interactionIDSeq)
	require.NoError(t, err)
	defer seq.Release()

	first, err := seq.Next()
	require.NoError(t, err)
	second, err := seq.Next()
	require.NoError(t, err)
	assert.Greater(t, second, first)
}
