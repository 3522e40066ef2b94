package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/poiesic/facultyhub/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ai.Embedder       = (*Embedder)(nil)
	_ ai.CorpusPreparer = (*Embedder)(nil)
	_ ai.AIProvider     = (*Provider)(nil)
)

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestEmbedder_NotPrepared(t *testing.T) {
	e := NewEmbedder()

	_, err := e.EmbedText(context.Background(), "robotics")
	assert.ErrorIs(t, err, ErrNotPrepared)

	_, err = e.EmbedTexts(context.Background(), []string{"robotics"})
	assert.ErrorIs(t, err, ErrNotPrepared)
}

func TestEmbedder_PrepareEmpty(t *testing.T) {
	e := NewEmbedder()
	assert.ErrorIs(t, e.Prepare(nil), ErrEmptyCorpus)
	assert.ErrorIs(t, e.Prepare([]string{"0 1 2"}), ErrEmptyCorpus)
}

func TestEmbedder_Prepared(t *testing.T) {
	base := NewEmbedder()
	require.NoError(t, base.Prepare([]string{"0 robotics"}))

	fitted, err := base.Prepared([]string{"0 optics", "1 lasers"})
	require.NoError(t, err)
	assert.Equal(t, "tfidf", ai.EmbedderIdentity(fitted))

	v, err := fitted.EmbedText(context.Background(), "optics")
	require.NoError(t, err)
	assert.Len(t, v, 2)

	// The receiver keeps its own vocabulary
	assert.Equal(t, 1, base.Dimension())
	v, err = base.EmbedText(context.Background(), "robotics")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, dot(v, v), 1e-5)

	_, err = base.Prepared(nil)
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = NewEmbedder().Prepared([]string{"0 ai"})
	assert.NoError(t, err, "an unprepared receiver can still fit a copy")
}

func TestEmbedder_RanksRelatedText(t *testing.T) {
	docs := []string{
		"0 Machine Learning, Computer Vision",
		"1 Power Electronics, Smart Grids",
		"2 Robotics, Control Systems",
	}
	e := NewEmbedder()
	require.NoError(t, e.Prepare(docs))
	assert.Positive(t, e.Dimension())

	vectors, err := e.EmbedTexts(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	query, err := e.EmbedText(context.Background(), "computer vision research")
	require.NoError(t, err)

	assert.Greater(t, dot(query, vectors[0]), dot(query, vectors[1]))
	assert.Greater(t, dot(query, vectors[0]), dot(query, vectors[2]))
}

func TestEmbedder_UnitLength(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"0 AI robotics", "1 vision"}))

	v, err := e.EmbedText(context.Background(), "robotics robotics ai")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, math.Sqrt(dot(v, v)), 1e-5)

	zero, err := e.EmbedText(context.Background(), "unrelated words")
	require.NoError(t, err)
	assert.Zero(t, dot(zero, zero))
}

func TestEmbedder_CanceledContext(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"ai"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.EmbedText(ctx, "ai")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProvider(t *testing.T) {
	p := NewProvider()
	assert.NotNil(t, p.Embedder())
	assert.Nil(t, p.Generator())
	assert.NoError(t, p.Close())
	assert.Equal(t, "tfidf", ai.EmbedderIdentity(p.Embedder()))
}
