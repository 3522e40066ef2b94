// Package tfidf provides an offline ai.Embedder that vectorizes text with
// TF-IDF weights learned from the indexed documents.
//
// It needs no network service, which makes it the default for air-gapped
// installs and for tests. It has no text generator.
package tfidf

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/poiesic/facultyhub/ai"
)

var (
	// ErrNotPrepared indicates Embed was called before Prepare.
	ErrNotPrepared = errors.New("tfidf: embedder not prepared")

	// ErrEmptyCorpus indicates Prepare received no usable tokens.
	ErrEmptyCorpus = errors.New("tfidf: no tokens in corpus")
)

// Embedder implements ai.Embedder and ai.CorpusPreparer.
// Vectors are L2 normalized; text with no known terms embeds to the zero vector.
type Embedder struct {
	mu           sync.RWMutex
	vocabulary   map[string]int
	idf          []float64
	prepared     bool
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewEmbedder creates an unprepared TF-IDF embedder.
func NewEmbedder() *Embedder {
	return &Embedder{
		vocabulary:   make(map[string]int),
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Identity names the embedder.
func (e *Embedder) Identity() string { return "tfidf" }

// Dimension returns the vocabulary size.
func (e *Embedder) Dimension() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.idf)
}

// Prepare builds the vocabulary and smoothed IDF values from documents.
// Calling it again replaces the previous vocabulary.
func (e *Embedder) Prepare(documents []string) error {
	df := make(map[string]int)
	for _, text := range documents {
		seen := make(map[string]struct{})
		for _, tok := range e.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return ErrEmptyCorpus
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocabulary := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(documents))
	for i, term := range terms {
		vocabulary[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	e.mu.Lock()
	e.vocabulary = vocabulary
	e.idf = idf
	e.prepared = true
	e.mu.Unlock()
	return nil
}

// Prepared returns a new embedder fitted to documents. The receiver keeps
// its vocabulary, so vectors already built with it stay comparable.
func (e *Embedder) Prepared(documents []string) (ai.Embedder, error) {
	fitted := &Embedder{
		vocabulary:   make(map[string]int),
		tokenPattern: e.tokenPattern,
		stopwords:    e.stopwords,
	}
	if err := fitted.Prepare(documents); err != nil {
		return nil, err
	}
	return fitted, nil
}

// EmbedText computes the TF-IDF vector for text.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.prepared {
		return nil, ErrNotPrepared
	}
	return e.embed(text), nil
}

// EmbedTexts computes vectors for each text in order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.prepared {
		return nil, ErrNotPrepared
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.embed(text)
	}
	return out, nil
}

// embed requires e.mu held for reading.
func (e *Embedder) embed(text string) []float32 {
	vec := make([]float32, len(e.idf))
	tf := make(map[int]int)
	total := 0
	for _, tok := range e.tokenize(text) {
		if idx, ok := e.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}

	weights := make(map[int]float64, len(tf))
	norm := 0.0
	for idx, count := range tf {
		w := float64(count) / float64(total) * e.idf[idx]
		weights[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for idx, w := range weights {
		vec[idx] = float32(w / norm)
	}
	return vec
}

func (e *Embedder) tokenize(text string) []string {
	raw := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by",
		"with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those",
		"from", "up", "down", "over", "under", "than", "so", "such", "into", "about", "between", "through",
		"can", "will", "just", "should", "now", "no", "etc",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// Provider wraps the embedder as an ai.AIProvider with no generator.
type Provider struct {
	embedder *Embedder
}

// NewProvider creates a provider around a fresh embedder.
func NewProvider() *Provider {
	return &Provider{embedder: NewEmbedder()}
}

// Embedder returns the TF-IDF embedder.
func (p *Provider) Embedder() ai.Embedder { return p.embedder }

// Generator returns nil; TF-IDF cannot generate text.
func (p *Provider) Generator() ai.Generator { return nil }

// Close is a no-op.
func (p *Provider) Close() error { return nil }
