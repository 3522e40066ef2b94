package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/facultyhub/ai"
	"github.com/poiesic/facultyhub/core"
	"github.com/poiesic/facultyhub/storage"
)

const (
	DefaultBatchSize  = 32
	DefaultWorkers    = 4
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
)

// Index is the embedding index over one corpus's interest documents.
// Search is safe for concurrent use. Sync embeds without blocking searches
// and swaps the new documents in only once all of them are embedded, so a
// failed rebuild leaves the previous index searchable.
type Index struct {
	repo     storage.IndexRepository
	embedder ai.Embedder
	logger   *slog.Logger

	batchSize  int
	workers    int
	maxRetries int
	retryDelay time.Duration
	progress   io.Writer
	force      bool

	syncMu sync.Mutex

	mu       sync.RWMutex
	active   ai.Embedder // embeds queries for the documents in manifest
	manifest *core.IndexManifest
}

// Option configures an Index.
type Option func(*Index)

// WithBatchSize sets how many documents go to the embedder per call.
func WithBatchSize(n int) Option {
	return func(i *Index) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

// WithWorkers sets the number of batches embedded concurrently.
func WithWorkers(n int) Option {
	return func(i *Index) {
		if n > 0 {
			i.workers = n
		}
	}
}

// WithRetry sets the attempts and base backoff for each batch.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(i *Index) {
		i.maxRetries = maxAttempts
		i.retryDelay = baseDelay
	}
}

// WithProgress writes build progress to w.
func WithProgress(w io.Writer) Option {
	return func(i *Index) {
		i.progress = w
	}
}

// WithForce makes Open rebuild even when the stored manifest matches.
func WithForce(force bool) Option {
	return func(i *Index) {
		i.force = force
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Index) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New creates an index over repo without touching stored data.
// Call Sync before searching.
func New(repo storage.IndexRepository, embedder ai.Embedder, opts ...Option) (*Index, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	idx := &Index{
		repo:       repo,
		embedder:   embedder,
		logger:     slog.Default().With("component", "index"),
		batchSize:  DefaultBatchSize,
		workers:    DefaultWorkers,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		progress:   io.Discard,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx, nil
}

// Open creates an index and syncs it with corpus.
func Open(ctx context.Context, repo storage.IndexRepository, embedder ai.Embedder, corpus *core.Corpus, opts ...Option) (*Index, error) {
	idx, err := New(repo, embedder, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := idx.Sync(ctx, corpus, idx.force); err != nil {
		return nil, err
	}
	return idx, nil
}

// Documents returns the documents indexed for corpus: one per tag, or the
// single sentinel document when the corpus has none.
func Documents(corpus *core.Corpus) []core.IndexedDocument {
	docs := corpus.Documents()
	if len(docs) == 0 {
		docs = []core.IndexedDocument{{Tag: 0, Interest: core.NoInterestsSentinel}}
	}
	return docs
}

// Sync makes the stored index match corpus. Stored vectors are reused when
// the manifest's content hash and embedder match; otherwise, or when force
// is set, the index is rebuilt. Reports whether a build happened.
func (i *Index) Sync(ctx context.Context, corpus *core.Corpus, force bool) (bool, error) {
	if corpus == nil {
		return false, ErrCorpusRequired
	}

	i.syncMu.Lock()
	defer i.syncMu.Unlock()

	docs := Documents(corpus)
	texts := make([]string, len(docs))
	for n := range docs {
		texts[n] = docs[n].Text()
	}

	// Vocabulary-based embedders are fitted on a copy; queries keep using
	// the active embedder until the new documents are committed.
	embedder := i.embedder
	if preparer, ok := i.embedder.(ai.CorpusPreparer); ok {
		prepared, err := preparer.Prepared(texts)
		if err != nil {
			return false, fmt.Errorf("prepare embedder: %w", err)
		}
		embedder = prepared
	}

	want := &core.IndexManifest{
		ContentHash: core.ContentHash(texts...),
		Documents:   len(docs),
		Embedder:    ai.EmbedderIdentity(embedder),
	}

	stored, err := i.repo.GetManifest(ctx)
	switch {
	case err == nil:
		if !force && stored.ContentHash == want.ContentHash && stored.Embedder == want.Embedder {
			i.logger.Info("reusing index", "documents", stored.Documents, "embedder", stored.Embedder)
			i.mu.Lock()
			i.active, i.manifest = embedder, stored
			i.mu.Unlock()
			return false, nil
		}
		i.logger.Info("rebuilding index",
			"force", force,
			"stale", stored.ContentHash != want.ContentHash,
			"embedderChanged", stored.Embedder != want.Embedder)
	case errors.Is(err, storage.ErrNotFound):
		i.logger.Info("building index", "documents", len(docs))
	default:
		return false, fmt.Errorf("read manifest: %w", err)
	}

	embedded, err := i.build(ctx, embedder, docs)
	if err != nil {
		return false, err
	}

	want.BuiltAt = time.Now().UTC().Truncate(time.Microsecond)

	// Searches wait only for the local write, so none pairs the old
	// embedder with the new vectors.
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.repo.Replace(ctx, want, embedded...); err != nil {
		return false, fmt.Errorf("write index: %w", err)
	}
	i.active, i.manifest = embedder, want
	return true, nil
}

// build embeds docs in batches on a worker pool. Nothing is stored.
func (i *Index) build(ctx context.Context, embedder ai.Embedder, docs []core.IndexedDocument) ([]*core.IndexedDocument, error) {
	pool, err := ants.NewPool(i.workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	processor := NewBatchProcessor(embedder, i.maxRetries, i.retryDelay)
	tracker := NewProgressTracker(i.progress, "documents", len(docs), i.batchSize)
	tracker.Start()

	var (
		wg       sync.WaitGroup
		failOnce sync.Once
		firstErr error
	)
	fail := func(err error) {
		failOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	// Each batch fills its own range of out.
	out := make([]*core.IndexedDocument, len(docs))
	for start := 0; start < len(docs); start += i.batchSize {
		if ctx.Err() != nil {
			break
		}
		batch := docs[start:min(start+i.batchSize, len(docs))]

		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			embedded, err := processor.Process(ctx, batch)
			if err != nil {
				fail(err)
				return
			}
			copy(out[start:], embedded)
			tracker.Increment(len(batch))
		}); err != nil {
			wg.Done()
			fail(fmt.Errorf("submit batch: %w", err))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("build index: %w", firstErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tracker.Finish()
	i.logger.Info("index built", "documents", len(docs), "elapsed", tracker.Elapsed().Round(time.Millisecond))
	return out, nil
}

// SearchResults embeds query and returns up to k scored documents, most
// similar first.
func (i *Index) SearchResults(ctx context.Context, query string, k int) ([]*core.SearchResult, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.manifest == nil {
		return nil, ErrNotBuilt
	}

	vector, err := i.active.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	vector = NormalizeVector(vector)
	if len(vector) == 0 {
		return nil, nil
	}

	return i.repo.FindSimilar(ctx, vector, float32(math.Inf(-1)), k)
}

// Search returns the texts of the k documents nearest to query.
func (i *Index) Search(ctx context.Context, query string, k int) ([]string, error) {
	results, err := i.SearchResults(ctx, query, k)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(results))
	for n, r := range results {
		texts[n] = r.Document.Text()
	}
	return texts, nil
}

// Count returns the number of indexed documents, or zero before Sync.
func (i *Index) Count() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.manifest == nil {
		return 0
	}
	return i.manifest.Documents
}

// Manifest returns a copy of the active manifest, or nil before Sync.
func (i *Index) Manifest() *core.IndexManifest {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.manifest == nil {
		return nil
	}
	m := *i.manifest
	return &m
}
