package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/facultyhub/core"
)

// overFetchFactor is how many index results are requested per wanted tag.
const overFetchFactor = 10

// DocumentSearcher is the part of the embedding index the retriever uses.
type DocumentSearcher interface {
	// Search returns the texts of the k documents nearest to query.
	Search(ctx context.Context, query string, k int) ([]string, error)
	// Count returns the number of indexed documents.
	Count() int
}

// Retriever maps free-text queries to faculty records.
type Retriever struct {
	index   DocumentSearcher
	corpus  *core.Corpus
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithTimeout bounds each index search. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Retriever) error {
		if timeout < 0 {
			return ErrInvalidTimeout
		}
		r.timeout = timeout
		return nil
	}
}

// NewRetriever creates a retriever over corpus. A nil index is accepted;
// retrieval then always returns no records.
func NewRetriever(index DocumentSearcher, corpus *core.Corpus, opts ...Option) (*Retriever, error) {
	if corpus == nil {
		return nil, ErrCorpusRequired
	}

	r := &Retriever{
		index:  index,
		corpus: corpus,
		logger: slog.Default().With("component", "retriever"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve returns the records of the topK interest groups nearest to query.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) []core.FacultyRecord {
	return r.RetrieveWithMonitor(ctx, query, topK, nil)
}

// RetrieveWithMonitor is Retrieve with callbacks at each stage.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, topK int, monitor RetrievalMonitor) []core.FacultyRecord {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query, topK)

	records := r.retrieve(ctx, query, topK, monitor)
	monitor.Finish(records)
	return records
}

func (r *Retriever) retrieve(ctx context.Context, query string, topK int, monitor RetrievalMonitor) []core.FacultyRecord {
	empty := []core.FacultyRecord{}

	if topK < 1 {
		r.logger.Warn("retrieval requested no results", "topK", topK)
		return empty
	}
	if r.index == nil {
		r.logger.Warn("retrieval without an index", "query", query)
		return empty
	}

	count := r.index.Count()
	if count == 0 {
		r.logger.Warn("index is empty", "query", query)
		return empty
	}
	// Compare before multiplying so a huge topK cannot overflow.
	fetch := count
	if topK <= count/overFetchFactor {
		fetch = topK * overFetchFactor
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	texts, err := r.index.Search(ctx, query, fetch)
	if err != nil {
		r.logger.Error("index search failed", "query", query, "err", err)
		return empty
	}
	monitor.AfterIndexSearch(texts)

	tags := r.selectTags(texts, topK, monitor)
	monitor.AfterTagSelection(tags)
	if len(tags) == 0 {
		r.logger.Debug("no usable tags in search results", "query", query, "results", len(texts))
		return empty
	}

	records := make([]core.FacultyRecord, 0, len(tags))
	for _, tag := range tags {
		records = append(records, r.corpus.RecordsForTag(tag)...)
	}

	r.logger.Debug("retrieved faculty", "query", query, "tags", len(tags), "records", len(records))
	return records
}

// selectTags returns up to topK distinct corpus tags in result order.
func (r *Retriever) selectTags(texts []string, topK int, monitor RetrievalMonitor) []core.Tag {
	size := min(topK, len(texts))
	seen := make(map[core.Tag]struct{}, size)
	tags := make([]core.Tag, 0, size)

	for _, text := range texts {
		tag, ok := core.ParseDocumentTag(text)
		if !ok {
			monitor.SkippedDocument(text, SkipUnparseable)
			continue
		}
		if !r.corpus.HasTag(tag) {
			monitor.SkippedDocument(text, SkipUnknownTag)
			continue
		}
		if _, dup := seen[tag]; dup {
			monitor.SkippedDocument(text, SkipDuplicate)
			continue
		}

		seen[tag] = struct{}{}
		tags = append(tags, tag)
		if len(tags) == topK {
			break
		}
	}

	return tags
}
