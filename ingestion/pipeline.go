package ingestion

import (
	"context"
	"log/slog"

	"github.com/poiesic/facultyhub/core"
)

// NormalizeAndDedupe normalizes every source in sorted id order and returns
// the deduplicated records.
func NormalizeAndDedupe(sources map[string][]map[string]any) []core.FacultyRecord {
	return normalizeAndDedupe(NewNormalizer(), sources)
}

func normalizeAndDedupe(n *Normalizer, sources Sources) []core.FacultyRecord {
	var all []core.FacultyRecord
	for _, id := range sources.IDs() {
		all = append(all, n.Normalize(id, sources[id])...)
	}
	return Deduplicate(all)
}

// Pipeline orchestrates loading, normalization, deduplication and tagging.
type Pipeline struct {
	loader     *Loader
	normalizer *Normalizer
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*pipelineConfig)

type pipelineConfig struct {
	poolSize int
	colleges map[string]string
	logger   *slog.Logger
}

// WithWorkers sets the number of concurrent file readers.
func WithWorkers(n int) Option {
	return func(c *pipelineConfig) {
		c.poolSize = n
	}
}

// WithCollegeTable replaces the source to college table.
func WithCollegeTable(colleges map[string]string) Option {
	return func(c *pipelineConfig) {
		c.colleges = colleges
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *pipelineConfig) {
		c.logger = logger
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	cfg := pipelineConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	loaderOpts := []LoaderOption{WithLoaderLogger(cfg.logger.With("component", "loader"))}
	if cfg.poolSize > 0 {
		loaderOpts = append(loaderOpts, WithPoolSize(cfg.poolSize))
	}
	loader, err := NewLoader(loaderOpts...)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		loader: loader,
		normalizer: NewNormalizer(
			WithColleges(cfg.colleges),
			WithNormalizerLogger(cfg.logger.With("component", "normalizer")),
		),
		logger: cfg.logger.With("component", "ingestion"),
	}, nil
}

// Records loads dir and returns the normalized, deduplicated records.
func (p *Pipeline) Records(ctx context.Context, dir string) ([]core.FacultyRecord, error) {
	sources, err := p.loader.LoadDir(ctx, dir)
	if err != nil {
		return nil, err
	}
	return p.FromSources(sources), nil
}

// FromSources normalizes and deduplicates already loaded sources.
func (p *Pipeline) FromSources(sources Sources) []core.FacultyRecord {
	records := normalizeAndDedupe(p.normalizer, sources)
	p.logger.Info("normalized sources", "sources", len(sources), "records", len(records))
	return records
}

// Corpus loads dir and returns the tagged corpus.
func (p *Pipeline) Corpus(ctx context.Context, dir string) (*core.Corpus, error) {
	records, err := p.Records(ctx, dir)
	if err != nil {
		return nil, err
	}
	corpus, err := AssignTags(records)
	if err != nil {
		return nil, err
	}
	p.logger.Info("built corpus", "records", corpus.Len(), "tags", corpus.DocumentCount())
	return corpus, nil
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.loader.Release()
}
