// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package facultyhub aggregates scraped faculty directories into one
// searchable corpus and helps students contact the people they find.
//
// A Hub owns the storage, the AI provider, the corpus built from the source
// directory and the embedding index over it. The corpus and index are built
// on first use.
package facultyhub

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/facultyhub/ai"
	"github.com/poiesic/facultyhub/config"
	"github.com/poiesic/facultyhub/core"
	"github.com/poiesic/facultyhub/index"
	"github.com/poiesic/facultyhub/ingestion"
	"github.com/poiesic/facultyhub/outreach"
	"github.com/poiesic/facultyhub/search"
	"github.com/poiesic/facultyhub/storage"
	"github.com/poiesic/facultyhub/storage/badger"
	"github.com/poiesic/facultyhub/watcher"
)

// Hub is the application entry point.
type Hub struct {
	cfg      *config.AppConfig
	provider ai.AIProvider
	pipeline *ingestion.Pipeline
	logger   *slog.Logger
	progress io.Writer

	indexBackend    *badger.Backend
	outreachBackend *badger.Backend
	indexRepo       storage.IndexRepository
	outreachRepo    storage.OutreachRepository

	log     *outreach.Log
	drafter *outreach.Drafter

	openOnce sync.Once
	loadMu   sync.Mutex // serializes loads; held while a rebuild runs

	mu        sync.RWMutex
	openErr   error
	corpus    *core.Corpus
	index     *index.Index
	retriever *search.Retriever
	closed    bool
}

// Option configures a Hub.
type Option func(*hubOptions)

type hubOptions struct {
	cfg      *config.AppConfig
	provider ai.AIProvider
	inMemory bool
	progress io.Writer
	logger   *slog.Logger
}

// WithConfig sets the application config. Default is config.Default().
func WithConfig(cfg *config.AppConfig) Option {
	return func(o *hubOptions) {
		o.cfg = cfg
	}
}

// WithProvider supplies an AI provider instead of building one from config.
// The Hub takes ownership and closes it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *hubOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps the index and the outreach log in memory.
func WithInMemoryStorage() Option {
	return func(o *hubOptions) {
		o.inMemory = true
	}
}

// WithProgress writes index build progress to w.
func WithProgress(w io.Writer) Option {
	return func(o *hubOptions) {
		o.progress = w
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *hubOptions) {
		o.logger = logger
	}
}

// New opens storage and the AI provider. Sources are not read until the
// corpus or index is first needed.
func New(ctx context.Context, opts ...Option) (*Hub, error) {
	options := &hubOptions{progress: io.Discard}
	for _, opt := range opts {
		opt(options)
	}
	if options.cfg == nil {
		options.cfg = config.Default()
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	cfg := options.cfg

	h := &Hub{
		cfg:      cfg,
		logger:   options.logger.With("component", "hub"),
		progress: options.progress,
	}

	ok := false
	defer func() {
		if !ok {
			h.closeResources()
		}
	}()

	var err error
	if h.indexBackend, err = badger.OpenBackend(cfg.Index.Path, options.inMemory || cfg.Index.InMemory); err != nil {
		return nil, fmt.Errorf("open index storage: %w", err)
	}
	indexRepo, err := badger.NewIndexRepository(h.indexBackend)
	if err != nil {
		return nil, err
	}
	h.indexRepo = indexRepo
	if h.outreachBackend, err = badger.OpenBackend(cfg.Outreach.LogPath, options.inMemory); err != nil {
		return nil, fmt.Errorf("open outreach storage: %w", err)
	}
	outreachRepo, err := badger.NewOutreachRepository(h.outreachBackend)
	if err != nil {
		return nil, err
	}
	h.outreachRepo = outreachRepo

	h.provider = options.provider
	if h.provider == nil {
		if h.provider, err = NewProvider(ctx, ai.NewConfig(cfg.AI.AIOptions()...)); err != nil {
			return nil, fmt.Errorf("create AI provider: %w", err)
		}
	}

	if h.pipeline, err = ingestion.NewPipeline(
		ingestion.WithWorkers(cfg.Sources.Workers),
		ingestion.WithCollegeTable(cfg.Sources.Colleges),
		ingestion.WithLogger(options.logger),
	); err != nil {
		return nil, err
	}

	planner, err := outreach.NewPlanner(time.Duration(cfg.Outreach.FollowupDays) * 24 * time.Hour)
	if err != nil {
		return nil, err
	}
	if h.log, err = outreach.NewLog(h.outreachRepo,
		outreach.WithPlanner(planner),
		outreach.WithLogLogger(options.logger.With("component", "outreach-log")),
	); err != nil {
		return nil, err
	}
	if gen := h.provider.Generator(); gen != nil {
		if h.drafter, err = outreach.NewDrafter(gen,
			outreach.WithDrafterLogger(options.logger.With("component", "drafter")),
		); err != nil {
			return nil, err
		}
	}

	ok = true
	return h, nil
}

// Config returns the active configuration.
func (h *Hub) Config() *config.AppConfig {
	return h.cfg
}

// open builds the corpus from the source directory and syncs the index
// the first time it is called.
func (h *Hub) open(ctx context.Context) error {
	h.openOnce.Do(func() {
		h.finishLoad(h.load(ctx, false))
	})

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrClosed
	}
	return h.openErr
}

// finishLoad records the outcome of a load. A failed reload keeps the
// previously loaded corpus usable.
func (h *Hub) finishLoad(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case err == nil:
		h.openErr = nil
	case h.corpus == nil:
		h.openErr = err
	}
}

// load reads sources, builds the corpus and syncs the index with it.
// Readers keep using the current corpus and retriever until the new ones
// are complete; h.mu is only held to swap them in.
func (h *Hub) load(ctx context.Context, force bool) error {
	h.loadMu.Lock()
	defer h.loadMu.Unlock()

	h.mu.RLock()
	closed := h.closed
	idx := h.index
	h.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	corpus, err := h.pipeline.Corpus(ctx, h.cfg.Sources.Dir)
	if err != nil {
		return fmt.Errorf("build corpus: %w", err)
	}

	if idx == nil {
		idx, err = index.New(h.indexRepo, h.provider.Embedder(),
			index.WithBatchSize(h.cfg.Index.BatchSize),
			index.WithWorkers(h.cfg.Index.Workers),
			index.WithRetry(h.cfg.Index.MaxRetries, time.Duration(h.cfg.Index.RetryDelayMs)*time.Millisecond),
			index.WithProgress(h.progress),
			index.WithLogger(h.logger.With("component", "index")),
		)
		if err != nil {
			return err
		}
	}

	if _, err := idx.Sync(ctx, corpus, force); err != nil {
		return fmt.Errorf("sync index: %w", err)
	}

	retriever, err := search.NewRetriever(idx, corpus,
		search.WithTimeout(time.Duration(h.cfg.Retrieval.TimeoutSecs)*time.Second),
		search.WithLogger(h.logger.With("component", "retriever")),
	)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	h.index = idx
	h.corpus = corpus
	h.retriever = retriever
	return nil
}

// Corpus returns the deduplicated, tagged faculty corpus.
func (h *Hub) Corpus(ctx context.Context) (*core.Corpus, error) {
	if err := h.open(ctx); err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.corpus, nil
}

// Records returns every faculty record in corpus order.
func (h *Hub) Records(ctx context.Context) ([]core.FacultyRecord, error) {
	corpus, err := h.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	return corpus.Records(), nil
}

// IndexManifest returns the manifest of the active index.
func (h *Hub) IndexManifest(ctx context.Context) (*core.IndexManifest, error) {
	if err := h.open(ctx); err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.index.Manifest(), nil
}

// Reload rereads the source directory and brings the index up to date.
// With force the index is rebuilt even when nothing changed. On failure the
// previously loaded corpus stays active.
func (h *Hub) Reload(ctx context.Context, force bool) error {
	first := false
	var err error
	h.openOnce.Do(func() {
		first = true
		err = h.load(ctx, force)
		h.finishLoad(err)
	})
	if !first {
		err = h.load(ctx, force)
		h.finishLoad(err)
	}
	return err
}

// Retrieve returns the faculty whose research interests best match query,
// grouped by the topK nearest interest groups. Failures are logged and
// yield an empty result.
func (h *Hub) Retrieve(ctx context.Context, query string, topK int) []core.FacultyRecord {
	if err := h.open(ctx); err != nil {
		h.logger.Error("retrieval unavailable", "err", err)
		return []core.FacultyRecord{}
	}
	h.mu.RLock()
	retriever := h.retriever
	h.mu.RUnlock()
	return retriever.Retrieve(ctx, query, topK)
}

// Filter browses the corpus by structured criteria.
func (h *Hub) Filter(ctx context.Context, criteria search.FilterCriteria) ([]core.FacultyRecord, error) {
	corpus, err := h.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	return search.Filter(corpus.Records(), criteria), nil
}

// CanDraft reports whether the AI provider can generate emails.
func (h *Hub) CanDraft() bool {
	return h.drafter != nil
}

// Draft writes an outreach email without recording it.
func (h *Hub) Draft(ctx context.Context, req outreach.DraftRequest) (string, error) {
	if h.drafter == nil {
		return "", ErrNoGenerator
	}
	return h.drafter.Draft(ctx, req)
}

// Composition is a drafted email ready to send.
type Composition struct {
	Email       string
	Subject     string
	MailtoLink  string
	GmailLink   string
	SendAt      time.Time
	Interaction *core.Interaction
}

// Compose drafts an email, records it in the outreach log and returns the
// compose links and a suggested send time.
func (h *Hub) Compose(ctx context.Context, req outreach.DraftRequest) (*Composition, error) {
	email, err := h.Draft(ctx, req)
	if err != nil {
		return nil, err
	}

	interaction, err := h.log.Record(ctx, req, email)
	if err != nil {
		return nil, err
	}

	to := strings.TrimSpace(req.ProfessorEmail)
	return &Composition{
		Email:       email,
		Subject:     outreach.Subject(req.StudentName),
		MailtoLink:  outreach.MailtoLink(to, req.StudentName, email),
		GmailLink:   outreach.GmailLink(to, req.StudentName, email),
		SendAt:      outreach.SuggestSendTime(time.Now()),
		Interaction: interaction,
	}, nil
}

// Outreach returns the interaction log.
func (h *Hub) Outreach() *outreach.Log {
	return h.log
}

// NewReminder creates a follow-up reminder over the outreach log using the
// configured interval.
func (h *Hub) NewReminder(opts ...outreach.ReminderOption) (*outreach.Reminder, error) {
	opts = append([]outreach.ReminderOption{
		outreach.WithReminderLogger(h.logger.With("component", "reminder")),
	}, opts...)
	return outreach.NewReminder(h.log, h.cfg.Outreach.ReminderEvery(), opts...)
}

// NewWatcher creates a watcher that reloads the Hub whenever source files
// change. Reload failures are logged and the previous corpus stays active.
func (h *Hub) NewWatcher(ctx context.Context, onReload func(error)) (*watcher.Watcher, error) {
	return watcher.New(h.cfg.Sources.Dir, func() {
		err := h.Reload(ctx, false)
		if err != nil {
			h.logger.Error("reload failed", "err", err)
		}
		if onReload != nil {
			onReload(err)
		}
	},
		watcher.WithDebounce(time.Duration(h.cfg.Watch.DebounceMs)*time.Millisecond),
		watcher.WithLogger(h.logger.With("component", "watcher")),
	)
}

// Close releases storage and the AI provider.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	// Wait for a running load so storage is not closed under it.
	h.loadMu.Lock()
	defer h.loadMu.Unlock()
	return h.closeResources()
}

func (h *Hub) closeResources() error {
	var firstErr error
	record := func(what string, err error) {
		if err == nil {
			return
		}
		h.logger.Error("error closing "+what, "err", err)
		if firstErr == nil {
			firstErr = err
		}
	}

	if h.pipeline != nil {
		h.pipeline.Release()
	}
	if h.provider != nil {
		record("AI provider", h.provider.Close())
	}
	if h.outreachRepo != nil {
		record("outreach repository", h.outreachRepo.Close())
	}
	if h.indexRepo != nil {
		record("index repository", h.indexRepo.Close())
	}
	if h.outreachBackend != nil {
		record("outreach storage", h.outreachBackend.Close())
	}
	if h.indexBackend != nil {
		record("index storage", h.indexBackend.Close())
	}
	return firstErr
}
