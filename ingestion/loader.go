package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/panjf2000/ants/v2"
)

// Sources maps a source identifier to its raw records.
type Sources map[string][]map[string]any

// IDs returns the source identifiers in sorted order.
func (s Sources) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SourceID derives a source identifier from a file path.
func SourceID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ListSourceFiles returns the .json files directly under dir, sorted by name.
func ListSourceFiles(dir string) ([]string, error) {
	if dir == "" {
		return nil, ErrSourceDirRequired
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}

// DecodeSource parses one source document. A top-level object is treated as
// a single record. Array entries that are not objects are dropped and counted.
func DecodeSource(data []byte) (records []map[string]any, skipped int, err error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}
	switch t := doc.(type) {
	case map[string]any:
		return []map[string]any{t}, 0, nil
	case []any:
		records = make([]map[string]any, 0, len(t))
		for _, item := range t {
			obj, ok := item.(map[string]any)
			if !ok {
				skipped++
				continue
			}
			records = append(records, obj)
		}
		return records, skipped, nil
	default:
		return nil, 0, fmt.Errorf("%w: top level is %T", ErrInvalidSource, doc)
	}
}

// Loader reads source files concurrently.
type Loader struct {
	pool   *ants.Pool
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader) error

// WithPoolSize sets the worker pool size for concurrent file reads.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) LoaderOption {
	return func(l *Loader) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if l.pool != nil {
			l.pool.Release()
		}
		l.pool = pool
		return nil
	}
}

// WithLoaderLogger sets a custom logger.
// Default is slog.Default().
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a Loader with its own worker pool.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	poolSize := max(runtime.NumCPU()/2, 1)
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	l := &Loader{
		pool:   pool,
		logger: slog.Default().With("component", "loader"),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			l.Release()
			return nil, err
		}
	}
	return l, nil
}

type loadResult struct {
	id      string
	records []map[string]any
	ok      bool
}

// LoadDir reads every .json file in dir. Unreadable or malformed files are
// logged and skipped. The result does not depend on read completion order.
func (l *Loader) LoadDir(ctx context.Context, dir string) (Sources, error) {
	files, err := ListSourceFiles(dir)
	if err != nil {
		return nil, err
	}
	return l.LoadFiles(ctx, files)
}

// LoadFiles reads the given source files. When two files share a source id,
// the later path in sorted order wins.
func (l *Loader) LoadFiles(ctx context.Context, files []string) (Sources, error) {
	files = slices.Clone(files)
	slices.Sort(files)
	results := make([]loadResult, len(files))

	var wg sync.WaitGroup
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		submitErr := l.pool.Submit(func() {
			defer wg.Done()
			results[i] = l.loadFile(path)
		})
		if submitErr != nil {
			wg.Done()
			l.logger.Error("failed to submit source read", "path", path, "err", submitErr)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sources := make(Sources, len(files))
	for _, r := range results {
		if r.ok {
			sources[r.id] = r.records
		}
	}
	l.logger.Info("loaded sources", "files", len(files), "sources", len(sources))
	return sources, nil
}

func (l *Loader) loadFile(path string) loadResult {
	id := SourceID(path)
	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Warn("skipping unreadable source", "path", path, "err", err)
		return loadResult{id: id}
	}
	records, skipped, err := DecodeSource(data)
	if err != nil {
		l.logger.Warn("skipping malformed source", "path", path, "err", err)
		return loadResult{id: id}
	}
	if skipped > 0 {
		l.logger.Warn("skipped non-object entries", "path", path, "count", skipped)
	}
	return loadResult{id: id, records: records, ok: true}
}

// Release releases the worker pool.
// The loader should not be used after calling Release.
func (l *Loader) Release() {
	if l.pool != nil {
		l.pool.Release()
	}
}
