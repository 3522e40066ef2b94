package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/facultyhub/core"
	"github.com/poiesic/facultyhub/storage"
)

// replaceChunkSize bounds the documents written per transaction by Replace,
// keeping each transaction under badger's size limit for wide vectors.
const replaceChunkSize = 128

// IndexRepository implements storage.IndexRepository for BadgerDB.
//
// Documents live under a generation. Readers always see the generation named
// by the generation key, so Replace can write a complete new generation
// before switching to it.
type IndexRepository struct {
	backend *Backend
}

var _ storage.IndexRepository = (*IndexRepository)(nil)

// NewIndexRepository creates a new IndexRepository.
func NewIndexRepository(backend *Backend) (*IndexRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &IndexRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database handle.
func (r *IndexRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *IndexRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// FindSimilar delegates to the backend.
func (r *IndexRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// activeGeneration returns the generation readers see; zero before the
// first Replace.
func activeGeneration(tx *badger.Txn) (uint64, error) {
	item, err := tx.Get([]byte(indexGenerationKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var gen uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("%w: index generation has %d bytes", storage.ErrSerializationFailed, len(val))
		}
		gen = binary.BigEndian.Uint64(val)
		return nil
	})
	return gen, err
}

// PutDocuments stores documents keyed by tag in the active generation.
func (r *IndexRepository) PutDocuments(ctx context.Context, docs ...*core.IndexedDocument) error {
	for _, doc := range docs {
		if err := core.ValidateIndexedDocument(doc); err != nil {
			return err
		}
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := activeGeneration(tx)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if err := tx.Set(makeIndexDocumentKey(gen, doc.Tag), storage.MarshalIndexedDocument(doc)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a single document by tag.
func (r *IndexRepository) GetDocument(ctx context.Context, tag core.Tag) (*core.IndexedDocument, error) {
	var result *core.IndexedDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := activeGeneration(tx)
		if err != nil {
			return err
		}
		item, err := tx.Get(makeIndexDocumentKey(gen, tag))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			result, err = storage.UnmarshalIndexedDocument(val)
			return err
		})
	}, false)
	return result, err
}

// GetDocuments returns all documents in ascending tag order.
func (r *IndexRepository) GetDocuments(ctx context.Context) ([]*core.IndexedDocument, error) {
	var results []*core.IndexedDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := activeGeneration(tx)
		if err != nil {
			return err
		}
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeIndexDocumentPrefix(gen)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var doc *core.IndexedDocument
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalIndexedDocument(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, doc)
		}
		return nil
	}, false)
	return results, err
}

// CountDocuments counts stored documents without decoding them.
func (r *IndexRepository) CountDocuments(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := activeGeneration(tx)
		if err != nil {
			return err
		}
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeIndexDocumentPrefix(gen)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// GetManifest returns the manifest written by the last completed build.
func (r *IndexRepository) GetManifest(ctx context.Context) (*core.IndexManifest, error) {
	var manifest *core.IndexManifest
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(indexManifestKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			manifest, err = storage.UnmarshalManifest(val)
			return err
		})
	}, false)
	return manifest, err
}

// PutManifest persists the manifest.
func (r *IndexRepository) PutManifest(ctx context.Context, manifest *core.IndexManifest) error {
	if manifest == nil {
		return storage.ErrInvalidQuery
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(indexManifestKey), storage.MarshalManifest(manifest)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Replace writes docs as a new generation, then switches the generation key
// and the manifest in one transaction. Until that commit readers keep seeing
// the previous documents and manifest; on any error they still do.
func (r *IndexRepository) Replace(ctx context.Context, manifest *core.IndexManifest, docs ...*core.IndexedDocument) error {
	if manifest == nil {
		return storage.ErrInvalidQuery
	}
	for _, doc := range docs {
		if err := core.ValidateIndexedDocument(doc); err != nil {
			return err
		}
	}

	var current uint64
	if err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		current, err = activeGeneration(tx)
		return err
	}, false); err != nil {
		return err
	}
	next := current + 1
	nextPrefix := makeIndexDocumentPrefix(next)

	// A Replace that failed earlier may have left documents under next.
	if err := r.backend.DropPrefix(nextPrefix); err != nil {
		return err
	}

	discard := func(err error) error {
		if dropErr := r.backend.DropPrefix(nextPrefix); dropErr != nil {
			r.backend.logger.Warn("failed to discard partial index generation", "generation", next, "err", dropErr)
		}
		return err
	}

	for start := 0; start < len(docs); start += replaceChunkSize {
		if err := ctx.Err(); err != nil {
			return discard(err)
		}
		chunk := docs[start:min(start+replaceChunkSize, len(docs))]
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			for _, doc := range chunk {
				if err := tx.Set(makeIndexDocumentKey(next, doc.Tag), storage.MarshalIndexedDocument(doc)); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return discard(fmt.Errorf("write index generation: %w", err))
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := activeGeneration(tx)
		if err != nil {
			return err
		}
		if gen != current {
			return fmt.Errorf("%w: index generation moved from %d to %d", storage.ErrTransactionFailed, current, gen)
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], next)
		if err := tx.Set([]byte(indexGenerationKey), buf[:]); err != nil {
			return err
		}
		if err := tx.Set([]byte(indexManifestKey), storage.MarshalManifest(manifest)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return discard(err)
	}

	if err := r.backend.DropPrefix(makeIndexDocumentPrefix(current)); err != nil {
		r.backend.logger.Warn("failed to drop previous index generation", "generation", current, "err", err)
	}
	return nil
}

// Reset removes the manifest and every document.
// The manifest goes first so a failed reset never leaves it describing a
// partial document set.
func (r *IndexRepository) Reset(ctx context.Context) error {
	if err := r.backend.DropPrefix([]byte(indexManifestKey), []byte(indexGenerationKey)); err != nil {
		return err
	}
	return r.backend.DropPrefix([]byte(indexDocumentPrefix))
}
