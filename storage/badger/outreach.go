package badger

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/facultyhub/core"
	"github.com/poiesic/facultyhub/storage"
)

// OutreachRepository implements storage.OutreachRepository for BadgerDB.
type OutreachRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.OutreachRepository = (*OutreachRepository)(nil)

// NewOutreachRepository creates a new OutreachRepository.
func NewOutreachRepository(backend *Backend) (*OutreachRepository, error) {
	idSeq, err := backend.GetSequence(interactionIDSeq)
	if err != nil {
		return nil, err
	}

	return &OutreachRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *OutreachRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *OutreachRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddInteractions appends interactions to the log.
func (r *OutreachRepository) AddInteractions(ctx context.Context, interactions ...*core.Interaction) ([]*core.Interaction, error) {
	for _, interaction := range interactions {
		if err := core.ValidateInteraction(interaction); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, interaction := range interactions {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			interaction.Id = core.ID(nextID)
			interaction.SentAt = interaction.SentAt.UTC()
			if !interaction.FollowupAt.IsZero() {
				interaction.FollowupAt = interaction.FollowupAt.UTC()
			}

			if err := tx.Set(makeInteractionKey(interaction.Id), storage.MarshalInteraction(interaction)); err != nil {
				return err
			}
			if err := setFollowupIndex(tx, interaction); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return interactions, nil
}

// UpdateInteractions replaces existing interactions and keeps the
// follow-up index in step.
func (r *OutreachRepository) UpdateInteractions(ctx context.Context, interactions ...*core.Interaction) ([]*core.Interaction, error) {
	for _, interaction := range interactions {
		if err := core.ValidateInteraction(interaction); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, interaction := range interactions {
			key := makeInteractionKey(interaction.Id)

			old, err := readInteraction(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			if err := deleteFollowupIndex(tx, old); err != nil {
				return err
			}
			if err := tx.Set(key, storage.MarshalInteraction(interaction)); err != nil {
				return err
			}
			if err := setFollowupIndex(tx, interaction); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return interactions, nil
}

// GetInteraction retrieves a single interaction by ID.
func (r *OutreachRepository) GetInteraction(ctx context.Context, id core.ID) (*core.Interaction, error) {
	var result *core.Interaction
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readInteraction(tx, makeInteractionKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListInteractions returns the whole log ordered by SentAt, then ID.
func (r *OutreachRepository) ListInteractions(ctx context.Context) ([]*core.Interaction, error) {
	var results []*core.Interaction
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(interactionPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var interaction *core.Interaction
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				interaction, err = storage.UnmarshalInteraction(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, interaction)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.Interaction) int {
		if c := a.SentAt.Compare(b.SentAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Id, b.Id)
	})
	return results, nil
}

// DueFollowups walks the follow-up index up to and including now.
func (r *OutreachRepository) DueFollowups(ctx context.Context, now time.Time) ([]*core.Interaction, error) {
	var results []*core.Interaction
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Upper bound: every key whose timestamp part is <= now
		endKey := makePartialFollowupKey(now)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(interactionFollowPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if bytes.Compare(key[:len(endKey)], endKey) > 0 {
				break
			}

			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			interaction, err := readInteraction(tx, makeInteractionKey(id))
			if err != nil {
				return err
			}
			if interaction != nil && !interaction.Responded {
				results = append(results, interaction)
			}
		}
		return nil
	}, false)
	return results, err
}

// Helper methods

// readInteraction reads an interaction from the transaction.
// Returns nil, nil when the key is absent.
func readInteraction(tx *badger.Txn, key []byte) (*core.Interaction, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var interaction *core.Interaction
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		interaction, unmarshalErr = storage.UnmarshalInteraction(val)
		return unmarshalErr
	})
	return interaction, err
}

// setFollowupIndex indexes interactions still awaiting a follow-up.
func setFollowupIndex(tx *badger.Txn, interaction *core.Interaction) error {
	if interaction.FollowupAt.IsZero() || interaction.Responded {
		return nil
	}
	return tx.Set(makeFollowupKey(interaction.FollowupAt, interaction.Id), storage.MarshalID(interaction.Id))
}

// deleteFollowupIndex removes the follow-up index entry for an interaction.
func deleteFollowupIndex(tx *badger.Txn, interaction *core.Interaction) error {
	if interaction.FollowupAt.IsZero() {
		return nil
	}
	return tx.Delete(makeFollowupKey(interaction.FollowupAt, interaction.Id))
}
