// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/AleutianForms/services/studio"
)

// draftKeyPrefix namespaces draft blobs inside the database.
const draftKeyPrefix = "draft:"

// Store is the BadgerDB-backed draft store.
//
// Thread Safety: safe for concurrent use; BadgerDB transactions provide
// the isolation, the store itself keeps no mutable state.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Compile-time check against the collaborator contract.
var _ studio.DraftStore = (*Store)(nil)

// NewStore creates a draft store over an opened database.
func NewStore(db *badger.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Save persists the questionnaire under the given draft id, refreshing
// the stored metadata.
func (s *Store) Save(ctx context.Context, id string, q studio.Questionnaire) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: draft id is required", studio.ErrInvalidInput)
	}

	record := studio.StoredDraft{
		ID:            id,
		Questionnaire: q,
		Metadata: studio.DraftMetadata{
			Name:    q.Name,
			Status:  q.Status,
			SavedAt: time.Now().UTC(),
		},
	}
	blob, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", id, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(draftKey(id), blob)
	})
	if err != nil {
		return fmt.Errorf("write draft %s: %w", id, err)
	}
	s.logger.Debug("draft saved", "draft_id", id, "bytes", len(blob))
	return nil
}

// LoadAll returns every stored draft.
func (s *Store) LoadAll(ctx context.Context) ([]studio.StoredDraft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var drafts []studio.StoredDraft
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(draftKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var record studio.StoredDraft
				if err := json.Unmarshal(val, &record); err != nil {
					return fmt.Errorf("decode draft %s: %w", it.Item().Key(), err)
				}
				drafts = append(drafts, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return drafts, nil
}

// FindByID returns one draft, or studio.ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id string) (studio.StoredDraft, error) {
	if err := ctx.Err(); err != nil {
		return studio.StoredDraft{}, err
	}

	var record studio.StoredDraft
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(draftKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return studio.StoredDraft{}, fmt.Errorf("%w: draft %s", studio.ErrNotFound, id)
	}
	if err != nil {
		return studio.StoredDraft{}, fmt.Errorf("read draft %s: %w", id, err)
	}
	return record, nil
}

// Delete removes a draft. Absent ids are a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(draftKey(id))
	})
	if err != nil {
		return fmt.Errorf("delete draft %s: %w", id, err)
	}
	return nil
}

func draftKey(id string) []byte {
	return []byte(draftKeyPrefix + id)
}
