// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package studio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DraftStore is the storage collaborator contract for questionnaire
// drafts. The persistence mechanism behind it is opaque to the core.
type DraftStore interface {
	// Save persists the questionnaire under the given draft id.
	Save(ctx context.Context, id string, q Questionnaire) error

	// LoadAll returns every stored draft with its metadata.
	LoadAll(ctx context.Context) ([]StoredDraft, error)

	// FindByID returns one draft, or ErrNotFound.
	FindByID(ctx context.Context, id string) (StoredDraft, error)

	// Delete removes a draft. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
}

// ServiceConfig configures the studio service.
type ServiceConfig struct {
	// MaxImportSize is the largest accepted import payload in bytes.
	// Default: 5MB.
	MaxImportSize int64
}

// DefaultServiceConfig returns sensible defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxImportSize: 5 * 1024 * 1024,
	}
}

// Service orchestrates authoring sessions over the pure tree core.
//
// Every mutating call is load → pure mutation → flush, so the store always
// holds the latest tree. A single mutex serializes edits; the core assumes
// single-author sessions and defines no merge semantics.
type Service struct {
	cfg       ServiceConfig
	store     DraftStore
	publisher *Publisher
	logger    *slog.Logger

	mu sync.Mutex

	// remoteIDs maps draft id → remote record id within this session, so
	// a re-publish updates instead of creating a duplicate record.
	remoteIDs map[string]string
}

// NewService creates the studio service.
//
// Inputs:
//
//	cfg - Service configuration.
//	store - Draft storage collaborator. Required.
//	client - Remote record collaborator. May be nil; publish then fails
//	with a RemoteError instead of panicking.
//	logger - Structured logger. Nil falls back to slog.Default().
func NewService(cfg ServiceConfig, store DraftStore, client RecordClient, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxImportSize == 0 {
		cfg.MaxImportSize = DefaultServiceConfig().MaxImportSize
	}
	svc := &Service{
		cfg:       cfg,
		store:     store,
		logger:    logger,
		remoteIDs: make(map[string]string),
	}
	if client != nil {
		svc.publisher = NewPublisher(client, logger)
	}
	return svc
}

// =============================================================================
// Draft lifecycle
// =============================================================================

// CreateDraft starts a new questionnaire and persists it immediately.
func (s *Service) CreateDraft(ctx context.Context, name, description string) (StoredDraft, error) {
	if name == "" {
		return StoredDraft{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := newID()
	q := NewQuestionnaire(name, description)
	if err := s.store.Save(ctx, id, q); err != nil {
		return StoredDraft{}, fmt.Errorf("save draft: %w", err)
	}
	s.logger.Info("draft created", "draft_id", id, "name", name)
	return s.storedDraft(ctx, id)
}

// ListDrafts returns every stored draft.
func (s *Service) ListDrafts(ctx context.Context) ([]StoredDraft, error) {
	return s.store.LoadAll(ctx)
}

// GetDraft returns one draft, or ErrNotFound.
func (s *Service) GetDraft(ctx context.Context, id string) (StoredDraft, error) {
	if id == "" {
		return StoredDraft{}, fmt.Errorf("%w: draft id is required", ErrInvalidInput)
	}
	return s.store.FindByID(ctx, id)
}

// DeleteDraft removes a draft from the store.
func (s *Service) DeleteDraft(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: draft id is required", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.remoteIDs, id)
	return s.store.Delete(ctx, id)
}

// =============================================================================
// Tree mutations (load → pure mutation → flush)
// =============================================================================

// AddQuestion appends a default question under a branch (or the section
// root when branchID is empty) and flushes the new tree.
func (s *Service) AddQuestion(ctx context.Context, draftID, sectionID, branchID string) (Questionnaire, error) {
	return s.mutate(ctx, draftID, "add_question", func(q Questionnaire) Questionnaire {
		return q.AddQuestion(sectionID, branchID)
	})
}

// AddBranch appends a default branch under a parent branch (or the section
// root when parentBranchID is empty) and flushes the new tree.
func (s *Service) AddBranch(ctx context.Context, draftID, sectionID, parentBranchID string) (Questionnaire, error) {
	return s.mutate(ctx, draftID, "add_branch", func(q Questionnaire) Questionnaire {
		return q.AddBranch(sectionID, parentBranchID)
	})
}

// UpdateBranch merges a patch into the branch wherever it appears.
func (s *Service) UpdateBranch(ctx context.Context, draftID, branchID string, patch BranchPatch) (Questionnaire, error) {
	return s.mutate(ctx, draftID, "update_branch", func(q Questionnaire) Questionnaire {
		return q.UpdateBranch(branchID, patch)
	})
}

// UpdateQuestion merges a patch into the question wherever it appears.
func (s *Service) UpdateQuestion(ctx context.Context, draftID, questionID string, patch QuestionPatch) (Questionnaire, error) {
	return s.mutate(ctx, draftID, "update_question", func(q Questionnaire) Questionnaire {
		return q.UpdateQuestion(questionID, patch)
	})
}

// DeleteQuestion removes a question from whichever parent owns it.
func (s *Service) DeleteQuestion(ctx context.Context, draftID, questionID string) (Questionnaire, error) {
	return s.mutate(ctx, draftID, "delete_question", func(q Questionnaire) Questionnaire {
		return q.DeleteQuestion(questionID)
	})
}

// DeleteBranch removes a branch and its whole subtree.
func (s *Service) DeleteBranch(ctx context.Context, draftID, branchID string) (Questionnaire, error) {
	return s.mutate(ctx, draftID, "delete_branch", func(q Questionnaire) Questionnaire {
		return q.DeleteBranch(branchID)
	})
}

func (s *Service) mutate(ctx context.Context, draftID, op string, fn func(Questionnaire) Questionnaire) (Questionnaire, error) {
	if draftID == "" {
		return Questionnaire{}, fmt.Errorf("%w: draft id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.store.FindByID(ctx, draftID)
	if err != nil {
		return Questionnaire{}, err
	}
	next := fn(draft.Questionnaire)
	if err := s.store.Save(ctx, draftID, next); err != nil {
		return Questionnaire{}, fmt.Errorf("flush draft: %w", err)
	}
	mutationsTotal.WithLabelValues(op).Inc()
	return next, nil
}

// =============================================================================
// Read-only consumers
// =============================================================================

// Stats computes the aggregate counts for a draft.
func (s *Service) Stats(ctx context.Context, draftID string) (QuestionnaireStats, error) {
	draft, err := s.GetDraft(ctx, draftID)
	if err != nil {
		return QuestionnaireStats{}, err
	}
	return GetQuestionnaireStats(draft.Questionnaire), nil
}

// ValidateDraft runs the pre-publish validator without publishing.
func (s *Service) ValidateDraft(ctx context.Context, draftID string) (ValidationReport, error) {
	draft, err := s.GetDraft(ctx, draftID)
	if err != nil {
		return ValidationReport{}, err
	}
	report := Validate(draft.Questionnaire)
	observeValidation(report)
	return report, nil
}

// ExportDraft serializes a draft under the versioned envelope.
func (s *Service) ExportDraft(ctx context.Context, draftID string) ([]byte, error) {
	draft, err := s.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return Export(draft.Questionnaire, time.Now())
}

// ImportDraft parses an envelope payload and stores it as a new draft.
//
// Malformed payloads fail with ErrMalformedPayload and leave the store
// untouched.
func (s *Service) ImportDraft(ctx context.Context, payload []byte) (StoredDraft, error) {
	if int64(len(payload)) > s.cfg.MaxImportSize {
		return StoredDraft{}, fmt.Errorf("%w: payload exceeds %d bytes", ErrMalformedPayload, s.cfg.MaxImportSize)
	}
	q, err := Import(payload)
	if err != nil {
		return StoredDraft{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := newID()
	if err := s.store.Save(ctx, id, q); err != nil {
		return StoredDraft{}, fmt.Errorf("save imported draft: %w", err)
	}
	s.logger.Info("draft imported", "draft_id", id, "name", q.Name)
	return s.storedDraft(ctx, id)
}

// =============================================================================
// Publish
// =============================================================================

// PublishDraft runs the validation-gated publish flow for a draft.
//
// On a clean report the published tree (status flipped to Published) is
// flushed back to the store and the remote record id is remembered so a
// later publish updates instead of creating. A blocked publish changes
// nothing and returns the defect report inside the result.
func (s *Service) PublishDraft(ctx context.Context, draftID string) (PublishResult, error) {
	if draftID == "" {
		return PublishResult{}, fmt.Errorf("%w: draft id is required", ErrInvalidInput)
	}
	if s.publisher == nil {
		return PublishResult{}, &RemoteError{Op: "create", UserMessage: "no record service configured"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.store.FindByID(ctx, draftID)
	if err != nil {
		return PublishResult{}, err
	}

	result, err := s.publisher.Publish(ctx, draft.Questionnaire, s.remoteIDs[draftID])
	if err != nil || !result.Published {
		// Remote failure or validation block: the local draft is kept as-is.
		return result, err
	}

	s.remoteIDs[draftID] = result.RemoteID
	published := draft.Questionnaire.Clone()
	published.Status = StatusPublished
	if err := s.store.Save(ctx, draftID, published); err != nil {
		// The record exists remotely; losing the local status flip is
		// recoverable, so report the flush failure without unpublishing.
		return result, fmt.Errorf("flush published draft: %w", err)
	}
	return result, nil
}

func (s *Service) storedDraft(ctx context.Context, id string) (StoredDraft, error) {
	draft, err := s.store.FindByID(ctx, id)
	if err != nil {
		return StoredDraft{}, fmt.Errorf("reload draft %s: %w", id, err)
	}
	return draft, nil
}
