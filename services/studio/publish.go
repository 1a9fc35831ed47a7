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
	"log/slog"
)

// RecordClient is the remote record collaborator contract.
//
// Implementations wrap whatever CRUD transport the deployment uses
// (Dataverse OData, a REST facade, a test fake). Failures must come back
// as *RemoteError so the author-facing message survives the boundary
// unmodified.
type RecordClient interface {
	// Create persists a new record and returns its remote id.
	Create(ctx context.Context, record PublishedRecord) (string, error)

	// Update overwrites the record with the given remote id.
	Update(ctx context.Context, id string, record PublishedRecord) error

	// Retrieve fetches the named fields of a record.
	Retrieve(ctx context.Context, id string, fields []string) (PublishedRecord, error)
}

// PublishResult is the outcome of one publish attempt.
type PublishResult struct {
	// Published is true only when validation passed and the remote write
	// succeeded.
	Published bool `json:"published"`

	// RemoteID is the record id at the collaborator (set when Published).
	RemoteID string `json:"remoteId,omitempty"`

	// Report holds the validator output. When it has errors the publish
	// was aborted before any side effect.
	Report ValidationReport `json:"report"`
}

// Publisher runs the validation-gated publish flow.
type Publisher struct {
	client RecordClient
	logger *slog.Logger
}

// NewPublisher creates a publisher over the given record collaborator.
func NewPublisher(client RecordClient, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{client: client, logger: logger}
}

// Publish validates the questionnaire and, if clean, writes it to the
// remote record collaborator.
//
// Description:
//
//	The validator runs first; any defect aborts the publish with the full
//	report and zero side effects. On a clean report the questionnaire is
//	marked Published, flattened to a PublishedRecord, and created or
//	updated depending on whether a remote id is already known. Remote
//	failures come back as *RemoteError with the collaborator's message
//	unmodified; the caller keeps its local draft either way.
//
// Inputs:
//
//	ctx - Cancellation for the remote call.
//	q - The tree snapshot to publish.
//	remoteID - Known record id from a previous publish, or "" for none.
//
// Outputs:
//
//	PublishResult - Report plus remote id on success.
//	error - *RemoteError on collaborator failure; nil when the publish was
//	merely blocked by validation (defects are data, not errors).
func (p *Publisher) Publish(ctx context.Context, q Questionnaire, remoteID string) (PublishResult, error) {
	report := Validate(q)
	observeValidation(report)
	if report.HasErrors() {
		p.logger.Info("publish blocked by validation",
			"questionnaire", q.Name,
			"pages", len(report.Pages),
			"sections", len(report.Sections),
			"branches", len(report.Branches),
			"questions", len(report.Questions),
		)
		publishTotal.WithLabelValues("blocked").Inc()
		return PublishResult{Report: report}, nil
	}

	published := q.Clone()
	published.Status = StatusPublished

	record, err := ToPublishedRecord(published)
	if err != nil {
		publishTotal.WithLabelValues("error").Inc()
		return PublishResult{Report: report}, err
	}

	if remoteID == "" {
		id, err := p.client.Create(ctx, record)
		if err != nil {
			publishTotal.WithLabelValues("remote_error").Inc()
			return PublishResult{Report: report}, asRemoteError("create", err)
		}
		remoteID = id
	} else {
		if err := p.client.Update(ctx, remoteID, record); err != nil {
			publishTotal.WithLabelValues("remote_error").Inc()
			return PublishResult{Report: report}, asRemoteError("update", err)
		}
	}

	p.logger.Info("questionnaire published",
		"questionnaire", q.Name, "remote_id", remoteID)
	publishTotal.WithLabelValues("published").Inc()
	return PublishResult{Published: true, RemoteID: remoteID, Report: report}, nil
}

// asRemoteError preserves *RemoteError from the collaborator and wraps
// anything else without rewording the message.
func asRemoteError(op string, err error) error {
	if re, ok := err.(*RemoteError); ok {
		return re
	}
	return &RemoteError{Op: op, UserMessage: err.Error(), Err: err}
}
