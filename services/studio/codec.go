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
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EnvelopeVersion is the interchange format version written on export.
const EnvelopeVersion = "1.0"

// SchemaVersion is the questionnaire definition schema version stamped on
// published records.
const SchemaVersion = "1.0"

// Dataverse status codes for published records. Any status not recognized
// as published (case-insensitive) maps to the draft code.
const (
	StatusCodeDraft     = 100000000
	StatusCodePublished = 100000001
)

// Envelope is the versioned JSON wrapper used for import/export and for
// persisted-record payloads.
type Envelope struct {
	Version       string        `json:"version"`
	ExportedAt    string        `json:"exportedAt"`
	Questionnaire Questionnaire `json:"questionnaire"`
}

// Export serializes a questionnaire under the versioned envelope.
//
// Inputs:
//
//	q - The tree snapshot to wrap.
//	now - Timestamp recorded as exportedAt (ISO-8601 / RFC 3339).
//
// Outputs:
//
//	[]byte - The envelope JSON.
//	error - Non-nil only if the tree itself cannot be marshalled.
func Export(q Questionnaire, now time.Time) ([]byte, error) {
	env := Envelope{
		Version:       EnvelopeVersion,
		ExportedAt:    now.UTC().Format(time.RFC3339),
		Questionnaire: q,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return data, nil
}

// Import parses an envelope payload back into a questionnaire.
//
// The payload must be valid JSON matching the envelope shape: a version
// string and a questionnaire object. Anything else fails with
// ErrMalformedPayload carrying a user-facing message, and no state is
// touched. Round-tripping Export output yields a structurally equal tree.
func Import(data []byte) (Questionnaire, error) {
	var aux struct {
		Version       string         `json:"version"`
		ExportedAt    string         `json:"exportedAt"`
		Questionnaire *Questionnaire `json:"questionnaire"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return Questionnaire{}, fmt.Errorf("%w: not valid JSON: %v", ErrMalformedPayload, err)
	}
	if aux.Version == "" {
		return Questionnaire{}, fmt.Errorf("%w: missing envelope version", ErrMalformedPayload)
	}
	if aux.Questionnaire == nil {
		return Questionnaire{}, fmt.Errorf("%w: missing questionnaire", ErrMalformedPayload)
	}
	return *aux.Questionnaire, nil
}

// PublishedRecord is the flattened Dataverse-style representation of a
// questionnaire, consumed by the external record collaborator.
type PublishedRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// StatusCode is the two-valued Dataverse option set
	// (StatusCodeDraft or StatusCodePublished).
	StatusCode int `json:"statuscode"`

	Version       string `json:"version"`
	SchemaVersion string `json:"schemaVersion"`

	// DefinitionJSON is the questionnaire re-serialized as a JSON string.
	DefinitionJSON string `json:"definitionJson"`
}

// ToPublishedRecord flattens a questionnaire into its stored-record form.
//
// The transform is lossy only in the status mapping: the string status is
// reduced to the two fixed numeric codes.
func ToPublishedRecord(q Questionnaire) (PublishedRecord, error) {
	definition, err := json.Marshal(q)
	if err != nil {
		return PublishedRecord{}, fmt.Errorf("marshal definition: %w", err)
	}
	return PublishedRecord{
		Name:           q.Name,
		Description:    q.Description,
		StatusCode:     statusCode(q.Status),
		Version:        q.Version,
		SchemaVersion:  SchemaVersion,
		DefinitionJSON: string(definition),
	}, nil
}

func statusCode(s Status) int {
	if strings.EqualFold(string(s), string(StatusPublished)) {
		return StatusCodePublished
	}
	return StatusCodeDraft
}
