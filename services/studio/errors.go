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
	"errors"
	"fmt"
)

// Sentinel errors for the studio service.
var (
	// ErrNotFound indicates a draft or record lookup missed.
	ErrNotFound = errors.New("not found")

	// ErrMalformedPayload indicates an import payload that is not valid
	// JSON or does not match the envelope shape. The in-memory tree is
	// left untouched when this is returned.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrInvalidInput indicates a caller-supplied argument that fails
	// basic validation (empty id, nil questionnaire, and so on).
	ErrInvalidInput = errors.New("invalid input")
)

// RemoteError is a failure from the external record collaborator.
//
// UserMessage carries the collaborator's message unmodified; handlers
// surface it to the author as-is. The local draft is always kept when a
// RemoteError comes back.
type RemoteError struct {
	// Op is the collaborator operation that failed ("create", "update",
	// "retrieve").
	Op string

	// UserMessage is the author-facing failure message.
	UserMessage string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote %s failed: %s: %v", e.Op, e.UserMessage, e.Err)
	}
	return fmt.Sprintf("remote %s failed: %s", e.Op, e.UserMessage)
}

// Unwrap returns the underlying cause.
func (e *RemoteError) Unwrap() error { return e.Err }
