// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package records implements the remote record collaborator over plain
// HTTP/JSON.
//
// The wire contract mirrors a Dataverse-style CRUD facade:
//
//	POST /records          -> 201 {"id": "..."}
//	PUT  /records/{id}     -> 204
//	GET  /records/{id}     -> 200 PublishedRecord (optional ?fields=a,b)
//
// Failures come back as *studio.RemoteError so the facade's message
// reaches the author unmodified.
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianForms/services/studio"
)

// DefaultTimeout bounds each collaborator call.
const DefaultTimeout = 10 * time.Second

// Client talks to the remote record facade.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Compile-time check against the collaborator contract.
var _ studio.RecordClient = (*Client)(nil)

// NewClient creates a record client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Create persists a new record and returns its remote id.
func (c *Client) Create(ctx context.Context, record studio.PublishedRecord) (string, error) {
	var created struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, c.baseURL+"/records", &record, &created)
	if err != nil {
		return "", remoteErr("create", err)
	}
	if created.ID == "" {
		return "", &studio.RemoteError{Op: "create", UserMessage: "record service returned no id"}
	}
	return created.ID, nil
}

// Update overwrites the record with the given remote id.
func (c *Client) Update(ctx context.Context, id string, record studio.PublishedRecord) error {
	err := c.do(ctx, http.MethodPut, c.baseURL+"/records/"+url.PathEscape(id), &record, nil)
	if err != nil {
		return remoteErr("update", err)
	}
	return nil
}

// Retrieve fetches the named fields of a record. An empty fields slice
// fetches the whole record.
func (c *Client) Retrieve(ctx context.Context, id string, fields []string) (studio.PublishedRecord, error) {
	target := c.baseURL + "/records/" + url.PathEscape(id)
	if len(fields) > 0 {
		target += "?fields=" + url.QueryEscape(strings.Join(fields, ","))
	}
	var record studio.PublishedRecord
	if err := c.do(ctx, http.MethodGet, target, nil, &record); err != nil {
		return studio.PublishedRecord{}, remoteErr("retrieve", err)
	}
	return record, nil
}

// do runs one JSON round trip. Non-2xx responses become errors carrying
// the facade's message verbatim.
func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s", facadeMessage(resp))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// facadeMessage extracts the facade's error message, falling back to the
// HTTP status when the body carries none.
func facadeMessage(resp *http.Response) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return resp.Status
}

func remoteErr(op string, err error) error {
	if re, ok := err.(*studio.RemoteError); ok {
		return re
	}
	return &studio.RemoteError{Op: op, UserMessage: err.Error(), Err: err}
}
