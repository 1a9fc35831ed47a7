// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package records

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianForms/services/studio"
)

func TestClient_Create(t *testing.T) {
	var got studio.PublishedRecord
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/records", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "rec-1"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, nil)
	id, err := client.Create(context.Background(), studio.PublishedRecord{Name: "Survey", StatusCode: studio.StatusCodePublished})
	require.NoError(t, err)
	assert.Equal(t, "rec-1", id)
	assert.Equal(t, "Survey", got.Name)
	assert.Equal(t, studio.StatusCodePublished, got.StatusCode)
}

func TestClient_Create_NoID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, nil)
	_, err := client.Create(context.Background(), studio.PublishedRecord{})
	var re *studio.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "record service returned no id", re.UserMessage)
}

func TestClient_Update(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/records/rec-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, nil)
	require.NoError(t, client.Update(context.Background(), "rec-1", studio.PublishedRecord{}))
}

func TestClient_Retrieve_Fields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/records/rec-1", r.URL.Path)
		require.Equal(t, "name,version", r.URL.Query().Get("fields"))
		json.NewEncoder(w).Encode(studio.PublishedRecord{Name: "Survey", Version: "1.0.0"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, nil)
	record, err := client.Retrieve(context.Background(), "rec-1", []string{"name", "version"})
	require.NoError(t, err)
	assert.Equal(t, "Survey", record.Name)
	assert.Equal(t, "1.0.0", record.Version)
}

func TestClient_FacadeErrorMessagePreserved(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "definition exceeds the column limit"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, nil)
	_, err := client.Create(context.Background(), studio.PublishedRecord{})

	var re *studio.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "create", re.Op)
	assert.Equal(t, "definition exceeds the column limit", re.UserMessage)
}

func TestClient_StatusFallbackMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, nil)
	err := client.Update(context.Background(), "rec-1", studio.PublishedRecord{})

	var re *studio.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, re.UserMessage, "503")
}

func TestClient_ConnectionFailure(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 0, nil)
	_, err := client.Create(context.Background(), studio.PublishedRecord{})

	var re *studio.RemoteError
	require.ErrorAs(t, err, &re)
	require.NotNil(t, re.Err)
	assert.True(t, errors.Is(err, re.Err))
}
