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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(client RecordClient) (*gin.Engine, *Service) {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(client)
	router := gin.New()
	v1 := router.Group("/v1")
	RegisterRoutes(v1, NewHandlers(svc))
	return router, svc
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createTestDraft(t *testing.T, router *gin.Engine) StoredDraft {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/v1/studio/questionnaires",
		CreateDraftRequest{Name: "Survey"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var draft StoredDraft
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &draft))
	return draft
}

func TestHandleCreateDraft(t *testing.T) {
	router, _ := newTestRouter(nil)

	draft := createTestDraft(t, router)
	assert.NotEmpty(t, draft.ID)
	assert.Equal(t, "Survey", draft.Questionnaire.Name)
	assert.Equal(t, StatusDraft, draft.Questionnaire.Status)
}

func TestHandleCreateDraft_MissingName(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := doJSON(t, router, http.MethodPost, "/v1/studio/questionnaires", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_REQUEST", resp.Code)
}

func TestHandleGetDraft_NotFound(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := doJSON(t, router, http.MethodGet, "/v1/studio/questionnaires/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Code)
}

func TestHandleListDrafts_EmptyIsArray(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := doJSON(t, router, http.MethodGet, "/v1/studio/questionnaires", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", string(bytes.TrimSpace(w.Body.Bytes())))
}

func TestHandleAddQuestion(t *testing.T) {
	router, _ := newTestRouter(nil)
	draft := createTestDraft(t, router)
	sectionID := draft.Questionnaire.Pages[0].Sections[0].ID

	w := doJSON(t, router, http.MethodPost,
		"/v1/studio/questionnaires/"+draft.ID+"/questions",
		AddQuestionRequest{SectionID: sectionID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp QuestionnaireResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, draft.ID, resp.DraftID)
	assert.Len(t, resp.Questionnaire.Pages[0].Sections[0].Questions, 1)
}

func TestHandleUpdateQuestion(t *testing.T) {
	router, _ := newTestRouter(nil)
	draft := createTestDraft(t, router)
	sectionID := draft.Questionnaire.Pages[0].Sections[0].ID

	w := doJSON(t, router, http.MethodPost,
		"/v1/studio/questionnaires/"+draft.ID+"/questions",
		AddQuestionRequest{SectionID: sectionID})
	require.Equal(t, http.StatusOK, w.Code)
	var resp QuestionnaireResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	questionID := resp.Questionnaire.Pages[0].Sections[0].Questions[0].ID

	text := "How did you hear about us?"
	w = doJSON(t, router, http.MethodPost,
		"/v1/studio/questionnaires/"+draft.ID+"/questions/"+questionID,
		UpdateQuestionRequest{Text: &text})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, text, resp.Questionnaire.Pages[0].Sections[0].Questions[0].Text)
}

func TestHandleBranchLifecycle(t *testing.T) {
	router, _ := newTestRouter(nil)
	draft := createTestDraft(t, router)
	sectionID := draft.Questionnaire.Pages[0].Sections[0].ID

	// Add a branch under the section root.
	w := doJSON(t, router, http.MethodPost,
		"/v1/studio/questionnaires/"+draft.ID+"/branches",
		AddBranchRequest{SectionID: sectionID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp QuestionnaireResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Questionnaire.Pages[0].Sections[0].Branches, 1)
	branchID := resp.Questionnaire.Pages[0].Sections[0].Branches[0].ID

	// Rename it.
	name := "High-value customers"
	w = doJSON(t, router, http.MethodPatch,
		"/v1/studio/questionnaires/"+draft.ID+"/branches/"+branchID,
		UpdateBranchRequest{Name: &name})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, name, resp.Questionnaire.Pages[0].Sections[0].Branches[0].Name)

	// Delete it.
	req := httptest.NewRequest(http.MethodDelete,
		"/v1/studio/questionnaires/"+draft.ID+"/branches/"+branchID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Questionnaire.Pages[0].Sections[0].Branches)
}

func TestHandleValidate(t *testing.T) {
	router, _ := newTestRouter(nil)
	draft := createTestDraft(t, router)

	// Fresh draft has an empty section.
	w := doJSON(t, router, http.MethodPost,
		"/v1/studio/questionnaires/"+draft.ID+"/validate", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Report.Sections)
}

func TestHandleStats(t *testing.T) {
	router, _ := newTestRouter(nil)
	draft := createTestDraft(t, router)

	w := doJSON(t, router, http.MethodGet,
		"/v1/studio/questionnaires/"+draft.ID+"/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats QuestionnaireStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.PageCount)
	assert.Equal(t, 1, stats.SectionCount)
	assert.Equal(t, 0, stats.QuestionCount)
}

func TestHandleExportImport(t *testing.T) {
	router, _ := newTestRouter(nil)
	draft := createTestDraft(t, router)

	w := doJSON(t, router, http.MethodGet,
		"/v1/studio/questionnaires/"+draft.ID+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.0"`)

	// The export body round-trips straight through import.
	req := httptest.NewRequest(http.MethodPost, "/v1/studio/import", bytes.NewReader(w.Body.Bytes()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var imported StoredDraft
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &imported))
	assert.NotEqual(t, draft.ID, imported.ID)
	assert.Equal(t, draft.Questionnaire.Name, imported.Questionnaire.Name)
}

func TestHandleImport_Malformed(t *testing.T) {
	router, _ := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/studio/import",
		bytes.NewReader([]byte(`{"questionnaire": {}}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "MALFORMED_PAYLOAD", resp.Code)
}

func TestHandlePublish_BlockedReturns422(t *testing.T) {
	router, _ := newTestRouter(&fakeRecordClient{})
	draft := createTestDraft(t, router)

	w := doJSON(t, router, http.MethodPost,
		"/v1/studio/questionnaires/"+draft.ID+"/publish", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var result PublishResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Published)
	assert.True(t, result.Report.HasErrors())
}

func TestHandlePublish_Succeeds(t *testing.T) {
	router, svc := newTestRouter(&fakeRecordClient{createID: "rec-9"})
	draft := createTestDraft(t, router)
	sectionID := draft.Questionnaire.Pages[0].Sections[0].ID
	_, err := svc.AddQuestion(context.Background(), draft.ID, sectionID, "")
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPost,
		"/v1/studio/questionnaires/"+draft.ID+"/publish", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result PublishResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Published)
	assert.Equal(t, "rec-9", result.RemoteID)
}

func TestHandlePublish_RemoteFailureReturns502(t *testing.T) {
	client := &fakeRecordClient{
		createErr: &RemoteError{Op: "create", UserMessage: "record service unavailable"},
	}
	router, svc := newTestRouter(client)
	draft := createTestDraft(t, router)
	sectionID := draft.Questionnaire.Pages[0].Sections[0].ID
	_, err := svc.AddQuestion(context.Background(), draft.ID, sectionID, "")
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPost,
		"/v1/studio/questionnaires/"+draft.ID+"/publish", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "REMOTE_FAILURE", resp.Code)
	assert.Equal(t, "record service unavailable", resp.Error)
}

func TestHandleHealth(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := doJSON(t, router, http.MethodGet, "/v1/studio/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, ServiceVersion, resp.Version)
}

func TestRequestIDPropagation(t *testing.T) {
	router, _ := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/studio/questionnaires", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	// Absent header gets a minted id.
	req = httptest.NewRequest(http.MethodGet, "/v1/studio/questionnaires", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
