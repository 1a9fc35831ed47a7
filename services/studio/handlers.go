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
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ServiceVersion is the studio service version.
const ServiceVersion = "0.1.0"

// Handlers contains the HTTP handlers for the studio service.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleCreateDraft handles POST /v1/studio/questionnaires.
func (h *Handlers) HandleCreateDraft(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCreateDraft")

	var req CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	draft, err := h.svc.CreateDraft(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

// HandleListDrafts handles GET /v1/studio/questionnaires.
func (h *Handlers) HandleListDrafts(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleListDrafts")

	drafts, err := h.svc.ListDrafts(c.Request.Context())
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	if drafts == nil {
		drafts = []StoredDraft{}
	}
	c.JSON(http.StatusOK, drafts)
}

// HandleGetDraft handles GET /v1/studio/questionnaires/:id.
func (h *Handlers) HandleGetDraft(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetDraft")

	draft, err := h.svc.GetDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// HandleDeleteDraft handles DELETE /v1/studio/questionnaires/:id.
func (h *Handlers) HandleDeleteDraft(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleDeleteDraft")

	if err := h.svc.DeleteDraft(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleAddQuestion handles POST /v1/studio/questionnaires/:id/questions.
func (h *Handlers) HandleAddQuestion(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAddQuestion")

	var req AddQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	draftID := c.Param("id")
	q, err := h.svc.AddQuestion(c.Request.Context(), draftID, req.SectionID, req.BranchID)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, QuestionnaireResponse{DraftID: draftID, Questionnaire: q})
}

// HandleAddBranch handles POST /v1/studio/questionnaires/:id/branches.
func (h *Handlers) HandleAddBranch(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAddBranch")

	var req AddBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	draftID := c.Param("id")
	q, err := h.svc.AddBranch(c.Request.Context(), draftID, req.SectionID, req.ParentBranchID)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, QuestionnaireResponse{DraftID: draftID, Questionnaire: q})
}

// HandleUpdateBranch handles PATCH /v1/studio/questionnaires/:id/branches/:branchID.
func (h *Handlers) HandleUpdateBranch(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleUpdateBranch")

	var req UpdateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	draftID := c.Param("id")
	q, err := h.svc.UpdateBranch(c.Request.Context(), draftID, c.Param("branchID"), req.patch())
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, QuestionnaireResponse{DraftID: draftID, Questionnaire: q})
}

// HandleUpdateQuestion handles POST /v1/studio/questionnaires/:id/questions/:questionID.
func (h *Handlers) HandleUpdateQuestion(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleUpdateQuestion")

	var req UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	draftID := c.Param("id")
	q, err := h.svc.UpdateQuestion(c.Request.Context(), draftID, c.Param("questionID"), req.patch())
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, QuestionnaireResponse{DraftID: draftID, Questionnaire: q})
}

// HandleDeleteQuestion handles DELETE /v1/studio/questionnaires/:id/questions/:questionID.
func (h *Handlers) HandleDeleteQuestion(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleDeleteQuestion")

	draftID := c.Param("id")
	q, err := h.svc.DeleteQuestion(c.Request.Context(), draftID, c.Param("questionID"))
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, QuestionnaireResponse{DraftID: draftID, Questionnaire: q})
}

// HandleDeleteBranch handles DELETE /v1/studio/questionnaires/:id/branches/:branchID.
func (h *Handlers) HandleDeleteBranch(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleDeleteBranch")

	draftID := c.Param("id")
	q, err := h.svc.DeleteBranch(c.Request.Context(), draftID, c.Param("branchID"))
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, QuestionnaireResponse{DraftID: draftID, Questionnaire: q})
}

// HandleStats handles GET /v1/studio/questionnaires/:id/stats.
func (h *Handlers) HandleStats(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleStats")

	stats, err := h.svc.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// HandleValidate handles POST /v1/studio/questionnaires/:id/validate.
func (h *Handlers) HandleValidate(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleValidate")

	report, err := h.svc.ValidateDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, ValidateResponse{Valid: !report.HasErrors(), Report: report})
}

// HandleExport handles GET /v1/studio/questionnaires/:id/export.
func (h *Handlers) HandleExport(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleExport")

	payload, err := h.svc.ExportDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.Data(http.StatusOK, "application/json", payload)
}

// HandleImport handles POST /v1/studio/import.
//
// The body is the export envelope itself, not a wrapper DTO. Malformed
// payloads fail with 400 and the store stays untouched.
func (h *Handlers) HandleImport(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleImport")

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.Warn("Failed to read request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Failed to read request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	draft, err := h.svc.ImportDraft(c.Request.Context(), payload)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

// HandlePublish handles POST /v1/studio/questionnaires/:id/publish.
//
// Response:
//
//	200 OK: PublishResult with Published=true
//	422 Unprocessable Entity: PublishResult carrying the defect report
//	502 Bad Gateway: the remote record collaborator failed
func (h *Handlers) HandlePublish(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandlePublish")

	result, err := h.svc.PublishDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	if !result.Published {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleHealth handles GET /v1/studio/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: ServiceVersion})
}

// writeError maps service errors to HTTP responses.
func (h *Handlers) writeError(c *gin.Context, logger *slog.Logger, err error) {
	var remote *RemoteError
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: err.Error(),
			Code:  "NOT_FOUND",
		})
	case errors.Is(err, ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_INPUT",
		})
	case errors.Is(err, ErrMalformedPayload):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "MALFORMED_PAYLOAD",
		})
	case errors.As(err, &remote):
		// The collaborator's message reaches the author unmodified.
		logger.Error("Remote record operation failed", "op", remote.Op, "error", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   remote.UserMessage,
			Code:    "REMOTE_FAILURE",
			Details: remote.Op,
		})
	default:
		logger.Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal error",
			Code:  "INTERNAL",
		})
	}
}

// getOrCreateRequestID propagates X-Request-ID, minting one if absent.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
