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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all studio routes with the router.
//
// Description:
//
//	Registers the /v1/studio/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Draft Endpoints:
//
//	POST   /v1/studio/questionnaires - Create a draft
//	GET    /v1/studio/questionnaires - List drafts
//	GET    /v1/studio/questionnaires/:id - Fetch a draft
//	DELETE /v1/studio/questionnaires/:id - Delete a draft
//
// Tree Mutation Endpoints:
//
//	POST   /v1/studio/questionnaires/:id/questions - Add a question
//	POST   /v1/studio/questionnaires/:id/questions/:questionID - Update a question
//	DELETE /v1/studio/questionnaires/:id/questions/:questionID - Delete a question
//	POST   /v1/studio/questionnaires/:id/branches - Add a branch
//	PATCH  /v1/studio/questionnaires/:id/branches/:branchID - Update a branch
//	DELETE /v1/studio/questionnaires/:id/branches/:branchID - Delete a branch
//
// Read-only Endpoints:
//
//	GET  /v1/studio/questionnaires/:id/stats - Aggregate counts
//	POST /v1/studio/questionnaires/:id/validate - Pre-publish validation
//	GET  /v1/studio/questionnaires/:id/export - Export envelope
//
// Interchange / Publish Endpoints:
//
//	POST /v1/studio/import - Import an envelope
//	POST /v1/studio/questionnaires/:id/publish - Validation-gated publish
//
// Health Endpoints:
//
//	GET /v1/studio/health - Liveness and version
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	studio := rg.Group("/studio")

	studio.POST("/questionnaires", handlers.HandleCreateDraft)
	studio.GET("/questionnaires", handlers.HandleListDrafts)
	studio.GET("/questionnaires/:id", handlers.HandleGetDraft)
	studio.DELETE("/questionnaires/:id", handlers.HandleDeleteDraft)

	studio.POST("/questionnaires/:id/questions", handlers.HandleAddQuestion)
	studio.POST("/questionnaires/:id/questions/:questionID", handlers.HandleUpdateQuestion)
	studio.DELETE("/questionnaires/:id/questions/:questionID", handlers.HandleDeleteQuestion)
	studio.POST("/questionnaires/:id/branches", handlers.HandleAddBranch)
	studio.PATCH("/questionnaires/:id/branches/:branchID", handlers.HandleUpdateBranch)
	studio.DELETE("/questionnaires/:id/branches/:branchID", handlers.HandleDeleteBranch)

	studio.GET("/questionnaires/:id/stats", handlers.HandleStats)
	studio.POST("/questionnaires/:id/validate", handlers.HandleValidate)
	studio.GET("/questionnaires/:id/export", handlers.HandleExport)

	// Lives outside the /questionnaires subtree so the static segment never
	// collides with the :id wildcard.
	studio.POST("/import", handlers.HandleImport)
	studio.POST("/questionnaires/:id/publish", handlers.HandlePublish)

	studio.GET("/health", handlers.HandleHealth)
}
