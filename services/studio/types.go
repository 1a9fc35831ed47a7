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

// CreateDraftRequest is the request body for POST /v1/studio/questionnaires.
type CreateDraftRequest struct {
	// Name of the new questionnaire. Required.
	Name string `json:"name" binding:"required"`

	// Description is optional author-facing text.
	Description string `json:"description"`
}

// AddQuestionRequest is the request body for
// POST /v1/studio/questionnaires/:id/questions.
type AddQuestionRequest struct {
	// SectionID targets the owning section. Required.
	SectionID string `json:"section_id" binding:"required"`

	// BranchID targets a branch at any depth inside the section.
	// Empty means the section root.
	BranchID string `json:"branch_id"`
}

// AddBranchRequest is the request body for
// POST /v1/studio/questionnaires/:id/branches.
type AddBranchRequest struct {
	// SectionID targets the owning section. Required.
	SectionID string `json:"section_id" binding:"required"`

	// ParentBranchID nests the new branch under an existing one.
	// Empty means the section root.
	ParentBranchID string `json:"parent_branch_id"`
}

// UpdateBranchRequest is the request body for
// PATCH /v1/studio/questionnaires/:id/branches/:branchID.
// Absent fields are left untouched.
type UpdateBranchRequest struct {
	Name           *string             `json:"name"`
	ConditionGroup *RuleGroup          `json:"conditionGroup"`
	Questions      []Question          `json:"questions"`
	ChildBranches  []ConditionalBranch `json:"childBranches"`
}

// patch converts the request into the mutator's patch type.
func (r UpdateBranchRequest) patch() BranchPatch {
	return BranchPatch{
		Name:           r.Name,
		ConditionGroup: r.ConditionGroup,
		Questions:      r.Questions,
		ChildBranches:  r.ChildBranches,
	}
}

// UpdateQuestionRequest is the request body for
// POST /v1/studio/questionnaires/:id/questions/:questionID.
// Absent fields are left untouched.
type UpdateQuestionRequest struct {
	Text                  *string       `json:"text"`
	Type                  *QuestionType `json:"type"`
	Required              *bool         `json:"required"`
	Order                 *int          `json:"order"`
	AnswerSets            []AnswerSet   `json:"answerSets"`
	ConditionGroup        *RuleGroup    `json:"conditionGroup"`
	AnswerLevelRuleGroups []RuleGroup   `json:"answerLevelRuleGroups"`
	NumberConfig          *NumberConfig `json:"numberConfig"`
	RatingConfig          *RatingConfig `json:"ratingConfig"`
}

func (r UpdateQuestionRequest) patch() QuestionPatch {
	return QuestionPatch{
		Text:                  r.Text,
		Type:                  r.Type,
		Required:              r.Required,
		Order:                 r.Order,
		AnswerSets:            r.AnswerSets,
		ConditionGroup:        r.ConditionGroup,
		AnswerLevelRuleGroups: r.AnswerLevelRuleGroups,
		NumberConfig:          r.NumberConfig,
		RatingConfig:          r.RatingConfig,
	}
}

// QuestionnaireResponse wraps a mutated tree for the authoring UI.
type QuestionnaireResponse struct {
	DraftID       string        `json:"draft_id"`
	Questionnaire Questionnaire `json:"questionnaire"`
}

// ValidateResponse is the response for
// POST /v1/studio/questionnaires/:id/validate.
type ValidateResponse struct {
	Valid  bool             `json:"valid"`
	Report ValidationReport `json:"report"`
}

// HealthResponse is the response for GET /v1/studio/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code (optional).
	Code string `json:"code,omitempty"`

	// Details provides additional error context (optional).
	Details string `json:"details,omitempty"`
}
