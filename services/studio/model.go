// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package studio implements the questionnaire authoring core for
// AleutianForms.
//
// The core is a recursive, immutable tree model (questionnaire → pages →
// sections → questions and conditional branches, with branches nesting to
// unbounded depth) plus the read-only engines that consume a tree snapshot:
//
//   - Tree mutator: pure add/update/delete operations that return new trees
//   - Aggregator: recursive counts and order-stable flattening
//   - Validator: the pre-publish structural-integrity gate
//   - Export codec: the versioned JSON envelope and the flattened
//     Dataverse-style published record
//
// Every operation is synchronous and total: expected failures come back as
// typed errors or defect reports, never as panics.
//
// Thread Safety:
//
//	Entity values are never mutated after construction. The mutator copies
//	the affected tree and leaves the input untouched, so snapshots can be
//	shared freely across goroutines. Serializing concurrent edits to the
//	same draft is the caller's job (Service does this with a mutex).
package studio

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is the questionnaire lifecycle state.
type Status string

const (
	// StatusDraft marks an editable, unpublished questionnaire.
	StatusDraft Status = "Draft"

	// StatusPublished marks a questionnaire persisted as an active record.
	StatusPublished Status = "Published"

	// StatusArchived marks a retired questionnaire.
	StatusArchived Status = "Archived"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionText        QuestionType = "Text"
	QuestionChoice      QuestionType = "Choice"
	QuestionMultiSelect QuestionType = "MultiSelect"
	QuestionNumber      QuestionType = "Number"
	QuestionDate        QuestionType = "Date"
	QuestionRating      QuestionType = "Rating"
	QuestionBoolean     QuestionType = "Boolean"
	QuestionTextArea    QuestionType = "TextArea"
)

// newID generates a stable entity identifier.
func newID() string { return uuid.NewString() }

// Answer is one selectable choice inside an answer set.
type Answer struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Value  string `json:"value"`
	Active bool   `json:"active"`

	// ActionRecord is an opaque reference to an external action. The core
	// only tests for presence; the payload is passed through untouched.
	ActionRecord json.RawMessage `json:"actionRecord,omitempty"`
}

// AnswerSet is a named, taggable collection of answers on a question.
type AnswerSet struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Tag       string   `json:"tag"`
	IsDefault bool     `json:"isDefault"`
	Answers   []Answer `json:"answers"`
}

// Clone returns a deep copy of the answer set.
func (s AnswerSet) Clone() AnswerSet {
	out := s
	if s.Answers != nil {
		out.Answers = make([]Answer, len(s.Answers))
		copy(out.Answers, s.Answers)
	}
	return out
}

// NumberConfig bounds a Number question.
type NumberConfig struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// RatingConfig shapes a Rating question.
type RatingConfig struct {
	Max  int    `json:"max"`
	Icon string `json:"icon,omitempty"`
}

// Question is a single prompt with its answer sets and visibility rules.
type Question struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Required bool         `json:"required"`
	Order    int          `json:"order"`

	// AnswerSets are the selectable answer collections for the question.
	AnswerSets []AnswerSet `json:"answerSets"`

	// ConditionGroup is the question-level visibility condition.
	ConditionGroup *RuleGroup `json:"conditionGroup,omitempty"`

	// AnswerLevelRuleGroups scope rules to individual answer choices; each
	// entry may carry its own inline answer set.
	AnswerLevelRuleGroups []RuleGroup `json:"answerLevelRuleGroups,omitempty"`

	NumberConfig *NumberConfig   `json:"numberConfig,omitempty"`
	RatingConfig *RatingConfig   `json:"ratingConfig,omitempty"`
	ActionRecord json.RawMessage `json:"actionRecord,omitempty"`
}

// NewQuestion returns a question with authoring defaults: a single answer
// set holding one empty answer, an empty AND condition group, and no
// answer-level rule groups.
func NewQuestion(order int) Question {
	return Question{
		ID:    newID(),
		Type:  QuestionText,
		Order: order,
		AnswerSets: []AnswerSet{{
			ID:        newID(),
			Name:      "Answer Set 1",
			IsDefault: true,
			Answers:   []Answer{{ID: newID(), Active: true}},
		}},
		ConditionGroup: NewRuleGroup(),
	}
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	out := q
	if q.AnswerSets != nil {
		out.AnswerSets = make([]AnswerSet, len(q.AnswerSets))
		for i, set := range q.AnswerSets {
			out.AnswerSets[i] = set.Clone()
		}
	}
	out.ConditionGroup = cloneRuleGroupPtr(q.ConditionGroup)
	if q.AnswerLevelRuleGroups != nil {
		out.AnswerLevelRuleGroups = make([]RuleGroup, len(q.AnswerLevelRuleGroups))
		for i, grp := range q.AnswerLevelRuleGroups {
			out.AnswerLevelRuleGroups[i] = grp.Clone()
		}
	}
	if q.NumberConfig != nil {
		cfg := *q.NumberConfig
		out.NumberConfig = &cfg
	}
	if q.RatingConfig != nil {
		cfg := *q.RatingConfig
		out.RatingConfig = &cfg
	}
	return out
}

// ConditionalBranch is a conditionally activated subtree of questions and
// further branches.
//
// Branches own their questions and child branches exclusively; children
// never hold a back-reference to the parent. Ancestor paths, where needed,
// are recomputed top-down.
type ConditionalBranch struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// ConditionGroup is the branch-activation condition. Documents written
	// by older builds carried it under the legacy name "ruleGroup"; decoding
	// normalizes that alias into this field and it is never persisted again.
	ConditionGroup *RuleGroup `json:"conditionGroup,omitempty"`

	Questions     []Question          `json:"questions"`
	ChildBranches []ConditionalBranch `json:"childBranches"`
}

// NewBranch returns a branch with authoring defaults.
func NewBranch() ConditionalBranch {
	return ConditionalBranch{
		ID:             newID(),
		Name:           "Conditional Branch",
		ConditionGroup: NewRuleGroup(),
		Questions:      []Question{},
		ChildBranches:  []ConditionalBranch{},
	}
}

// UnmarshalJSON decodes a branch, preferring conditionGroup over the
// legacy ruleGroup alias when both appear.
func (b *ConditionalBranch) UnmarshalJSON(data []byte) error {
	type alias ConditionalBranch
	aux := struct {
		*alias
		LegacyRuleGroup *RuleGroup `json:"ruleGroup"`
	}{alias: (*alias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if b.ConditionGroup == nil && aux.LegacyRuleGroup != nil {
		b.ConditionGroup = aux.LegacyRuleGroup
	}
	return nil
}

// Clone returns a deep copy of the branch and its whole subtree.
func (b ConditionalBranch) Clone() ConditionalBranch {
	out := b
	out.ConditionGroup = cloneRuleGroupPtr(b.ConditionGroup)
	if b.Questions != nil {
		out.Questions = make([]Question, len(b.Questions))
		for i, q := range b.Questions {
			out.Questions[i] = q.Clone()
		}
	}
	if b.ChildBranches != nil {
		out.ChildBranches = make([]ConditionalBranch, len(b.ChildBranches))
		for i, child := range b.ChildBranches {
			out.ChildBranches[i] = child.Clone()
		}
	}
	return out
}

// Section groups questions and top-level branches on a page.
type Section struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Questions   []Question          `json:"questions"`
	Branches    []ConditionalBranch `json:"branches"`
}

// NewSection returns an empty section.
func NewSection(name string) Section {
	return Section{
		ID:        newID(),
		Name:      name,
		Questions: []Question{},
		Branches:  []ConditionalBranch{},
	}
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := s
	if s.Questions != nil {
		out.Questions = make([]Question, len(s.Questions))
		for i, q := range s.Questions {
			out.Questions[i] = q.Clone()
		}
	}
	if s.Branches != nil {
		out.Branches = make([]ConditionalBranch, len(s.Branches))
		for i, b := range s.Branches {
			out.Branches[i] = b.Clone()
		}
	}
	return out
}

// Page is an ordered group of sections.
type Page struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Sections    []Section `json:"sections"`
}

// NewPage returns a page seeded with one empty section.
func NewPage(name string) Page {
	return Page{
		ID:       newID(),
		Name:     name,
		Sections: []Section{NewSection("Section 1")},
	}
}

// Clone returns a deep copy of the page.
func (p Page) Clone() Page {
	out := p
	if p.Sections != nil {
		out.Sections = make([]Section, len(p.Sections))
		for i, s := range p.Sections {
			out.Sections[i] = s.Clone()
		}
	}
	return out
}

// Questionnaire is the root of the authoring tree.
type Questionnaire struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Status         Status `json:"status"`
	Version        string `json:"version"`
	ServiceCatalog string `json:"serviceCatalog,omitempty"`
	Pages          []Page `json:"pages"`
}

// NewQuestionnaire returns a draft questionnaire seeded with one page.
func NewQuestionnaire(name, description string) Questionnaire {
	return Questionnaire{
		Name:        name,
		Description: description,
		Status:      StatusDraft,
		Version:     "1.0.0",
		Pages:       []Page{NewPage("Page 1")},
	}
}

// Clone returns a deep copy of the questionnaire.
func (q Questionnaire) Clone() Questionnaire {
	out := q
	if q.Pages != nil {
		out.Pages = make([]Page, len(q.Pages))
		for i, p := range q.Pages {
			out.Pages[i] = p.Clone()
		}
	}
	return out
}

// StoredDraft is one record from the draft store collaborator.
type StoredDraft struct {
	ID            string        `json:"id"`
	Questionnaire Questionnaire `json:"questionnaire"`
	Metadata      DraftMetadata `json:"metadata"`
}

// DraftMetadata is bookkeeping the store keeps alongside each draft.
type DraftMetadata struct {
	Name     string    `json:"name"`
	Status   Status    `json:"status"`
	SavedAt  time.Time `json:"savedAt"`
	RemoteID string    `json:"remoteId,omitempty"`
}
