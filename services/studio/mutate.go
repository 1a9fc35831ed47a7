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

// This file implements the tree mutator: pure operations that take a tree
// plus a target id and return a new tree. Contract for every operation:
//
//   - The input tree is never modified.
//   - Siblings and ancestor attributes are preserved unchanged.
//   - A target id absent from the tree is a no-op; the walk still visits
//     every node and returns an equivalent tree.
//   - Update operations never short-circuit the recursion, so multiple
//     lookups in one pass remain possible.

// =============================================================================
// Patches
// =============================================================================

// BranchPatch enumerates the updatable fields of a ConditionalBranch.
//
// Nil fields are left untouched. This replaces the duck-typed partial
// objects the authoring UI used to send; the shape is fixed and validated
// at the call site.
type BranchPatch struct {
	Name           *string
	ConditionGroup *RuleGroup
	Questions      []Question
	ChildBranches  []ConditionalBranch
}

// apply merges the patch into a branch, returning the merged value.
func (p BranchPatch) apply(b ConditionalBranch) ConditionalBranch {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.ConditionGroup != nil {
		b.ConditionGroup = cloneRuleGroupPtr(p.ConditionGroup)
	}
	if p.Questions != nil {
		b.Questions = make([]Question, len(p.Questions))
		for i, q := range p.Questions {
			b.Questions[i] = q.Clone()
		}
	}
	if p.ChildBranches != nil {
		b.ChildBranches = make([]ConditionalBranch, len(p.ChildBranches))
		for i, child := range p.ChildBranches {
			b.ChildBranches[i] = child.Clone()
		}
	}
	return b
}

// QuestionPatch enumerates the updatable fields of a Question.
type QuestionPatch struct {
	Text                  *string
	Type                  *QuestionType
	Required              *bool
	Order                 *int
	AnswerSets            []AnswerSet
	ConditionGroup        *RuleGroup
	AnswerLevelRuleGroups []RuleGroup
	NumberConfig          *NumberConfig
	RatingConfig          *RatingConfig
}

// apply merges the patch into a question, returning the merged value.
func (p QuestionPatch) apply(q Question) Question {
	if p.Text != nil {
		q.Text = *p.Text
	}
	if p.Type != nil {
		q.Type = *p.Type
	}
	if p.Required != nil {
		q.Required = *p.Required
	}
	if p.Order != nil {
		q.Order = *p.Order
	}
	if p.AnswerSets != nil {
		q.AnswerSets = make([]AnswerSet, len(p.AnswerSets))
		for i, set := range p.AnswerSets {
			q.AnswerSets[i] = set.Clone()
		}
	}
	if p.ConditionGroup != nil {
		q.ConditionGroup = cloneRuleGroupPtr(p.ConditionGroup)
	}
	if p.AnswerLevelRuleGroups != nil {
		q.AnswerLevelRuleGroups = make([]RuleGroup, len(p.AnswerLevelRuleGroups))
		for i, grp := range p.AnswerLevelRuleGroups {
			q.AnswerLevelRuleGroups[i] = grp.Clone()
		}
	}
	if p.NumberConfig != nil {
		cfg := *p.NumberConfig
		q.NumberConfig = &cfg
	}
	if p.RatingConfig != nil {
		cfg := *p.RatingConfig
		q.RatingConfig = &cfg
	}
	return q
}

// =============================================================================
// Section-level operations
// =============================================================================

// AddQuestion appends a default question under the branch with the given
// id, or under the section root when branchID is empty.
//
// The new question gets a generated id, one default answer set containing
// a single empty answer, and an empty AND condition group.
func AddQuestion(sec Section, branchID string) Section {
	out := sec.Clone()
	if branchID == "" {
		out.Questions = append(out.Questions, NewQuestion(len(out.Questions)))
		return out
	}
	appendQuestionInBranches(out.Branches, branchID)
	return out
}

func appendQuestionInBranches(branches []ConditionalBranch, branchID string) {
	for i := range branches {
		if branches[i].ID == branchID {
			branches[i].Questions = append(
				branches[i].Questions,
				NewQuestion(len(branches[i].Questions)),
			)
		}
		appendQuestionInBranches(branches[i].ChildBranches, branchID)
	}
}

// AddBranch appends a default branch under the parent branch with the
// given id, or at the section root when parentBranchID is empty.
func AddBranch(sec Section, parentBranchID string) Section {
	out := sec.Clone()
	if parentBranchID == "" {
		out.Branches = append(out.Branches, NewBranch())
		return out
	}
	appendBranchInBranches(out.Branches, parentBranchID)
	return out
}

func appendBranchInBranches(branches []ConditionalBranch, parentID string) {
	for i := range branches {
		if branches[i].ID == parentID {
			branches[i].ChildBranches = append(branches[i].ChildBranches, NewBranch())
		}
		appendBranchInBranches(branches[i].ChildBranches, parentID)
	}
}

// UpdateBranch merges a patch into the branch with the given id wherever
// it appears in the recursive structure.
func UpdateBranch(sec Section, branchID string, patch BranchPatch) Section {
	out := sec.Clone()
	patchBranchIn(out.Branches, branchID, patch)
	return out
}

func patchBranchIn(branches []ConditionalBranch, branchID string, patch BranchPatch) {
	for i := range branches {
		if branches[i].ID == branchID {
			branches[i] = patch.apply(branches[i])
		}
		// Keep walking: descendants (including any freshly patched-in
		// children) stay reachable for further lookups in this pass.
		patchBranchIn(branches[i].ChildBranches, branchID, patch)
	}
}

// UpdateQuestion merges a patch into the question with the given id,
// whether it lives at the section root or inside any branch.
func UpdateQuestion(sec Section, questionID string, patch QuestionPatch) Section {
	out := sec.Clone()
	patchQuestionIn(out.Questions, questionID, patch)
	patchQuestionInBranches(out.Branches, questionID, patch)
	return out
}

func patchQuestionIn(questions []Question, questionID string, patch QuestionPatch) {
	for i := range questions {
		if questions[i].ID == questionID {
			questions[i] = patch.apply(questions[i])
		}
	}
}

func patchQuestionInBranches(branches []ConditionalBranch, questionID string, patch QuestionPatch) {
	for i := range branches {
		patchQuestionIn(branches[i].Questions, questionID, patch)
		patchQuestionInBranches(branches[i].ChildBranches, questionID, patch)
	}
}

// DeleteQuestion removes the question with the given id from the section
// root or from any branch that owns it.
func DeleteQuestion(sec Section, questionID string) Section {
	out := sec.Clone()
	out.Questions = deleteQuestionFrom(out.Questions, questionID)
	deleteQuestionInBranches(out.Branches, questionID)
	return out
}

func deleteQuestionFrom(questions []Question, questionID string) []Question {
	out := make([]Question, 0, len(questions))
	for _, q := range questions {
		if q.ID == questionID {
			continue
		}
		out = append(out, q)
	}
	return out
}

func deleteQuestionInBranches(branches []ConditionalBranch, questionID string) {
	for i := range branches {
		branches[i].Questions = deleteQuestionFrom(branches[i].Questions, questionID)
		deleteQuestionInBranches(branches[i].ChildBranches, questionID)
	}
}

// DeleteBranch removes the branch with the given id and its entire
// subtree, wherever it appears.
func DeleteBranch(sec Section, branchID string) Section {
	out := sec.Clone()
	out.Branches = deleteBranchFrom(out.Branches, branchID)
	return out
}

func deleteBranchFrom(branches []ConditionalBranch, branchID string) []ConditionalBranch {
	out := make([]ConditionalBranch, 0, len(branches))
	for _, b := range branches {
		if b.ID == branchID {
			continue
		}
		b.ChildBranches = deleteBranchFrom(b.ChildBranches, branchID)
		out = append(out, b)
	}
	return out
}

// =============================================================================
// Questionnaire-level operations
// =============================================================================

// AddQuestion targets a section by id, then behaves like the section-level
// operation. Unknown section ids leave the tree equivalent.
func (q Questionnaire) AddQuestion(sectionID, branchID string) Questionnaire {
	return q.mapSection(sectionID, func(sec Section) Section {
		return AddQuestion(sec, branchID)
	})
}

// AddBranch targets a section by id, then behaves like the section-level
// operation.
func (q Questionnaire) AddBranch(sectionID, parentBranchID string) Questionnaire {
	return q.mapSection(sectionID, func(sec Section) Section {
		return AddBranch(sec, parentBranchID)
	})
}

// UpdateBranch applies the patch to the branch id across every section.
func (q Questionnaire) UpdateBranch(branchID string, patch BranchPatch) Questionnaire {
	return q.mapAllSections(func(sec Section) Section {
		return UpdateBranch(sec, branchID, patch)
	})
}

// UpdateQuestion applies the patch to the question id across every section.
func (q Questionnaire) UpdateQuestion(questionID string, patch QuestionPatch) Questionnaire {
	return q.mapAllSections(func(sec Section) Section {
		return UpdateQuestion(sec, questionID, patch)
	})
}

// DeleteQuestion removes the question id across every section.
func (q Questionnaire) DeleteQuestion(questionID string) Questionnaire {
	return q.mapAllSections(func(sec Section) Section {
		return DeleteQuestion(sec, questionID)
	})
}

// DeleteBranch removes the branch id (and its subtree) across every section.
func (q Questionnaire) DeleteBranch(branchID string) Questionnaire {
	return q.mapAllSections(func(sec Section) Section {
		return DeleteBranch(sec, branchID)
	})
}

func (q Questionnaire) mapSection(sectionID string, fn func(Section) Section) Questionnaire {
	out := q.Clone()
	for pi := range out.Pages {
		for si := range out.Pages[pi].Sections {
			if out.Pages[pi].Sections[si].ID == sectionID {
				out.Pages[pi].Sections[si] = fn(out.Pages[pi].Sections[si])
			}
		}
	}
	return out
}

func (q Questionnaire) mapAllSections(fn func(Section) Section) Questionnaire {
	out := q.Clone()
	for pi := range out.Pages {
		for si := range out.Pages[pi].Sections {
			out.Pages[pi].Sections[si] = fn(out.Pages[pi].Sections[si])
		}
	}
	return out
}
