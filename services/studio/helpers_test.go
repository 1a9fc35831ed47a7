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

// Shared tree builders for the studio tests.

// testGroup returns a condition group with one rule, enough to satisfy
// the validator.
func testGroup(ruleID, questionID string) *RuleGroup {
	return &RuleGroup{
		ID:        "group-" + ruleID,
		MatchType: MatchAll,
		Children: []RuleNode{
			Rule{ID: ruleID, QuestionID: questionID, Operator: "equals", Value: "yes"},
		},
	}
}

// testQuestion returns a question with a fixed id and one answer set.
func testQuestion(id, text string) Question {
	return Question{
		ID:   id,
		Text: text,
		Type: QuestionChoice,
		AnswerSets: []AnswerSet{{
			ID:        "set-" + id,
			Name:      "Answer Set 1",
			IsDefault: true,
			Answers:   []Answer{{ID: "ans-" + id, Label: "Yes", Value: "yes", Active: true}},
		}},
		ConditionGroup: &RuleGroup{ID: "cg-" + id, MatchType: MatchAll, Children: []RuleNode{}},
	}
}

// testBranch returns a branch with a valid condition group.
func testBranch(id, name string, questions []Question, children ...ConditionalBranch) ConditionalBranch {
	if questions == nil {
		questions = []Question{}
	}
	if children == nil {
		children = []ConditionalBranch{}
	}
	return ConditionalBranch{
		ID:             id,
		Name:           name,
		ConditionGroup: testGroup("rule-"+id, "q-ref"),
		Questions:      questions,
		ChildBranches:  children,
	}
}

// testQuestionnaire returns one page / one section holding the given
// content.
func testQuestionnaire(questions []Question, branches []ConditionalBranch) Questionnaire {
	if questions == nil {
		questions = []Question{}
	}
	if branches == nil {
		branches = []ConditionalBranch{}
	}
	return Questionnaire{
		Name:    "Test Questionnaire",
		Status:  StatusDraft,
		Version: "1.0.0",
		Pages: []Page{{
			ID:   "page-1",
			Name: "Page 1",
			Sections: []Section{{
				ID:        "sec-1",
				Name:      "Section 1",
				Questions: questions,
				Branches:  branches,
			}},
		}},
	}
}
