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

// QuestionnaireStats is the aggregate view over one tree snapshot.
//
// Both the authoring UI and the validator consume these numbers; the walk
// is read-only and idempotent.
type QuestionnaireStats struct {
	PageCount      int `json:"pageCount"`
	SectionCount   int `json:"sectionCount"`
	QuestionCount  int `json:"questionCount"`
	BranchCount    int `json:"branchCount"`
	AnswerSetCount int `json:"answerSetCount"`
	ActionCount    int `json:"actionCount"`
}

// CountQuestionsInBranch counts the branch's own questions plus, recursively,
// every question in its child branches.
func CountQuestionsInBranch(b ConditionalBranch) int {
	count := len(b.Questions)
	for _, child := range b.ChildBranches {
		count += CountQuestionsInBranch(child)
	}
	return count
}

// CountBranchesInBranch counts the branch itself plus, recursively, every
// branch below it.
func CountBranchesInBranch(b ConditionalBranch) int {
	count := 1
	for _, child := range b.ChildBranches {
		count += CountBranchesInBranch(child)
	}
	return count
}

// GetQuestionnaireStats computes the aggregate counts for a questionnaire.
//
// Question counts include questions at any branch depth; branch counts
// include nested branches. Answer-set counts include the inline answer
// sets carried by answer-level rule groups, and action counts include the
// answers inside those inline sets.
func GetQuestionnaireStats(q Questionnaire) QuestionnaireStats {
	stats := QuestionnaireStats{PageCount: len(q.Pages)}
	for _, page := range q.Pages {
		stats.SectionCount += len(page.Sections)
		for _, sec := range page.Sections {
			stats.QuestionCount += len(sec.Questions)
			for _, branch := range sec.Branches {
				stats.QuestionCount += CountQuestionsInBranch(branch)
				stats.BranchCount += CountBranchesInBranch(branch)
			}
		}
	}
	for _, question := range AllQuestions(q) {
		sets, actions := countAnswerContent(question)
		stats.AnswerSetCount += sets
		stats.ActionCount += actions
	}
	return stats
}

// countAnswerContent tallies one question's answer sets and action-bearing
// answers, including inline answer sets on answer-level rule groups.
func countAnswerContent(q Question) (answerSets, actions int) {
	answerSets = len(q.AnswerSets)
	for _, set := range q.AnswerSets {
		actions += countActions(set.Answers)
	}
	for _, grp := range q.AnswerLevelRuleGroups {
		if grp.InlineAnswerSet != nil {
			answerSets++
			actions += countActions(grp.InlineAnswerSet.Answers)
		}
	}
	return answerSets, actions
}

func countActions(answers []Answer) int {
	count := 0
	for _, a := range answers {
		if len(a.ActionRecord) > 0 {
			count++
		}
	}
	return count
}

// AllQuestions flattens every question in the tree, depth-first pre-order:
// for each page, for each section, its direct questions first, then each
// branch's questions followed by descent into that branch's children, in
// array order.
//
// The returned order is stable and is the universe a Rule's questionId may
// reference.
func AllQuestions(q Questionnaire) []Question {
	var out []Question
	for _, page := range q.Pages {
		for _, sec := range page.Sections {
			out = append(out, sec.Questions...)
			for _, branch := range sec.Branches {
				out = appendBranchQuestions(out, branch)
			}
		}
	}
	return out
}

func appendBranchQuestions(out []Question, b ConditionalBranch) []Question {
	out = append(out, b.Questions...)
	for _, child := range b.ChildBranches {
		out = appendBranchQuestions(out, child)
	}
	return out
}

// QuestionsByID indexes the flattened question list by id.
//
// Rules referencing ids absent from this index are dangling references;
// lookups against the map simply miss, they never fail.
func QuestionsByID(q Questionnaire) map[string]Question {
	all := AllQuestions(q)
	index := make(map[string]Question, len(all))
	for _, question := range all {
		index[question.ID] = question
	}
	return index
}
