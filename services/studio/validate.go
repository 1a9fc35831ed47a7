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

import "fmt"

// ValidationReport is the categorized defect list from the pre-publish
// structural-integrity pass.
//
// Entries are human-readable strings surfaced verbatim to the author, not
// typed error objects. Defects are collected in document order and never
// deduplicated. Publish proceeds only when all four buckets are empty.
type ValidationReport struct {
	Pages     []string `json:"pages"`
	Sections  []string `json:"sections"`
	Branches  []string `json:"branches"`
	Questions []string `json:"questions"`
}

// HasErrors reports whether any bucket holds at least one defect.
func (r ValidationReport) HasErrors() bool {
	return len(r.Pages) > 0 || len(r.Sections) > 0 ||
		len(r.Branches) > 0 || len(r.Questions) > 0
}

// Validate runs the full structural walk over a questionnaire.
//
// Description:
//
//	The pass never short-circuits: every violation in the tree is
//	collected before returning. Checks:
//
//	 1. A page whose sections contain no direct question or branch at all
//	    is reported under Pages.
//	 2. A section with zero direct questions AND zero direct branches is
//	    reported under Sections. A section whose only content is a branch
//	    tree is intentionally NOT flagged here even if the branches are
//	    empty of questions; the branch checks cover that. This asymmetry
//	    with check 1 is long-standing observed behavior and is kept as-is.
//	 3. Every branch at every depth: missing content (no direct questions
//	    and no child branches) and missing conditions (absent condition
//	    group or empty children) are independent defects, so one branch
//	    can contribute zero, one, or two entries.
//	 4. Every answer-level rule group on every reachable question with an
//	    empty children array is reported under Questions with its 1-based
//	    index.
//
// Outputs:
//
//	ValidationReport - All defects in document order. Empty buckets may be
//	nil slices; use HasErrors rather than comparing against empty slices.
func Validate(q Questionnaire) ValidationReport {
	var report ValidationReport

	for _, page := range q.Pages {
		if pageHasNoContent(page) {
			report.Pages = append(report.Pages,
				fmt.Sprintf("Page %q has no questions or branches", labelOr(page.Name, page.ID)))
		}
		for _, sec := range page.Sections {
			if len(sec.Questions) == 0 && len(sec.Branches) == 0 {
				report.Sections = append(report.Sections,
					fmt.Sprintf("Section %q is empty", labelOr(sec.Name, sec.ID)))
			}
			for _, question := range sec.Questions {
				checkAnswerLevelGroups(&report, question)
			}
			for _, branch := range sec.Branches {
				checkBranch(&report, branch)
			}
		}
	}
	return report
}

// pageHasNoContent reports whether none of the page's sections have any
// direct question or branch. Direct counts only; content nested deep in a
// branch tree still counts because the branch itself does.
func pageHasNoContent(p Page) bool {
	for _, sec := range p.Sections {
		if len(sec.Questions) > 0 || len(sec.Branches) > 0 {
			return false
		}
	}
	return true
}

// checkBranch applies the branch completeness checks, then recurses
// pre-order into child branches.
func checkBranch(report *ValidationReport, b ConditionalBranch) {
	name := labelOr(b.Name, b.ID)
	if len(b.Questions) == 0 && len(b.ChildBranches) == 0 {
		report.Branches = append(report.Branches,
			fmt.Sprintf("Branch %q has no questions", name))
	}
	if b.ConditionGroup == nil || len(b.ConditionGroup.Children) == 0 {
		report.Branches = append(report.Branches,
			fmt.Sprintf("Branch %q is missing conditions", name))
	}
	for _, question := range b.Questions {
		checkAnswerLevelGroups(report, question)
	}
	for _, child := range b.ChildBranches {
		checkBranch(report, child)
	}
}

// checkAnswerLevelGroups flags answer-level rule groups with no rules.
func checkAnswerLevelGroups(report *ValidationReport, q Question) {
	for i, grp := range q.AnswerLevelRuleGroups {
		if len(grp.Children) == 0 {
			report.Questions = append(report.Questions,
				fmt.Sprintf("Answer Set %d on question %q is missing rules", i+1, labelOr(q.Text, q.ID)))
		}
	}
}

func labelOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}
