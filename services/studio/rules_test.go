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
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestRuleMarshal_Discriminant(t *testing.T) {
	rule := Rule{ID: "r1", QuestionID: "q1", Operator: "equals", Value: "yes"}

	data, err := json.Marshal(rule)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["type"] != "rule" {
		t.Errorf("expected type discriminant %q, got %v", "rule", decoded["type"])
	}
	if decoded["questionId"] != "q1" {
		t.Errorf("expected questionId q1, got %v", decoded["questionId"])
	}
}

func TestRuleGroup_RoundTrip_Nested(t *testing.T) {
	group := RuleGroup{
		ID:        "g1",
		MatchType: MatchAny,
		Children: []RuleNode{
			Rule{ID: "r1", QuestionID: "q1", Operator: "equals", Value: "yes"},
			RuleGroup{
				ID:        "g2",
				MatchType: MatchAll,
				Children: []RuleNode{
					Rule{ID: "r2", QuestionID: "q2", Operator: "contains", Value: "blue"},
				},
			},
		},
	}

	data, err := json.Marshal(group)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back RuleGroup
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(group, back) {
		t.Errorf("round trip changed the group:\n  in:  %#v\n  out: %#v", group, back)
	}
}

func TestRuleGroup_Unmarshal_EmptyChildren(t *testing.T) {
	var group RuleGroup
	if err := json.Unmarshal([]byte(`{"id":"g1","matchType":"AND","children":[]}`), &group); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if group.Children == nil || len(group.Children) != 0 {
		t.Errorf("expected empty non-nil children, got %#v", group.Children)
	}
}

func TestRuleGroup_Unmarshal_UnknownNodeType(t *testing.T) {
	payload := `{"id":"g1","matchType":"AND","children":[{"type":"widget","id":"x"}]}`

	var group RuleGroup
	err := json.Unmarshal([]byte(payload), &group)
	if err == nil {
		t.Fatal("expected error for unknown node type")
	}
	if !strings.Contains(err.Error(), "widget") {
		t.Errorf("expected the unknown type in the error, got: %v", err)
	}
}

func TestRuleGroup_Unmarshal_InlineAnswerSet(t *testing.T) {
	payload := `{
		"id": "g1",
		"matchType": "AND",
		"children": [{"type":"rule","id":"r1","questionId":"q1","operator":"equals","value":"a"}],
		"inlineAnswerSet": {"id":"s1","name":"Inline","tag":"","isDefault":false,"answers":[{"id":"a1","label":"Yes","value":"yes","active":true}]}
	}`

	var group RuleGroup
	if err := json.Unmarshal([]byte(payload), &group); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if group.InlineAnswerSet == nil {
		t.Fatal("expected inline answer set")
	}
	if len(group.InlineAnswerSet.Answers) != 1 || group.InlineAnswerSet.Answers[0].Label != "Yes" {
		t.Errorf("unexpected inline answers: %#v", group.InlineAnswerSet.Answers)
	}
}

func TestRuleGroup_Clone_Independent(t *testing.T) {
	set := AnswerSet{ID: "s1", Name: "Inline", Answers: []Answer{{ID: "a1", Label: "Yes"}}}
	group := RuleGroup{
		ID:              "g1",
		MatchType:       MatchAll,
		Children:        []RuleNode{Rule{ID: "r1", QuestionID: "q1"}},
		InlineAnswerSet: &set,
	}

	clone := group.Clone()
	clone.Children[0] = Rule{ID: "changed"}
	clone.InlineAnswerSet.Answers[0].Label = "No"

	if group.Children[0].NodeID() != "r1" {
		t.Error("clone shares children with the original")
	}
	if group.InlineAnswerSet.Answers[0].Label != "Yes" {
		t.Error("clone shares the inline answer set with the original")
	}
}
