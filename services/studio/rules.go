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
	"fmt"
)

// MatchType selects how a rule group combines its children.
type MatchType string

const (
	// MatchAll requires every child rule/group to hold (boolean AND).
	MatchAll MatchType = "AND"

	// MatchAny requires at least one child rule/group to hold (boolean OR).
	MatchAny MatchType = "OR"
)

// JSON discriminant values for the rule node union.
const (
	nodeTypeRule  = "rule"
	nodeTypeGroup = "group"
)

// RuleNode is the tagged union over Rule and RuleGroup.
//
// Description:
//
//	A condition tree is an arbitrarily deep nesting of groups whose
//	children are either leaf rules or further groups. The wire format
//	carries a "type" discriminant ("rule" or "group") on every node;
//	traversal code switches on the concrete type.
//
// Thread Safety:
//
//	Rule nodes are plain values. Treat trees as immutable once built;
//	the mutator returns fresh trees instead of editing in place.
type RuleNode interface {
	// NodeID returns the node's stable identifier.
	NodeID() string

	ruleNode()
}

// Rule is a leaf condition referencing a question by id.
//
// The reference is non-owning: the target question may have been deleted,
// and a dangling QuestionID is tolerated by every core operation.
type Rule struct {
	// ID is the stable identifier, generated once at creation.
	ID string `json:"id"`

	// QuestionID references the question whose answer the rule inspects.
	QuestionID string `json:"questionId"`

	// Operator is the comparison operator (e.g. "equals", "contains").
	Operator string `json:"operator"`

	// Value is the comparison operand. Kept loosely typed so imported
	// documents round-trip without coercion.
	Value any `json:"value"`
}

// NodeID returns the rule's identifier.
func (r Rule) NodeID() string { return r.ID }

func (Rule) ruleNode() {}

// MarshalJSON emits the rule with its union discriminant.
func (r Rule) MarshalJSON() ([]byte, error) {
	type alias Rule
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: nodeTypeRule, alias: alias(r)})
}

// RuleGroup is a boolean AND/OR node over rules and nested groups.
//
// Groups nest to unbounded depth. An answer-level group may additionally
// carry an inline answer set scoped to one answer choice.
type RuleGroup struct {
	// ID is the stable identifier, generated once at creation.
	ID string `json:"id"`

	// MatchType is AND or OR.
	MatchType MatchType `json:"matchType"`

	// Children holds the ordered child rules and groups.
	Children []RuleNode `json:"children"`

	// InlineAnswerSet is only set on answer-level rule groups that carry
	// their own answers alongside the condition.
	InlineAnswerSet *AnswerSet `json:"inlineAnswerSet,omitempty"`
}

// NewRuleGroup returns an empty AND group with a fresh id.
func NewRuleGroup() *RuleGroup {
	return &RuleGroup{
		ID:        newID(),
		MatchType: MatchAll,
		Children:  []RuleNode{},
	}
}

// NodeID returns the group's identifier.
func (g RuleGroup) NodeID() string { return g.ID }

func (RuleGroup) ruleNode() {}

// MarshalJSON emits the group with its union discriminant.
func (g RuleGroup) MarshalJSON() ([]byte, error) {
	children := g.Children
	if children == nil {
		children = []RuleNode{}
	}
	return json.Marshal(struct {
		Type            string     `json:"type"`
		ID              string     `json:"id"`
		MatchType       MatchType  `json:"matchType"`
		Children        []RuleNode `json:"children"`
		InlineAnswerSet *AnswerSet `json:"inlineAnswerSet,omitempty"`
	}{
		Type:            nodeTypeGroup,
		ID:              g.ID,
		MatchType:       g.MatchType,
		Children:        children,
		InlineAnswerSet: g.InlineAnswerSet,
	})
}

// UnmarshalJSON decodes the group, resolving each child against the
// "type" discriminant.
func (g *RuleGroup) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID              string            `json:"id"`
		MatchType       MatchType         `json:"matchType"`
		Children        []json.RawMessage `json:"children"`
		InlineAnswerSet *AnswerSet        `json:"inlineAnswerSet"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	g.ID = aux.ID
	g.MatchType = aux.MatchType
	g.InlineAnswerSet = aux.InlineAnswerSet
	g.Children = make([]RuleNode, 0, len(aux.Children))
	for i, raw := range aux.Children {
		node, err := decodeRuleNode(raw)
		if err != nil {
			return fmt.Errorf("rule group %s: child %d: %w", aux.ID, i, err)
		}
		g.Children = append(g.Children, node)
	}
	return nil
}

// decodeRuleNode resolves one union member from its raw JSON.
func decodeRuleNode(raw json.RawMessage) (RuleNode, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}

	switch probe.Type {
	case nodeTypeRule:
		var r Rule
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		return r, nil
	case nodeTypeGroup:
		var grp RuleGroup
		if err := json.Unmarshal(raw, &grp); err != nil {
			return nil, err
		}
		return grp, nil
	default:
		return nil, fmt.Errorf("unknown rule node type %q", probe.Type)
	}
}

// Clone returns a deep copy of the group.
func (g RuleGroup) Clone() RuleGroup {
	out := g
	if g.Children != nil {
		out.Children = make([]RuleNode, len(g.Children))
		for i, child := range g.Children {
			out.Children[i] = cloneRuleNode(child)
		}
	}
	if g.InlineAnswerSet != nil {
		set := g.InlineAnswerSet.Clone()
		out.InlineAnswerSet = &set
	}
	return out
}

// cloneRuleNode deep-copies one union member.
func cloneRuleNode(node RuleNode) RuleNode {
	switch n := node.(type) {
	case RuleGroup:
		return n.Clone()
	default:
		// Rule values carry no owned collections.
		return node
	}
}

// cloneRuleGroupPtr deep-copies an optional condition group.
func cloneRuleGroupPtr(g *RuleGroup) *RuleGroup {
	if g == nil {
		return nil
	}
	out := g.Clone()
	return &out
}
