/*
Copyright 2025 Cartera Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/wacul/ptr"
)

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestAttachmentRuleMatches(t *testing.T) {
	client := Client{
		NIT:              "900123456",
		Category:         "corporate",
		TotalDaysOverdue: 45,
		TotalAmountDue:   decimal.NewFromInt(5_000_000),
	}

	byThreshold := AttachmentRule{ThresholdID: "thr_2", AttachmentID: "att_1"}
	assert.True(t, byThreshold.Matches(&client, "thr_2"))
	assert.False(t, byThreshold.Matches(&client, "thr_1"))

	byCategory := AttachmentRule{Category: "corporate", AttachmentID: "att_2"}
	assert.True(t, byCategory.Matches(&client, ""))

	byNIT := AttachmentRule{CustomerNIT: "900123456", AttachmentID: "att_3"}
	assert.True(t, byNIT.Matches(&client, ""))
	assert.False(t, byNIT.Matches(&Client{NIT: "800"}, ""))

	byDays := AttachmentRule{DaysFrom: ptr.Int(30), DaysTo: ptr.Int(60), AttachmentID: "att_4"}
	assert.True(t, byDays.Matches(&client, ""))
	assert.False(t, byDays.Matches(&Client{TotalDaysOverdue: 61}, ""))

	byAmount := AttachmentRule{MinAmount: decPtr("1000000"), AttachmentID: "att_5"}
	assert.True(t, byAmount.Matches(&client, ""))
	assert.False(t, byAmount.Matches(&Client{TotalAmountDue: decimal.NewFromInt(10)}, ""))

	global := AttachmentRule{Global: true, AttachmentID: "att_6"}
	assert.True(t, global.Matches(&Client{}, ""))

	empty := AttachmentRule{AttachmentID: "att_7"}
	assert.False(t, empty.Matches(&client, "thr_2"))
}

func TestAttachmentRuleConjunction(t *testing.T) {
	rule := AttachmentRule{
		ThresholdID: "thr_2",
		Category:    "corporate",
		MinAmount:   decPtr("1000000"),
	}
	client := Client{Category: "corporate", TotalAmountDue: decimal.NewFromInt(2_000_000)}

	assert.True(t, rule.Matches(&client, "thr_2"))
	assert.False(t, rule.Matches(&client, "thr_1"))

	client.Category = "retail"
	assert.False(t, rule.Matches(&client, "thr_2"))
}

func TestResolveAttachmentsBulkUnion(t *testing.T) {
	rules := []AttachmentRule{
		{RuleID: "rule_b", ThresholdID: "thr_1", AttachmentID: "att_statement", DisplayOrder: 2, Active: true},
		{RuleID: "rule_a", Global: true, AttachmentID: "att_terms", DisplayOrder: 1, Active: true},
		{RuleID: "rule_c", Category: "corporate", AttachmentID: "att_contract", DisplayOrder: 3, Active: true},
		{RuleID: "rule_off", Global: true, AttachmentID: "att_disabled", DisplayOrder: 0, Active: false},
	}
	assignments := []ClientAssignment{
		{Client: Client{NIT: "900111", Category: "corporate"}, ThresholdID: "thr_1"},
		{Client: Client{NIT: "900222", Category: "retail"}, ThresholdID: "thr_2"},
		{Client: Client{NIT: "900333"}},
	}

	resolved := ResolveAttachmentsBulk(rules, assignments)

	assert.Equal(t, []AttachmentRef{
		{AttachmentID: "att_terms", RuleID: "rule_a", DisplayOrder: 1},
		{AttachmentID: "att_statement", RuleID: "rule_b", DisplayOrder: 2},
		{AttachmentID: "att_contract", RuleID: "rule_c", DisplayOrder: 3},
	}, resolved["900111"])
	assert.Equal(t, []AttachmentRef{
		{AttachmentID: "att_terms", RuleID: "rule_a", DisplayOrder: 1},
	}, resolved["900222"])
	assert.Equal(t, []AttachmentRef{
		{AttachmentID: "att_terms", RuleID: "rule_a", DisplayOrder: 1},
	}, resolved["900333"])
}

func TestResolveAttachmentsBulkDeterministicOrdering(t *testing.T) {
	rules := []AttachmentRule{
		{RuleID: "rule_z", Global: true, AttachmentID: "att_1", DisplayOrder: 1, Active: true},
		{RuleID: "rule_a", Global: true, AttachmentID: "att_2", DisplayOrder: 1, Active: true},
	}
	assignments := []ClientAssignment{{Client: Client{NIT: "900111"}}}

	first := ResolveAttachmentsBulk(rules, assignments)
	second := ResolveAttachmentsBulk(rules, assignments)

	assert.Equal(t, first["900111"], second["900111"])
	// Equal display order falls back to rule id.
	assert.Equal(t, "rule_a", first["900111"][0].RuleID)
}

func TestResolveAttachmentsBulkDedupesArtifacts(t *testing.T) {
	rules := []AttachmentRule{
		{RuleID: "rule_a", Global: true, AttachmentID: "att_1", DisplayOrder: 1, Active: true},
		{RuleID: "rule_b", Global: true, AttachmentID: "att_1", DisplayOrder: 2, Active: true},
	}
	assignments := []ClientAssignment{{Client: Client{NIT: "900111"}}}

	resolved := ResolveAttachmentsBulk(rules, assignments)
	assert.Len(t, resolved["900111"], 1)
	assert.Equal(t, "rule_a", resolved["900111"][0].RuleID)
}

func TestResolveAttachmentsBulkNoMatches(t *testing.T) {
	rules := []AttachmentRule{
		{RuleID: "rule_a", ThresholdID: "thr_9", AttachmentID: "att_1", Active: true},
	}
	assignments := []ClientAssignment{{Client: Client{NIT: "900111"}, ThresholdID: "thr_1"}}

	resolved := ResolveAttachmentsBulk(rules, assignments)
	assert.Empty(t, resolved)
}
