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
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// AttachmentRule maps a predicate over a client (and its resolved threshold)
// to one attachment artifact. Every criterion that is set must hold for the
// rule to match; a rule flagged Global matches unconditionally. Multiple rules
// may match one client, so resolution is a union, not first-match.
type AttachmentRule struct {
	ID           int64            `json:"-"`
	RuleID       string           `json:"rule_id"`
	TenantID     string           `json:"tenant_id"`
	Name         string           `json:"name"`
	ThresholdID  string           `json:"threshold_id,omitempty"`
	Category     string           `json:"category,omitempty"`
	CustomerNIT  string           `json:"customer_nit,omitempty"`
	DaysFrom     *int             `json:"days_from,omitempty"`
	DaysTo       *int             `json:"days_to,omitempty"`
	MinAmount    *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount    *decimal.Decimal `json:"max_amount,omitempty"`
	Global       bool             `json:"global"`
	AttachmentID string           `json:"attachment_id"`
	DisplayOrder int              `json:"display_order"`
	Active       bool             `json:"active"`
	CreatedAt    time.Time        `json:"created_at"`
}

// AttachmentRef is one resolved attachment for a client, carrying the rule
// that produced it and the rule's display order for stable presentation.
type AttachmentRef struct {
	AttachmentID string `json:"attachment_id"`
	RuleID       string `json:"rule_id"`
	DisplayOrder int    `json:"display_order"`
}

// Matches evaluates the rule predicate against a client and the threshold the
// client resolved to (empty for unassigned clients).
func (r *AttachmentRule) Matches(client *Client, thresholdID string) bool {
	if r.Global {
		return true
	}
	matched := false
	if r.ThresholdID != "" {
		if r.ThresholdID != thresholdID {
			return false
		}
		matched = true
	}
	if r.Category != "" {
		if r.Category != client.Category {
			return false
		}
		matched = true
	}
	if r.CustomerNIT != "" {
		if r.CustomerNIT != client.NIT {
			return false
		}
		matched = true
	}
	if r.DaysFrom != nil || r.DaysTo != nil {
		if r.DaysFrom != nil && client.TotalDaysOverdue < *r.DaysFrom {
			return false
		}
		if r.DaysTo != nil && client.TotalDaysOverdue > *r.DaysTo {
			return false
		}
		matched = true
	}
	if r.MinAmount != nil || r.MaxAmount != nil {
		if r.MinAmount != nil && client.TotalAmountDue.LessThan(*r.MinAmount) {
			return false
		}
		if r.MaxAmount != nil && client.TotalAmountDue.GreaterThan(*r.MaxAmount) {
			return false
		}
		matched = true
	}
	// A rule with no criteria and no global flag matches nothing.
	return matched
}

// ResolveAttachmentsBulk evaluates every rule against every assignment in a
// single pass and returns a NIT-keyed map of resolved attachments. The result
// ordering is stable (display order, then rule id) so repeated resolution for
// the same client across retries yields identical output. Duplicate artifacts
// produced by different rules are collapsed, keeping the first by order.
func ResolveAttachmentsBulk(rules []AttachmentRule, assignments []ClientAssignment) map[string][]AttachmentRef {
	resolved := make(map[string][]AttachmentRef, len(assignments))
	for i := range assignments {
		a := &assignments[i]
		var refs []AttachmentRef
		for j := range rules {
			r := &rules[j]
			if !r.Active {
				continue
			}
			if r.Matches(&a.Client, a.ThresholdID) {
				refs = append(refs, AttachmentRef{
					AttachmentID: r.AttachmentID,
					RuleID:       r.RuleID,
					DisplayOrder: r.DisplayOrder,
				})
			}
		}
		if len(refs) == 0 {
			continue
		}
		sort.SliceStable(refs, func(x, y int) bool {
			if refs[x].DisplayOrder != refs[y].DisplayOrder {
				return refs[x].DisplayOrder < refs[y].DisplayOrder
			}
			return refs[x].RuleID < refs[y].RuleID
		})
		resolved[a.Client.NIT] = dedupeAttachments(refs)
	}
	return resolved
}

func dedupeAttachments(refs []AttachmentRef) []AttachmentRef {
	seen := make(map[string]struct{}, len(refs))
	out := refs[:0]
	for _, ref := range refs {
		if _, ok := seen[ref.AttachmentID]; ok {
			continue
		}
		seen[ref.AttachmentID] = struct{}{}
		out = append(out, ref)
	}
	return out
}
