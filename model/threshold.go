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
)

// NotificationThreshold maps a days-overdue interval to a notification template.
// DaysTo is nil for an unbounded interval ([DaysFrom, +inf)).
type NotificationThreshold struct {
	ID          int64      `json:"-"`
	ThresholdID string     `json:"threshold_id"`
	TenantID    string     `json:"tenant_id"`
	Name        string     `json:"name"`
	DaysFrom    int        `json:"days_from"`
	DaysTo      *int       `json:"days_to,omitempty"`
	TemplateID  string     `json:"template_id"`
	Channel     string     `json:"channel"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	DisabledAt  *time.Time `json:"disabled_at,omitempty"`
}

// Contains reports whether daysOverdue falls inside the threshold interval.
// Both bounds are inclusive.
func (t *NotificationThreshold) Contains(daysOverdue int) bool {
	if daysOverdue < t.DaysFrom {
		return false
	}
	if t.DaysTo != nil && daysOverdue > *t.DaysTo {
		return false
	}
	return true
}

// SortThresholds orders a threshold set by ascending DaysFrom. ResolveThreshold
// requires this ordering; the store does not guarantee it.
func SortThresholds(thresholds []NotificationThreshold) {
	sort.SliceStable(thresholds, func(i, j int) bool {
		return thresholds[i].DaysFrom < thresholds[j].DaysFrom
	})
}

// ResolveThreshold returns the first threshold (by ascending DaysFrom) whose
// interval contains daysOverdue, or nil if no interval matches. First match is
// the tie-break for overlapping sets: overlap prevention lives in the write
// path, but a pathological set must still resolve deterministically here.
// Negative days-overdue never matches an interval starting at zero or above.
func ResolveThreshold(sorted []NotificationThreshold, daysOverdue int) *NotificationThreshold {
	for i := range sorted {
		if sorted[i].DaysFrom > daysOverdue {
			break
		}
		if sorted[i].Contains(daysOverdue) {
			return &sorted[i]
		}
	}
	return nil
}

// OverlapsRange reports whether the threshold interval intersects [from, to].
// A nil to means the candidate range is unbounded. Used by the write path to
// flag data-quality problems before a new threshold is persisted.
func (t *NotificationThreshold) OverlapsRange(from int, to *int) bool {
	if to != nil && t.DaysFrom > *to {
		return false
	}
	if t.DaysTo != nil && from > *t.DaysTo {
		return false
	}
	return true
}
