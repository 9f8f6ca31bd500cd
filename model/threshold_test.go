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

	"github.com/stretchr/testify/assert"
	"github.com/wacul/ptr"
)

func testThresholdSet() []NotificationThreshold {
	return []NotificationThreshold{
		{ThresholdID: "thr_1", DaysFrom: 0, DaysTo: ptr.Int(30), TemplateID: "tpl_1", Active: true},
		{ThresholdID: "thr_2", DaysFrom: 31, DaysTo: ptr.Int(60), TemplateID: "tpl_2", Active: true},
		{ThresholdID: "thr_3", DaysFrom: 61, DaysTo: nil, TemplateID: "tpl_3", Active: true},
	}
}

func TestResolveThreshold(t *testing.T) {
	thresholds := testThresholdSet()
	SortThresholds(thresholds)

	cases := map[int]string{15: "thr_1", 45: "thr_2", 90: "thr_3"}
	for days, want := range cases {
		got := ResolveThreshold(thresholds, days)
		assert.NotNil(t, got, "days=%d", days)
		assert.Equal(t, want, got.ThresholdID, "days=%d", days)
	}
}

func TestResolveThresholdBoundaries(t *testing.T) {
	thresholds := testThresholdSet()
	SortThresholds(thresholds)

	assert.Equal(t, "thr_1", ResolveThreshold(thresholds, 0).ThresholdID)
	assert.Equal(t, "thr_1", ResolveThreshold(thresholds, 30).ThresholdID)
	assert.Equal(t, "thr_2", ResolveThreshold(thresholds, 31).ThresholdID)
	assert.Equal(t, "thr_3", ResolveThreshold(thresholds, 61).ThresholdID)
	assert.Equal(t, "thr_3", ResolveThreshold(thresholds, 10000).ThresholdID)
}

func TestResolveThresholdNegativeDays(t *testing.T) {
	thresholds := testThresholdSet()
	SortThresholds(thresholds)

	assert.Nil(t, ResolveThreshold(thresholds, -5))
}

func TestResolveThresholdNoMatch(t *testing.T) {
	thresholds := []NotificationThreshold{
		{ThresholdID: "thr_1", DaysFrom: 10, DaysTo: ptr.Int(20)},
	}
	assert.Nil(t, ResolveThreshold(thresholds, 5))
	assert.Nil(t, ResolveThreshold(thresholds, 21))
	assert.Nil(t, ResolveThreshold(nil, 5))
}

func TestResolveThresholdOverlappingSetFirstMatchWins(t *testing.T) {
	// Overlap prevention is a write-path concern. If a pathological set slips
	// through, the resolver must still pick deterministically: first match by
	// ascending days_from.
	thresholds := []NotificationThreshold{
		{ThresholdID: "thr_wide", DaysFrom: 0, DaysTo: ptr.Int(100), TemplateID: "tpl_wide"},
		{ThresholdID: "thr_narrow", DaysFrom: 31, DaysTo: ptr.Int(60), TemplateID: "tpl_narrow"},
	}
	SortThresholds(thresholds)

	got := ResolveThreshold(thresholds, 45)
	assert.NotNil(t, got)
	assert.Equal(t, "thr_wide", got.ThresholdID)
}

func TestSortThresholdsIsStable(t *testing.T) {
	thresholds := []NotificationThreshold{
		{ThresholdID: "thr_b", DaysFrom: 10},
		{ThresholdID: "thr_a", DaysFrom: 10},
		{ThresholdID: "thr_c", DaysFrom: 0},
	}
	SortThresholds(thresholds)

	assert.Equal(t, "thr_c", thresholds[0].ThresholdID)
	assert.Equal(t, "thr_b", thresholds[1].ThresholdID)
	assert.Equal(t, "thr_a", thresholds[2].ThresholdID)
}

func TestOverlapsRange(t *testing.T) {
	existing := NotificationThreshold{DaysFrom: 31, DaysTo: ptr.Int(60)}

	assert.True(t, existing.OverlapsRange(45, ptr.Int(90)))
	assert.True(t, existing.OverlapsRange(0, nil))
	assert.False(t, existing.OverlapsRange(61, nil))
	assert.False(t, existing.OverlapsRange(0, ptr.Int(30)))

	unbounded := NotificationThreshold{DaysFrom: 61}
	assert.True(t, unbounded.OverlapsRange(100, nil))
	assert.False(t, unbounded.OverlapsRange(0, ptr.Int(60)))
}
