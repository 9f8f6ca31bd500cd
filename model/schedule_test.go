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
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToLocalCronEmitsLocalFields(t *testing.T) {
	// Bogota is UTC-5 year round: 15:07Z must come out as local hour 10,
	// never the UTC hour.
	instant := time.Date(2026, 2, 26, 15, 7, 0, 0, time.UTC)

	expr, err := ToLocalCron(instant, "America/Bogota")
	assert.NoError(t, err)
	assert.Equal(t, "cron(7 10 26 2 ? 2026)", expr)
}

func TestToLocalCronSameZoneDifferentHours(t *testing.T) {
	day := time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC)

	expr, err := ToLocalCron(day.Add(13*time.Hour), "America/Bogota")
	assert.NoError(t, err)
	assert.Equal(t, "cron(0 8 26 2 ? 2026)", expr)

	expr, err = ToLocalCron(day.Add(23*time.Hour), "America/Bogota")
	assert.NoError(t, err)
	assert.Equal(t, "cron(0 18 26 2 ? 2026)", expr)
}

func TestToLocalCronCrossesDateBoundary(t *testing.T) {
	// 03:00Z on March 1st is still Feb 28th in Bogota.
	instant := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)

	expr, err := ToLocalCron(instant, "America/Bogota")
	assert.NoError(t, err)
	assert.Equal(t, "cron(0 22 28 2 ? 2026)", expr)
}

func TestToLocalCronUsesOffsetAtInstant(t *testing.T) {
	// New York switches to DST on 2026-03-08. The same UTC hour projects to
	// different local hours on either side of the transition.
	before := time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC)
	after := time.Date(2026, 3, 9, 15, 0, 0, 0, time.UTC)

	exprBefore, err := ToLocalCron(before, "America/New_York")
	assert.NoError(t, err)
	assert.Equal(t, "cron(0 10 7 3 ? 2026)", exprBefore)

	exprAfter, err := ToLocalCron(after, "America/New_York")
	assert.NoError(t, err)
	assert.Equal(t, "cron(0 11 9 3 ? 2026)", exprAfter)
}

func TestToLocalCronInvalidTimezone(t *testing.T) {
	_, err := ToLocalCron(time.Now(), "Not/AZone")
	assert.Error(t, err)
}
