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
	"fmt"
	"time"
)

// ToLocalCron converts an absolute instant into a recurrence expression whose
// fields are the wall-clock values observed in the given IANA timezone, in the
// form cron(minute hour day month ? year). The downstream schedule service
// stores the timezone identifier alongside the expression and localizes again
// at trigger time, so emitting UTC fields here would double-apply the offset
// and fire at the wrong local hour. The zone offset is taken at the specific
// instant, which keeps DST transitions correct.
func ToLocalCron(instant time.Time, ianaTimezone string) (string, error) {
	loc, err := time.LoadLocation(ianaTimezone)
	if err != nil {
		return "", fmt.Errorf("invalid timezone %q: %w", ianaTimezone, err)
	}
	local := instant.In(loc)
	// Day-of-week is "?": mutually exclusive with day-of-month in the target
	// scheduler's grammar.
	return fmt.Sprintf("cron(%d %d %d %d ? %d)",
		local.Minute(), local.Hour(), local.Day(), int(local.Month()), local.Year()), nil
}
