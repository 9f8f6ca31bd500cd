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

import "time"

// LockSentinel is the locked_by value a scheduler lock record carries before
// any worker has ever held it. It reads as unlocked regardless of expiry.
const LockSentinel = "init"

// Lock states surfaced to the Control Tower. StateUnknown is reported when the
// lock record cannot be read; the dashboard must not assume unlocked in that
// case, since that could green-light a second concurrent dispatch run.
const (
	LockStateLocked   = "locked"
	LockStateUnlocked = "unlocked"
	LockStateUnknown  = "unknown"
)

// SchedulerLockRecord is the raw singleton lock row for a tenant scheduler.
// It is mutated only by the worker that acquires or releases it; this core
// reads it and derives status.
type SchedulerLockRecord struct {
	TenantID  string     `json:"tenant_id"`
	LockedBy  string     `json:"locked_by"`
	LockedAt  *time.Time `json:"locked_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// LockStatus is the derived view of a scheduler lock.
type LockStatus struct {
	State                string `json:"state"`
	IsLocked             bool   `json:"is_locked"`
	LockedBy             string `json:"locked_by,omitempty"`
	TimeRemainingSeconds int64  `json:"time_remaining_seconds"`
}

// Status derives the lock view at the given instant. A lock is held when
// locked_by is a non-sentinel value and the lease has not lapsed; an absent
// expiry never lapses. An expired lease self-heals to unlocked without an
// explicit release, which is the only liveness guarantee for crashed holders.
func (r *SchedulerLockRecord) Status(now time.Time) LockStatus {
	if r.LockedBy == "" || r.LockedBy == LockSentinel {
		return LockStatus{State: LockStateUnlocked}
	}
	if r.ExpiresAt != nil && !r.ExpiresAt.After(now) {
		return LockStatus{State: LockStateUnlocked}
	}
	status := LockStatus{
		State:    LockStateLocked,
		IsLocked: true,
		LockedBy: r.LockedBy,
	}
	if r.ExpiresAt != nil {
		remaining := int64(r.ExpiresAt.Sub(now).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		status.TimeRemainingSeconds = remaining
	}
	return status
}

// UnknownLockStatus is reported when the lock record fetch fails.
func UnknownLockStatus() LockStatus {
	return LockStatus{State: LockStateUnknown}
}
