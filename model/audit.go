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

// AuditEvent is one state transition of a notification batch. The audit log is
// append-only; a batch's current state is the most recent event recorded for
// its batch id, never a mutable column.
type AuditEvent string

const (
	EventEnqueued   AuditEvent = "ENQUEUED"
	EventPickedUp   AuditEvent = "PICKED_UP"
	EventDeferred   AuditEvent = "DEFERRED"
	EventProcessing AuditEvent = "PROCESSING"
	EventCompleted  AuditEvent = "COMPLETED"
	EventFailed     AuditEvent = "FAILED"
	EventDLQSent    AuditEvent = "DLQ_SENT"
)

// AuditLogEntry is an immutable record appended by a dispatch worker per state
// transition. Entries without a batch id are execution-level events and are
// excluded from per-batch aggregation.
type AuditLogEntry struct {
	ID          int64      `json:"-"`
	ExecutionID string     `json:"execution_id"`
	BatchID     string     `json:"batch_id,omitempty"`
	Event       AuditEvent `json:"event"`
	WorkerID    string     `json:"worker_id,omitempty"`
	Details     string     `json:"details,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// BatchStats holds the per-bucket batch counts shown on the Control Tower.
type BatchStats struct {
	Enqueued   int `json:"enqueued"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Deferred   int `json:"deferred"`
	DLQ        int `json:"dlq"`
}

// bucket returns the counter a batch currently in state e belongs to.
func (s *BatchStats) bucket(e AuditEvent) *int {
	switch e {
	case EventEnqueued:
		return &s.Enqueued
	case EventPickedUp, EventProcessing:
		return &s.Processing
	case EventCompleted:
		return &s.Completed
	case EventFailed:
		return &s.Failed
	case EventDeferred:
		return &s.Deferred
	case EventDLQSent:
		return &s.DLQ
	}
	return nil
}

// impliedPrevious returns the bucket a batch is assumed to leave when event e
// arrives on the incremental path. The table does not track actual per-batch
// state; under out-of-order delivery counts may drift until the next cold
// re-fold, which is the accepted trade for O(1) updates.
func (s *BatchStats) impliedPrevious(e AuditEvent) *int {
	switch e {
	case EventPickedUp, EventProcessing, EventDeferred:
		return &s.Enqueued
	case EventCompleted, EventFailed:
		return &s.Processing
	case EventDLQSent:
		return &s.Failed
	}
	return nil
}

// ApplyEvent folds a single new audit entry into the stats: the bucket implied
// by the batch's previous state is decremented (floored at zero to tolerate
// out-of-order delivery) and the bucket implied by the new event incremented.
// Entries without a batch id are ignored.
func (s *BatchStats) ApplyEvent(entry AuditLogEntry) {
	if entry.BatchID == "" {
		return
	}
	if prev := s.impliedPrevious(entry.Event); prev != nil && *prev > 0 {
		*prev--
	}
	if next := s.bucket(entry.Event); next != nil {
		*next++
	}
}

// ReconstructBatchStats cold-folds a time-ordered (oldest first) audit stream
// into current per-batch counts. It scans backward from the newest entry and
// counts only the first event seen per batch id, so every historical
// transition in the append-only log contributes at most once.
func ReconstructBatchStats(entries []AuditLogEntry) BatchStats {
	var stats BatchStats
	seen := make(map[string]struct{})
	for i := len(entries) - 1; i >= 0; i-- {
		entry := &entries[i]
		if entry.BatchID == "" {
			continue
		}
		if _, ok := seen[entry.BatchID]; ok {
			continue
		}
		seen[entry.BatchID] = struct{}{}
		if b := stats.bucket(entry.Event); b != nil {
			*b++
		}
	}
	return stats
}

// Total returns the number of batches represented across all buckets.
func (s *BatchStats) Total() int {
	return s.Enqueued + s.Processing + s.Completed + s.Failed + s.Deferred + s.DLQ
}
