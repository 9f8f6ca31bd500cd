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

// Execution statuses.
const (
	ExecutionStarted     = "started"
	ExecutionDispatching = "dispatching"
	ExecutionCompleted   = "completed"
	ExecutionFailed      = "failed"
)

// CollectionExecution is one dispatch run of a campaign: the unit the audit
// log and the Control Tower report against.
type CollectionExecution struct {
	ID              int64      `json:"-"`
	ExecutionID     string     `json:"execution_id"`
	TenantID        string     `json:"tenant_id"`
	CampaignName    string     `json:"campaign_name"`
	Status          string     `json:"status"`
	TotalClients    int        `json:"total_clients"`
	AssignedClients int        `json:"assigned_clients"`
	TotalBatches    int        `json:"total_batches"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// ControlTowerSnapshot is the live operational view: reconstructed batch
// counts plus the scheduler lock status, computed on demand so the audit log
// remains the single source of truth.
type ControlTowerSnapshot struct {
	TenantID    string     `json:"tenant_id"`
	Stats       BatchStats `json:"stats"`
	Lock        LockStatus `json:"lock"`
	GeneratedAt time.Time  `json:"generated_at"`
}
