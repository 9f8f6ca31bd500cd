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

package database

import (
	"context"
	"time"

	"github.com/carterahq/cartera/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	threshold      // Interface for notification threshold operations
	attachmentRule // Interface for attachment rule operations
	client         // Interface for imported client operations
	auditLog       // Interface for audit log operations
	schedulerLock  // Interface for scheduler lock reads
	execution      // Interface for collection execution operations
}

// threshold defines methods for handling notification thresholds.
type threshold interface {
	CreateThreshold(ctx context.Context, threshold *model.NotificationThreshold) error                                    // Persists a new threshold
	GetActiveThresholds(ctx context.Context, tenantID string) ([]model.NotificationThreshold, error)                      // Fetches the full active set for a tenant in one call
	FindOverlappingThresholds(ctx context.Context, tenantID string, from int, to *int) ([]model.NotificationThreshold, error) // Range-overlap check for the write path
	DisableThreshold(ctx context.Context, tenantID, thresholdID string) error                                             // Soft-deletes a threshold
}

// attachmentRule defines methods for handling attachment rules.
type attachmentRule interface {
	CreateAttachmentRule(ctx context.Context, rule *model.AttachmentRule) error
	GetActiveAttachmentRules(ctx context.Context, tenantID string) ([]model.AttachmentRule, error)
}

// client defines methods for handling imported collection clients.
type client interface {
	InsertClients(ctx context.Context, executionID string, clients []model.Client) error
	GetClientsByExecution(ctx context.Context, executionID string) ([]model.Client, error)
}

// auditLog defines methods for the append-only execution audit log. Entries
// are never updated or deleted; current batch state is derived by the reader.
type auditLog interface {
	AppendAuditLog(ctx context.Context, entry *model.AuditLogEntry) error
	GetAuditLogByExecution(ctx context.Context, executionID string) ([]model.AuditLogEntry, error)
	GetRecentAuditLog(ctx context.Context, tenantID string, window time.Duration) ([]model.AuditLogEntry, error)
}

// schedulerLock defines the read side of the scheduler lock record. The atomic
// acquire lives in the store transaction of whichever worker takes the lease;
// this core only reads and interprets the record.
type schedulerLock interface {
	GetSchedulerLock(ctx context.Context, tenantID string) (*model.SchedulerLockRecord, error)
}

// execution defines methods for collection execution records.
type execution interface {
	CreateExecution(ctx context.Context, exec *model.CollectionExecution) error
	GetExecution(ctx context.Context, executionID string) (*model.CollectionExecution, error)
	GetRecentExecutions(ctx context.Context, tenantID string, limit int) ([]model.CollectionExecution, error)
	GetStaleDispatchingExecutions(ctx context.Context, olderThan time.Duration) ([]model.CollectionExecution, error)
	UpdateExecutionStatus(ctx context.Context, executionID, status string, assignedClients, totalBatches int) error
}
