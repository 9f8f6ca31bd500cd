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

package cartera

import (
	"context"
	"time"

	"github.com/carterahq/cartera/model"
)

// GetExecution returns a single collection execution by id.
func (c *Cartera) GetExecution(ctx context.Context, executionID string) (*model.CollectionExecution, error) {
	return c.datasource.GetExecution(ctx, executionID)
}

// RecentExecutions returns a tenant's most recent executions, newest first.
func (c *Cartera) RecentExecutions(ctx context.Context, tenantID string, limit int) ([]model.CollectionExecution, error) {
	return c.datasource.GetRecentExecutions(ctx, tenantID, limit)
}

// ExecutionAuditLog returns the full audit trail of one execution in append
// order.
func (c *Cartera) ExecutionAuditLog(ctx context.Context, executionID string) ([]model.AuditLogEntry, error) {
	return c.datasource.GetAuditLogByExecution(ctx, executionID)
}

// AppendAuditEvent records one batch state transition in the append-only log.
func (c *Cartera) AppendAuditEvent(ctx context.Context, entry *model.AuditLogEntry) error {
	return c.datasource.AppendAuditLog(ctx, entry)
}

// SchedulerLockStatus derives the lock panel view for a tenant from the
// persisted lock record.
func (c *Cartera) SchedulerLockStatus(ctx context.Context, tenantID string) (model.LockStatus, error) {
	record, err := c.datasource.GetSchedulerLock(ctx, tenantID)
	if err != nil {
		return model.UnknownLockStatus(), err
	}
	return record.Status(time.Now()), nil
}
