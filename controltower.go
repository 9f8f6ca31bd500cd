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

	"github.com/sirupsen/logrus"

	"github.com/carterahq/cartera/model"
)

// controlTowerWindow bounds the audit history folded for the live view.
const controlTowerWindow = 24 * time.Hour

// ReconstructExecutionStats cold-folds the full audit log of one execution
// into current batch counts. Used after a service restart, when no incremental
// state exists in memory.
func (c *Cartera) ReconstructExecutionStats(ctx context.Context, executionID string) (model.BatchStats, error) {
	ctx, span := tracer.Start(ctx, "Reconstructing Execution Stats")
	defer span.End()

	entries, err := c.datasource.GetAuditLogByExecution(ctx, executionID)
	if err != nil {
		return model.BatchStats{}, err
	}
	return model.ReconstructBatchStats(entries), nil
}

// ControlTowerSnapshot builds the live operational view for a tenant: batch
// counts folded from the recent audit log plus the scheduler lock status.
//
// The two sources degrade independently. An audit fetch failure fails the
// snapshot, there is nothing useful to show without counts. A lock fetch
// failure degrades only the lock panel to "unknown": reporting a lock whose
// state cannot be read as "unlocked" would invite a second dispatcher into a
// possibly held critical section.
func (c *Cartera) ControlTowerSnapshot(ctx context.Context, tenantID string) (*model.ControlTowerSnapshot, error) {
	ctx, span := tracer.Start(ctx, "Building Control Tower Snapshot")
	defer span.End()

	entries, err := c.datasource.GetRecentAuditLog(ctx, tenantID, controlTowerWindow)
	if err != nil {
		return nil, err
	}
	stats := model.ReconstructBatchStats(entries)

	lockStatus := model.UnknownLockStatus()
	lockRecord, err := c.datasource.GetSchedulerLock(ctx, tenantID)
	if err != nil {
		logrus.Warnf("scheduler lock fetch failed for tenant %s, reporting unknown: %v", tenantID, err)
	} else {
		lockStatus = lockRecord.Status(time.Now())
	}

	return &model.ControlTowerSnapshot{
		TenantID:    tenantID,
		Stats:       stats,
		Lock:        lockStatus,
		GeneratedAt: time.Now(),
	}, nil
}
