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
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterahq/cartera/config"
	"github.com/carterahq/cartera/database"
	"github.com/carterahq/cartera/internal/apierror"
	redlock "github.com/carterahq/cartera/internal/lock"
	"github.com/carterahq/cartera/internal/notification"
	"github.com/carterahq/cartera/internal/telemetry"
	"github.com/carterahq/cartera/model"
)

// StartDispatchRun runs one campaign dispatch for a tenant: it resolves the
// imported clients against the tenant's notification policy, chunks the
// assigned ones into batches, and enqueues one task per batch.
//
// The run holds the tenant's dispatch lock for its whole duration. Only one
// run per tenant may enqueue at a time; a concurrent attempt fails fast with
// a conflict instead of waiting, because the scheduler will simply fire again.
func (c *Cartera) StartDispatchRun(ctx context.Context, tenantID, campaignName string, clients []model.Client) (*model.CollectionExecution, error) {
	ctx, span := tracer.Start(ctx, "Starting Dispatch Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("tenant.id", tenantID),
		attribute.String("campaign.name", campaignName),
	)

	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	locker := redlock.NewLocker(c.redis, redlock.DispatchLockKey(tenantID), database.GenerateUUIDWithSuffix("loc"))
	lockTTL := time.Duration(cfg.Dispatch.LockTTLSeconds) * time.Second
	if err := locker.Lock(ctx, lockTTL); err != nil {
		span.RecordError(err)
		return nil, apierror.NewAPIError(apierror.ErrConflict, "a dispatch run is already in progress for this tenant", err)
	}
	defer func() {
		if err := locker.Unlock(ctx); err != nil {
			logrus.Warnf("failed to release dispatch lock for tenant %s: %v", tenantID, err)
		}
	}()

	execution := &model.CollectionExecution{
		TenantID:     tenantID,
		CampaignName: campaignName,
		Status:       model.ExecutionStarted,
		TotalClients: len(clients),
	}
	if err := c.datasource.CreateExecution(ctx, execution); err != nil {
		span.RecordError(err)
		return nil, err
	}

	assignments, err := c.ProcessClientBatch(ctx, tenantID, clients)
	if err != nil {
		c.failExecution(ctx, execution, err)
		return nil, err
	}

	if err := c.datasource.InsertClients(ctx, execution.ExecutionID, clients); err != nil {
		c.failExecution(ctx, execution, err)
		return nil, err
	}

	assigned := make([]model.ClientAssignment, 0, len(assignments))
	for i := range assignments {
		if assignments[i].Assigned() {
			assigned = append(assigned, assignments[i])
		}
	}

	batches := chunkAssignments(execution.ExecutionID, tenantID, assigned, cfg.Queue.BatchSize)
	for i := range batches {
		if err := c.queue.EnqueueBatch(ctx, &batches[i]); err != nil {
			c.failExecution(ctx, execution, err)
			return nil, err
		}
		if err := c.datasource.AppendAuditLog(ctx, &model.AuditLogEntry{
			ExecutionID: execution.ExecutionID,
			BatchID:     batches[i].BatchID,
			Event:       model.EventEnqueued,
		}); err != nil {
			c.failExecution(ctx, execution, err)
			return nil, err
		}
		telemetry.BatchesEnqueued.Inc()
	}

	execution.Status = model.ExecutionDispatching
	execution.AssignedClients = len(assigned)
	execution.TotalBatches = len(batches)
	if err := c.datasource.UpdateExecutionStatus(ctx, execution.ExecutionID, model.ExecutionDispatching, len(assigned), len(batches)); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := SendWebhook(NewWebhook{
		Event:   getEventFromStatus(execution.Status),
		Payload: execution,
	}); err != nil {
		logrus.Warnf("failed to enqueue dispatch webhook for execution %s: %v", execution.ExecutionID, err)
	}

	logrus.Infof("dispatch run %s enqueued %d batches (%d/%d clients assigned) for tenant %s",
		execution.ExecutionID, len(batches), len(assigned), len(clients), tenantID)
	return execution, nil
}

// MarkExecutionCompleted transitions an execution to its terminal completed
// status once every batch has drained, and emits the completion webhook.
func (c *Cartera) MarkExecutionCompleted(ctx context.Context, executionID string) error {
	ctx, span := tracer.Start(ctx, "Completing Execution")
	defer span.End()

	execution, err := c.datasource.GetExecution(ctx, executionID)
	if err != nil {
		return err
	}
	if err := c.datasource.UpdateExecutionStatus(ctx, executionID, model.ExecutionCompleted, execution.AssignedClients, execution.TotalBatches); err != nil {
		return err
	}
	execution.Status = model.ExecutionCompleted
	return SendWebhook(NewWebhook{
		Event:   getEventFromStatus(model.ExecutionCompleted),
		Payload: execution,
	})
}

// sweepStaleAfter is how long an execution may sit in dispatching before the
// sweep inspects its batches.
const sweepStaleAfter = 10 * time.Minute

// SweepDispatchingExecutions closes executions whose batches have all reached
// a terminal state but whose status was never advanced, which happens when a
// worker dies between draining the last batch and the completion update. Runs
// from the recurring campaign tick.
func (c *Cartera) SweepDispatchingExecutions(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Sweeping Dispatching Executions")
	defer span.End()

	executions, err := c.datasource.GetStaleDispatchingExecutions(ctx, sweepStaleAfter)
	if err != nil {
		return err
	}

	for i := range executions {
		stats, err := c.ReconstructExecutionStats(ctx, executions[i].ExecutionID)
		if err != nil {
			logrus.Warnf("sweep could not reconstruct stats for execution %s: %v", executions[i].ExecutionID, err)
			continue
		}
		if stats.Total() == 0 || stats.Enqueued+stats.Processing+stats.Deferred > 0 {
			continue
		}
		if err := c.MarkExecutionCompleted(ctx, executions[i].ExecutionID); err != nil {
			logrus.Warnf("sweep could not complete execution %s: %v", executions[i].ExecutionID, err)
		}
	}
	return nil
}

func (c *Cartera) failExecution(ctx context.Context, execution *model.CollectionExecution, cause error) {
	notification.NotifyError(cause)
	if err := c.datasource.UpdateExecutionStatus(ctx, execution.ExecutionID, model.ExecutionFailed, execution.AssignedClients, execution.TotalBatches); err != nil {
		logrus.Errorf("failed to mark execution %s as failed: %v", execution.ExecutionID, err)
	}
}

// chunkAssignments splits assigned clients into dispatch batches of at most
// batchSize clients, each with a fresh batch id.
func chunkAssignments(executionID, tenantID string, assigned []model.ClientAssignment, batchSize int) []model.NotificationBatch {
	if batchSize <= 0 {
		batchSize = 50
	}
	var batches []model.NotificationBatch
	for start := 0; start < len(assigned); start += batchSize {
		end := start + batchSize
		if end > len(assigned) {
			end = len(assigned)
		}
		batches = append(batches, model.NotificationBatch{
			BatchID:     database.GenerateUUIDWithSuffix("batch"),
			ExecutionID: executionID,
			TenantID:    tenantID,
			Clients:     assigned[start:end],
		})
	}
	return batches
}
