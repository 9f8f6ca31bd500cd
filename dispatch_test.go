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
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carterahq/cartera/internal/apierror"
	redlock "github.com/carterahq/cartera/internal/lock"
	"github.com/carterahq/cartera/model"
)

func TestStartDispatchRun(t *testing.T) {
	c, mockDS, mr := newTestCartera(t)
	tenantID := gofakeit.UUID()

	mockDS.On("CreateExecution", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		exec := args.Get(1).(*model.CollectionExecution)
		exec.ExecutionID = "exec_test"
	}).Return(nil).Once()
	mockDS.On("GetActiveThresholds", mock.Anything, tenantID).Return(testThresholds(tenantID), nil).Once()
	mockDS.On("GetActiveAttachmentRules", mock.Anything, tenantID).Return([]model.AttachmentRule{}, nil).Once()
	mockDS.On("InsertClients", mock.Anything, "exec_test", mock.Anything).Return(nil).Once()
	mockDS.On("AppendAuditLog", mock.Anything, mock.MatchedBy(func(entry *model.AuditLogEntry) bool {
		return entry.Event == model.EventEnqueued && entry.ExecutionID == "exec_test" && entry.BatchID != ""
	})).Return(nil)
	mockDS.On("UpdateExecutionStatus", mock.Anything, "exec_test", model.ExecutionDispatching, mock.Anything, mock.Anything).Return(nil).Once()

	// 120 clients, all with a matching days-overdue value, chunk into 3 batches of 50/50/20.
	clients := make([]model.Client, 120)
	for i := range clients {
		clients[i] = model.Client{NIT: gofakeit.UUID(), TotalDaysOverdue: 10 + i%50}
	}

	execution, err := c.StartDispatchRun(context.Background(), tenantID, "february-cycle", clients)
	require.NoError(t, err)
	assert.Equal(t, model.ExecutionDispatching, execution.Status)
	assert.Equal(t, 120, execution.AssignedClients)
	assert.Equal(t, 3, execution.TotalBatches)

	mockDS.AssertNumberOfCalls(t, "AppendAuditLog", 3)

	// The dispatch lock must be released once the run finishes.
	held := mr.Exists(redlock.DispatchLockKey(tenantID))
	assert.False(t, held)
}

func TestStartDispatchRunLockContention(t *testing.T) {
	c, mockDS, mr := newTestCartera(t)
	tenantID := gofakeit.UUID()

	// Another run already holds the tenant's dispatch lock.
	require.NoError(t, mr.Set(redlock.DispatchLockKey(tenantID), "other-holder"))

	_, err := c.StartDispatchRun(context.Background(), tenantID, "february-cycle", testClients(10))
	require.Error(t, err)

	var apiErr apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.ErrConflict, apiErr.Code)

	mockDS.AssertNotCalled(t, "CreateExecution", mock.Anything, mock.Anything)
}

func TestStartDispatchRunBatchFailureMarksExecutionFailed(t *testing.T) {
	c, mockDS, _ := newTestCartera(t)
	tenantID := gofakeit.UUID()

	mockDS.On("CreateExecution", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		exec := args.Get(1).(*model.CollectionExecution)
		exec.ExecutionID = "exec_fail"
	}).Return(nil).Once()
	mockDS.On("GetActiveThresholds", mock.Anything, tenantID).Return(nil, errors.New("connection refused")).Once()
	mockDS.On("UpdateExecutionStatus", mock.Anything, "exec_fail", model.ExecutionFailed, 0, 0).Return(nil).Once()

	_, err := c.StartDispatchRun(context.Background(), tenantID, "february-cycle", testClients(10))
	require.Error(t, err)

	mockDS.AssertCalled(t, "UpdateExecutionStatus", mock.Anything, "exec_fail", model.ExecutionFailed, 0, 0)
	mockDS.AssertNotCalled(t, "InsertClients", mock.Anything, mock.Anything, mock.Anything)
}

func TestSweepDispatchingExecutions(t *testing.T) {
	c, mockDS, _ := newTestCartera(t)

	mockDS.On("GetStaleDispatchingExecutions", mock.Anything, mock.Anything).Return([]model.CollectionExecution{
		{ExecutionID: "exec_drained", Status: model.ExecutionDispatching, AssignedClients: 50, TotalBatches: 1},
		{ExecutionID: "exec_inflight", Status: model.ExecutionDispatching, AssignedClients: 50, TotalBatches: 1},
	}, nil).Once()

	// exec_drained: its only batch reached a terminal state.
	mockDS.On("GetAuditLogByExecution", mock.Anything, "exec_drained").Return([]model.AuditLogEntry{
		{ExecutionID: "exec_drained", BatchID: "batch_1", Event: model.EventEnqueued},
		{ExecutionID: "exec_drained", BatchID: "batch_1", Event: model.EventCompleted},
	}, nil).Once()
	// exec_inflight: still has a batch in flight, must be left alone.
	mockDS.On("GetAuditLogByExecution", mock.Anything, "exec_inflight").Return([]model.AuditLogEntry{
		{ExecutionID: "exec_inflight", BatchID: "batch_2", Event: model.EventEnqueued},
	}, nil).Once()

	mockDS.On("GetExecution", mock.Anything, "exec_drained").Return(&model.CollectionExecution{
		ExecutionID:     "exec_drained",
		Status:          model.ExecutionDispatching,
		AssignedClients: 50,
		TotalBatches:    1,
	}, nil).Once()
	mockDS.On("UpdateExecutionStatus", mock.Anything, "exec_drained", model.ExecutionCompleted, 50, 1).Return(nil).Once()

	err := c.SweepDispatchingExecutions(context.Background())
	require.NoError(t, err)

	mockDS.AssertExpectations(t)
	mockDS.AssertNotCalled(t, "UpdateExecutionStatus", mock.Anything, "exec_inflight", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkExecutionCompleted(t *testing.T) {
	c, mockDS, _ := newTestCartera(t)

	mockDS.On("GetExecution", mock.Anything, "exec_done").Return(&model.CollectionExecution{
		ExecutionID:     "exec_done",
		Status:          model.ExecutionDispatching,
		AssignedClients: 120,
		TotalBatches:    3,
	}, nil).Once()
	mockDS.On("UpdateExecutionStatus", mock.Anything, "exec_done", model.ExecutionCompleted, 120, 3).Return(nil).Once()

	err := c.MarkExecutionCompleted(context.Background(), "exec_done")
	require.NoError(t, err)
	mockDS.AssertExpectations(t)
}
