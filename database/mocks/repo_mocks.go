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
package mocks

import (
	"context"
	"time"

	"github.com/carterahq/cartera/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Threshold methods

func (m *MockDataSource) CreateThreshold(ctx context.Context, threshold *model.NotificationThreshold) error {
	args := m.Called(ctx, threshold)
	return args.Error(0)
}

func (m *MockDataSource) GetActiveThresholds(ctx context.Context, tenantID string) ([]model.NotificationThreshold, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.NotificationThreshold), args.Error(1)
}

func (m *MockDataSource) FindOverlappingThresholds(ctx context.Context, tenantID string, from int, to *int) ([]model.NotificationThreshold, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.NotificationThreshold), args.Error(1)
}

func (m *MockDataSource) DisableThreshold(ctx context.Context, tenantID, thresholdID string) error {
	args := m.Called(ctx, tenantID, thresholdID)
	return args.Error(0)
}

// Attachment rule methods

func (m *MockDataSource) CreateAttachmentRule(ctx context.Context, rule *model.AttachmentRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockDataSource) GetActiveAttachmentRules(ctx context.Context, tenantID string) ([]model.AttachmentRule, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AttachmentRule), args.Error(1)
}

// Client methods

func (m *MockDataSource) InsertClients(ctx context.Context, executionID string, clients []model.Client) error {
	args := m.Called(ctx, executionID, clients)
	return args.Error(0)
}

func (m *MockDataSource) GetClientsByExecution(ctx context.Context, executionID string) ([]model.Client, error) {
	args := m.Called(ctx, executionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Client), args.Error(1)
}

// Audit log methods

func (m *MockDataSource) AppendAuditLog(ctx context.Context, entry *model.AuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockDataSource) GetAuditLogByExecution(ctx context.Context, executionID string) ([]model.AuditLogEntry, error) {
	args := m.Called(ctx, executionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditLogEntry), args.Error(1)
}

func (m *MockDataSource) GetRecentAuditLog(ctx context.Context, tenantID string, window time.Duration) ([]model.AuditLogEntry, error) {
	args := m.Called(ctx, tenantID, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditLogEntry), args.Error(1)
}

// Scheduler lock methods

func (m *MockDataSource) GetSchedulerLock(ctx context.Context, tenantID string) (*model.SchedulerLockRecord, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SchedulerLockRecord), args.Error(1)
}

// Execution methods

func (m *MockDataSource) CreateExecution(ctx context.Context, exec *model.CollectionExecution) error {
	args := m.Called(ctx, exec)
	return args.Error(0)
}

func (m *MockDataSource) GetExecution(ctx context.Context, executionID string) (*model.CollectionExecution, error) {
	args := m.Called(ctx, executionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CollectionExecution), args.Error(1)
}

func (m *MockDataSource) GetRecentExecutions(ctx context.Context, tenantID string, limit int) ([]model.CollectionExecution, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CollectionExecution), args.Error(1)
}

func (m *MockDataSource) GetStaleDispatchingExecutions(ctx context.Context, olderThan time.Duration) ([]model.CollectionExecution, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CollectionExecution), args.Error(1)
}

func (m *MockDataSource) UpdateExecutionStatus(ctx context.Context, executionID, status string, assignedClients, totalBatches int) error {
	args := m.Called(ctx, executionID, status, assignedClients, totalBatches)
	return args.Error(0)
}
