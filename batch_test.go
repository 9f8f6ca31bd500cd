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
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wacul/ptr"

	"github.com/carterahq/cartera/config"
	"github.com/carterahq/cartera/database/mocks"
	"github.com/carterahq/cartera/internal/apierror"
	"github.com/carterahq/cartera/model"
)

func newTestCartera(t *testing.T) (*Cartera, *mocks.MockDataSource, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	config.MockConfig(&config.Configuration{
		Redis: config.RedisConfig{Dns: mr.Addr()},
	})
	mockDS := new(mocks.MockDataSource)
	c, err := NewCartera(mockDS)
	require.NoError(t, err)
	return c, mockDS, mr
}

func testThresholds(tenantID string) []model.NotificationThreshold {
	return []model.NotificationThreshold{
		{ThresholdID: "thr_1", TenantID: tenantID, Name: "early", DaysFrom: 1, DaysTo: ptr.Int(30), TemplateID: "tpl_early", Channel: "email", Active: true},
		{ThresholdID: "thr_2", TenantID: tenantID, Name: "mid", DaysFrom: 31, DaysTo: ptr.Int(60), TemplateID: "tpl_mid", Channel: "email", Active: true},
		{ThresholdID: "thr_3", TenantID: tenantID, Name: "late", DaysFrom: 61, TemplateID: "tpl_late", Channel: "sms", Active: true},
	}
}

func testClients(n int) []model.Client {
	clients := make([]model.Client, n)
	for i := range clients {
		clients[i] = model.Client{
			NIT:              fmt.Sprintf("900%06d", i),
			Name:             gofakeit.Company(),
			TotalDaysOverdue: i % 100,
			TotalAmountDue:   decimal.NewFromInt(int64(1000 + i)),
			TotalInvoices:    1 + i%5,
		}
	}
	return clients
}

func runSingleFetchBatch(t *testing.T, n int) {
	c, mockDS, _ := newTestCartera(t)
	tenantID := gofakeit.UUID()

	mockDS.On("GetActiveThresholds", mock.Anything, tenantID).Return(testThresholds(tenantID), nil).Once()
	mockDS.On("GetActiveAttachmentRules", mock.Anything, tenantID).Return([]model.AttachmentRule{
		{RuleID: "rule_global", TenantID: tenantID, Global: true, AttachmentID: "att_terms", DisplayOrder: 1, Active: true},
	}, nil).Once()

	clients := testClients(n)
	assignments, err := c.ProcessClientBatch(context.Background(), tenantID, clients)
	require.NoError(t, err)
	require.Len(t, assignments, n)

	assigned := 0
	for i := range assignments {
		if assignments[i].Assigned() {
			assigned++
			assert.Len(t, assignments[i].Attachments, 1)
		} else {
			assert.Empty(t, assignments[i].Attachments)
		}
	}
	// Every days-overdue value of 0 resolves to no threshold, the rest match.
	assert.Equal(t, n-n/100, assigned)

	// The whole batch was served from one threshold fetch and one rule fetch.
	mockDS.AssertNumberOfCalls(t, "GetActiveThresholds", 1)
	mockDS.AssertNumberOfCalls(t, "GetActiveAttachmentRules", 1)
}

func TestProcessClientBatchSingleFetchOneThousand(t *testing.T) {
	runSingleFetchBatch(t, 1000)
}

func TestProcessClientBatchSingleFetchSixteenThousand(t *testing.T) {
	runSingleFetchBatch(t, 16000)
}

func TestProcessClientBatchResolvesThresholdFields(t *testing.T) {
	c, mockDS, _ := newTestCartera(t)
	tenantID := gofakeit.UUID()

	mockDS.On("GetActiveThresholds", mock.Anything, tenantID).Return(testThresholds(tenantID), nil).Once()
	mockDS.On("GetActiveAttachmentRules", mock.Anything, tenantID).Return([]model.AttachmentRule{}, nil).Once()

	clients := []model.Client{
		{NIT: "900000001", TotalDaysOverdue: 15},
		{NIT: "900000002", TotalDaysOverdue: 45},
		{NIT: "900000003", TotalDaysOverdue: 90},
	}
	assignments, err := c.ProcessClientBatch(context.Background(), tenantID, clients)
	require.NoError(t, err)

	assert.Equal(t, "thr_1", assignments[0].ThresholdID)
	assert.Equal(t, "tpl_early", assignments[0].TemplateID)
	assert.Equal(t, "email", assignments[0].Channel)
	assert.Equal(t, "thr_2", assignments[1].ThresholdID)
	assert.Equal(t, "thr_3", assignments[2].ThresholdID)
	assert.Equal(t, "sms", assignments[2].Channel)
}

func TestProcessClientBatchEmptyThresholdSet(t *testing.T) {
	c, mockDS, _ := newTestCartera(t)
	tenantID := gofakeit.UUID()

	mockDS.On("GetActiveThresholds", mock.Anything, tenantID).Return([]model.NotificationThreshold{}, nil).Once()

	assignments, err := c.ProcessClientBatch(context.Background(), tenantID, testClients(25))
	require.NoError(t, err)
	require.Len(t, assignments, 25)
	for i := range assignments {
		assert.False(t, assignments[i].Assigned())
	}
	// No assignment means no attachment resolution at all.
	mockDS.AssertNotCalled(t, "GetActiveAttachmentRules", mock.Anything, mock.Anything)
}

func TestProcessClientBatchThresholdStoreFailure(t *testing.T) {
	c, mockDS, _ := newTestCartera(t)
	tenantID := gofakeit.UUID()

	mockDS.On("GetActiveThresholds", mock.Anything, tenantID).Return(nil, errors.New("connection refused")).Once()

	assignments, err := c.ProcessClientBatch(context.Background(), tenantID, testClients(10))
	require.Error(t, err)
	assert.Nil(t, assignments)

	var apiErr apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.ErrUpstreamUnavailable, apiErr.Code)
}

func TestProcessClientBatchRuleStoreFailure(t *testing.T) {
	c, mockDS, _ := newTestCartera(t)
	tenantID := gofakeit.UUID()

	mockDS.On("GetActiveThresholds", mock.Anything, tenantID).Return(testThresholds(tenantID), nil).Once()
	mockDS.On("GetActiveAttachmentRules", mock.Anything, tenantID).Return(nil, errors.New("connection refused")).Once()

	assignments, err := c.ProcessClientBatch(context.Background(), tenantID, testClients(10))
	require.Error(t, err)
	assert.Nil(t, assignments)

	var apiErr apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.ErrUpstreamUnavailable, apiErr.Code)
}
