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

import (
	"github.com/shopspring/decimal"
)

// Client is one row of an import batch: an overdue debtor identified by its
// tax id (NIT) with totals aggregated across its open invoices. Clients are
// transient; they exist for the duration of one orchestration call.
type Client struct {
	NIT              string          `json:"nit"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	Category         string          `json:"category"`
	TotalDaysOverdue int             `json:"total_days_overdue"`
	TotalAmountDue   decimal.Decimal `json:"total_amount_due"`
	TotalInvoices    int             `json:"total_invoices"`
}

// ClientAssignment is the per-client output of batch processing. An empty
// ThresholdID means the client resolved to no policy and is exempt from the
// current notification cycle; that is a valid terminal state, not an error.
type ClientAssignment struct {
	Client      Client          `json:"client"`
	ThresholdID string          `json:"threshold_id,omitempty"`
	TemplateID  string          `json:"template_id,omitempty"`
	Channel     string          `json:"channel,omitempty"`
	Attachments []AttachmentRef `json:"attachments,omitempty"`
}

// Assigned reports whether the client resolved to a notification policy.
func (a *ClientAssignment) Assigned() bool {
	return a.ThresholdID != ""
}

// NotificationBatch groups assigned clients for a single dispatch task. The
// batch id doubles as the queue task id so retried enqueues stay idempotent.
type NotificationBatch struct {
	BatchID     string             `json:"batch_id"`
	ExecutionID string             `json:"execution_id"`
	TenantID    string             `json:"tenant_id"`
	Clients     []ClientAssignment `json:"clients"`
}
