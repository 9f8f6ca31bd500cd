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
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/carterahq/cartera/model"
)

// CreateThreshold is the request body for registering a notification threshold.
type CreateThreshold struct {
	TenantID   string `json:"tenant_id"`
	Name       string `json:"name"`
	DaysFrom   int    `json:"days_from"`
	DaysTo     *int   `json:"days_to,omitempty"`
	TemplateID string `json:"template_id"`
	Channel    string `json:"channel"`
}

func (t *CreateThreshold) ValidateCreateThreshold() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.TenantID, validation.Required),
		validation.Field(&t.Name, validation.Required),
		validation.Field(&t.TemplateID, validation.Required),
		validation.Field(&t.Channel, validation.Required, validation.In("email", "sms", "whatsapp")),
		validation.Field(&t.DaysFrom, validation.Min(0)),
		validation.Field(&t.DaysTo, validation.By(daysRangeValidation(t))),
	)
}

func daysRangeValidation(t *CreateThreshold) validation.RuleFunc {
	return func(value interface{}) error {
		if t.DaysTo != nil && *t.DaysTo < t.DaysFrom {
			return errors.New("days_to must be greater than or equal to days_from")
		}
		return nil
	}
}

func (t *CreateThreshold) ToThreshold() *model.NotificationThreshold {
	return &model.NotificationThreshold{
		TenantID:   t.TenantID,
		Name:       t.Name,
		DaysFrom:   t.DaysFrom,
		DaysTo:     t.DaysTo,
		TemplateID: t.TemplateID,
		Channel:    t.Channel,
		Active:     true,
	}
}

// CreateAttachmentRule is the request body for registering an attachment rule.
type CreateAttachmentRule struct {
	TenantID     string           `json:"tenant_id"`
	Name         string           `json:"name"`
	ThresholdID  string           `json:"threshold_id,omitempty"`
	Category     string           `json:"category,omitempty"`
	CustomerNIT  string           `json:"customer_nit,omitempty"`
	DaysFrom     *int             `json:"days_from,omitempty"`
	DaysTo       *int             `json:"days_to,omitempty"`
	MinAmount    *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount    *decimal.Decimal `json:"max_amount,omitempty"`
	Global       bool             `json:"global"`
	AttachmentID string           `json:"attachment_id"`
	DisplayOrder int              `json:"display_order"`
}

func (r *CreateAttachmentRule) ValidateCreateAttachmentRule() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TenantID, validation.Required),
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.AttachmentID, validation.Required),
		validation.Field(&r.Global, validation.By(ruleCriteriaValidation(r))),
	)
}

func ruleCriteriaValidation(r *CreateAttachmentRule) validation.RuleFunc {
	return func(value interface{}) error {
		if r.Global {
			return nil
		}
		if r.ThresholdID == "" && r.Category == "" && r.CustomerNIT == "" &&
			r.DaysFrom == nil && r.DaysTo == nil && r.MinAmount == nil && r.MaxAmount == nil {
			return errors.New("a non-global rule needs at least one criterion")
		}
		return nil
	}
}

func (r *CreateAttachmentRule) ToAttachmentRule() *model.AttachmentRule {
	return &model.AttachmentRule{
		TenantID:     r.TenantID,
		Name:         r.Name,
		ThresholdID:  r.ThresholdID,
		Category:     r.Category,
		CustomerNIT:  r.CustomerNIT,
		DaysFrom:     r.DaysFrom,
		DaysTo:       r.DaysTo,
		MinAmount:    r.MinAmount,
		MaxAmount:    r.MaxAmount,
		Global:       r.Global,
		AttachmentID: r.AttachmentID,
		DisplayOrder: r.DisplayOrder,
		Active:       true,
	}
}

// ImportedClient is one debtor row of a campaign dispatch request.
type ImportedClient struct {
	NIT              string          `json:"nit"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	Category         string          `json:"category"`
	TotalDaysOverdue int             `json:"total_days_overdue"`
	TotalAmountDue   decimal.Decimal `json:"total_amount_due"`
	TotalInvoices    int             `json:"total_invoices"`
}

// DispatchCampaign is the request body for starting a dispatch run.
type DispatchCampaign struct {
	TenantID     string           `json:"tenant_id"`
	CampaignName string           `json:"campaign_name"`
	Clients      []ImportedClient `json:"clients"`
}

func (d *DispatchCampaign) ValidateDispatchCampaign() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.TenantID, validation.Required),
		validation.Field(&d.CampaignName, validation.Required),
		validation.Field(&d.Clients, validation.Required, validation.Length(1, 0)),
	)
}

// ScheduleCampaign is the request body for registering a one-shot dispatch
// trigger at a future local time.
type ScheduleCampaign struct {
	TenantID    string    `json:"tenant_id"`
	ExecutionID string    `json:"execution_id"`
	Timezone    string    `json:"timezone,omitempty"`
	RunAt       time.Time `json:"run_at"`
}

func (s *ScheduleCampaign) ValidateScheduleCampaign() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.TenantID, validation.Required),
		validation.Field(&s.ExecutionID, validation.Required),
		validation.Field(&s.RunAt, validation.Required, validation.By(futureInstantValidation(s))),
	)
}

func futureInstantValidation(s *ScheduleCampaign) validation.RuleFunc {
	return func(value interface{}) error {
		if !s.RunAt.After(time.Now()) {
			return errors.New("run_at must be in the future")
		}
		return nil
	}
}

func (d *DispatchCampaign) ToClients() []model.Client {
	clients := make([]model.Client, len(d.Clients))
	for i, c := range d.Clients {
		clients[i] = model.Client{
			NIT:              c.NIT,
			Name:             c.Name,
			Email:            c.Email,
			Phone:            c.Phone,
			Category:         c.Category,
			TotalDaysOverdue: c.TotalDaysOverdue,
			TotalAmountDue:   c.TotalAmountDue,
			TotalInvoices:    c.TotalInvoices,
		}
	}
	return clients
}
