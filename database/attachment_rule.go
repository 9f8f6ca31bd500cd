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
	"database/sql"
	"time"

	"github.com/carterahq/cartera/internal/apierror"
	"github.com/carterahq/cartera/model"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
)

// CreateAttachmentRule inserts a new attachment rule for a tenant.
func (d Datasource) CreateAttachmentRule(ctx context.Context, rule *model.AttachmentRule) error {
	ctx, span := otel.Tracer("AttachmentRule").Start(ctx, "Saving attachment rule to db")
	defer span.End()

	rule.RuleID = GenerateUUIDWithSuffix("rule")
	rule.CreatedAt = time.Now()
	rule.Active = true

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO cartera.attachment_rules(
			rule_id, tenant_id, name, threshold_id, category, customer_nit,
			days_from, days_to, min_amount, max_amount, is_global,
			attachment_id, display_order, active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		rule.RuleID, rule.TenantID, rule.Name, rule.ThresholdID, rule.Category, rule.CustomerNIT,
		rule.DaysFrom, rule.DaysTo, decimalOrNil(rule.MinAmount), decimalOrNil(rule.MaxAmount), rule.Global,
		rule.AttachmentID, rule.DisplayOrder, rule.Active, rule.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return apierror.NewAPIError(apierror.ErrConflict, "Attachment rule already exists", err)
		}
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create attachment rule", err)
	}
	return nil
}

// GetActiveAttachmentRules returns the full active rule set for a tenant in
// one query, ordered by configured display order for stable resolution.
func (d Datasource) GetActiveAttachmentRules(ctx context.Context, tenantID string) ([]model.AttachmentRule, error) {
	ctx, span := otel.Tracer("AttachmentRule").Start(ctx, "Fetching active attachment rules")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, rule_id, tenant_id, name, threshold_id, category, customer_nit,
			days_from, days_to, min_amount, max_amount, is_global,
			attachment_id, display_order, active, created_at
		FROM cartera.attachment_rules
		WHERE tenant_id = $1 AND active = TRUE
		ORDER BY display_order, rule_id
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []model.AttachmentRule
	for rows.Next() {
		var rule model.AttachmentRule
		var name, thresholdID, category, customerNIT sql.NullString
		var daysFrom, daysTo sql.NullInt64
		var minAmount, maxAmount sql.NullString
		err := rows.Scan(
			&rule.ID, &rule.RuleID, &rule.TenantID, &name, &thresholdID, &category, &customerNIT,
			&daysFrom, &daysTo, &minAmount, &maxAmount, &rule.Global,
			&rule.AttachmentID, &rule.DisplayOrder, &rule.Active, &rule.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		rule.Name = name.String
		rule.ThresholdID = thresholdID.String
		rule.Category = category.String
		rule.CustomerNIT = customerNIT.String
		if daysFrom.Valid {
			v := int(daysFrom.Int64)
			rule.DaysFrom = &v
		}
		if daysTo.Valid {
			v := int(daysTo.Int64)
			rule.DaysTo = &v
		}
		if rule.MinAmount, err = decimalFromNull(minAmount); err != nil {
			return nil, err
		}
		if rule.MaxAmount, err = decimalFromNull(maxAmount); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func decimalOrNil(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

func decimalFromNull(v sql.NullString) (*decimal.Decimal, error) {
	if !v.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
