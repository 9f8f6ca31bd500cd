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
	"go.opentelemetry.io/otel"
)

// CreateThreshold inserts a new notification threshold for a tenant.
func (d Datasource) CreateThreshold(ctx context.Context, threshold *model.NotificationThreshold) error {
	ctx, span := otel.Tracer("Threshold").Start(ctx, "Saving threshold to db")
	defer span.End()

	threshold.ThresholdID = GenerateUUIDWithSuffix("thr")
	threshold.CreatedAt = time.Now()
	threshold.Active = true

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO cartera.notification_thresholds(
			threshold_id, tenant_id, name, days_from, days_to, template_id, channel, active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		threshold.ThresholdID, threshold.TenantID, threshold.Name, threshold.DaysFrom,
		threshold.DaysTo, threshold.TemplateID, threshold.Channel, threshold.Active, threshold.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return apierror.NewAPIError(apierror.ErrConflict, "Threshold already exists", err)
		}
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create threshold", err)
	}
	return nil
}

// GetActiveThresholds returns every active threshold for a tenant in one
// query. Callers sort the set themselves; the store guarantees no ordering.
func (d Datasource) GetActiveThresholds(ctx context.Context, tenantID string) ([]model.NotificationThreshold, error) {
	ctx, span := otel.Tracer("Threshold").Start(ctx, "Fetching active thresholds")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, threshold_id, tenant_id, name, days_from, days_to, template_id, channel, active, created_at
		FROM cartera.notification_thresholds
		WHERE tenant_id = $1 AND active = TRUE
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var thresholds []model.NotificationThreshold
	for rows.Next() {
		threshold, err := scanThreshold(rows)
		if err != nil {
			return nil, err
		}
		thresholds = append(thresholds, threshold)
	}
	return thresholds, rows.Err()
}

// FindOverlappingThresholds returns active thresholds whose interval
// intersects [from, to]. The write path uses this to flag overlapping
// configuration as a data-quality problem before persisting; the resolver
// itself tolerates overlap with a deterministic first-match.
func (d Datasource) FindOverlappingThresholds(ctx context.Context, tenantID string, from int, to *int) ([]model.NotificationThreshold, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, threshold_id, tenant_id, name, days_from, days_to, template_id, channel, active, created_at
		FROM cartera.notification_thresholds
		WHERE tenant_id = $1 AND active = TRUE
		  AND ($3::int IS NULL OR days_from <= $3)
		  AND (days_to IS NULL OR days_to >= $2)
	`, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var thresholds []model.NotificationThreshold
	for rows.Next() {
		threshold, err := scanThreshold(rows)
		if err != nil {
			return nil, err
		}
		thresholds = append(thresholds, threshold)
	}
	return thresholds, rows.Err()
}

// DisableThreshold soft-deletes a threshold so historical executions keep
// referencing it.
func (d Datasource) DisableThreshold(ctx context.Context, tenantID, thresholdID string) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE cartera.notification_thresholds
		SET active = FALSE, disabled_at = NOW()
		WHERE tenant_id = $1 AND threshold_id = $2 AND active = TRUE
	`, tenantID, thresholdID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to disable threshold", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Threshold not found", nil)
	}
	return nil
}

func scanThreshold(rows *sql.Rows) (model.NotificationThreshold, error) {
	var threshold model.NotificationThreshold
	var daysTo sql.NullInt64
	var name, channel sql.NullString
	err := rows.Scan(
		&threshold.ID, &threshold.ThresholdID, &threshold.TenantID, &name,
		&threshold.DaysFrom, &daysTo, &threshold.TemplateID, &channel,
		&threshold.Active, &threshold.CreatedAt,
	)
	if err != nil {
		return threshold, err
	}
	threshold.Name = name.String
	threshold.Channel = channel.String
	if daysTo.Valid {
		v := int(daysTo.Int64)
		threshold.DaysTo = &v
	}
	return threshold, nil
}
