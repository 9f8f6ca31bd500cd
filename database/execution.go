package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/carterahq/cartera/internal/apierror"
	"github.com/carterahq/cartera/model"
	"go.opentelemetry.io/otel"
)

// CreateExecution inserts a new collection execution record.
func (d Datasource) CreateExecution(ctx context.Context, exec *model.CollectionExecution) error {
	ctx, span := otel.Tracer("Execution").Start(ctx, "Saving execution to db")
	defer span.End()

	if exec.ExecutionID == "" {
		exec.ExecutionID = GenerateUUIDWithSuffix("exec")
	}
	if exec.Status == "" {
		exec.Status = model.ExecutionStarted
	}
	exec.CreatedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO cartera.collection_executions(
			execution_id, tenant_id, campaign_name, status, total_clients, assigned_clients, total_batches, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		exec.ExecutionID, exec.TenantID, exec.CampaignName, exec.Status,
		exec.TotalClients, exec.AssignedClients, exec.TotalBatches, exec.CreatedAt,
	)
	return err
}

// GetExecution retrieves an execution record by its ID.
func (d Datasource) GetExecution(ctx context.Context, executionID string) (*model.CollectionExecution, error) {
	exec := &model.CollectionExecution{}
	var completedAt sql.NullTime
	var campaignName sql.NullString
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, execution_id, tenant_id, campaign_name, status, total_clients, assigned_clients, total_batches, created_at, completed_at
		FROM cartera.collection_executions
		WHERE execution_id = $1
	`, executionID).Scan(
		&exec.ID, &exec.ExecutionID, &exec.TenantID, &campaignName, &exec.Status,
		&exec.TotalClients, &exec.AssignedClients, &exec.TotalBatches, &exec.CreatedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "Execution not found", err)
	}
	if err != nil {
		return nil, err
	}
	exec.CampaignName = campaignName.String
	if completedAt.Valid {
		exec.CompletedAt = &completedAt.Time
	}
	return exec, nil
}

// GetRecentExecutions lists a tenant's executions, newest first.
func (d Datasource) GetRecentExecutions(ctx context.Context, tenantID string, limit int) ([]model.CollectionExecution, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, execution_id, tenant_id, campaign_name, status, total_clients, assigned_clients, total_batches, created_at, completed_at
		FROM cartera.collection_executions
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var executions []model.CollectionExecution
	for rows.Next() {
		var exec model.CollectionExecution
		var completedAt sql.NullTime
		var campaignName sql.NullString
		err := rows.Scan(
			&exec.ID, &exec.ExecutionID, &exec.TenantID, &campaignName, &exec.Status,
			&exec.TotalClients, &exec.AssignedClients, &exec.TotalBatches, &exec.CreatedAt, &completedAt,
		)
		if err != nil {
			return nil, err
		}
		exec.CampaignName = campaignName.String
		if completedAt.Valid {
			exec.CompletedAt = &completedAt.Time
		}
		executions = append(executions, exec)
	}
	return executions, rows.Err()
}

// GetStaleDispatchingExecutions lists executions across all tenants that are
// still marked dispatching and were created more than olderThan ago.
func (d Datasource) GetStaleDispatchingExecutions(ctx context.Context, olderThan time.Duration) ([]model.CollectionExecution, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, execution_id, tenant_id, campaign_name, status, total_clients, assigned_clients, total_batches, created_at, completed_at
		FROM cartera.collection_executions
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at ASC
		LIMIT 100
	`, model.ExecutionDispatching, time.Now().Add(-olderThan))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var executions []model.CollectionExecution
	for rows.Next() {
		var exec model.CollectionExecution
		var completedAt sql.NullTime
		var campaignName sql.NullString
		err := rows.Scan(
			&exec.ID, &exec.ExecutionID, &exec.TenantID, &campaignName, &exec.Status,
			&exec.TotalClients, &exec.AssignedClients, &exec.TotalBatches, &exec.CreatedAt, &completedAt,
		)
		if err != nil {
			return nil, err
		}
		exec.CampaignName = campaignName.String
		if completedAt.Valid {
			exec.CompletedAt = &completedAt.Time
		}
		executions = append(executions, exec)
	}
	return executions, rows.Err()
}

// UpdateExecutionStatus updates the status of an execution record.
func (d Datasource) UpdateExecutionStatus(ctx context.Context, executionID, status string, assignedClients, totalBatches int) error {
	ctx, span := otel.Tracer("Execution").Start(ctx, "Updating execution status")
	defer span.End()

	completedAt := sql.NullTime{
		Time:  time.Now(),
		Valid: status == model.ExecutionCompleted || status == model.ExecutionFailed,
	}

	_, err := d.Conn.ExecContext(ctx, `
		UPDATE cartera.collection_executions
		SET status = $2, assigned_clients = $3, total_batches = $4, completed_at = $5
		WHERE execution_id = $1
	`, executionID, status, assignedClients, totalBatches, completedAt)
	return err
}
