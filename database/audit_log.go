package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/carterahq/cartera/model"
	"go.opentelemetry.io/otel"
)

// AppendAuditLog inserts a new audit entry. The log is append-only: there is
// no update or delete path anywhere in this package.
func (d Datasource) AppendAuditLog(ctx context.Context, entry *model.AuditLogEntry) error {
	ctx, span := otel.Tracer("AuditLog").Start(ctx, "Appending audit log entry")
	defer span.End()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO cartera.execution_audit_logs(
			execution_id, batch_id, event, worker_id, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ExecutionID, nullIfEmpty(entry.BatchID), string(entry.Event),
		nullIfEmpty(entry.WorkerID), entry.Details, entry.CreatedAt,
	)
	return err
}

// GetAuditLogByExecution returns the full event stream for one execution,
// oldest first, the ordering the cold-start reconstructor expects.
func (d Datasource) GetAuditLogByExecution(ctx context.Context, executionID string) ([]model.AuditLogEntry, error) {
	ctx, span := otel.Tracer("AuditLog").Start(ctx, "Fetching audit log for execution")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, execution_id, batch_id, event, worker_id, details, created_at
		FROM cartera.execution_audit_logs
		WHERE execution_id = $1
		ORDER BY created_at ASC, id ASC
	`, executionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAuditEntries(rows)
}

// GetRecentAuditLog returns the event stream across a tenant's executions
// inside the active batch window, oldest first.
func (d Datasource) GetRecentAuditLog(ctx context.Context, tenantID string, window time.Duration) ([]model.AuditLogEntry, error) {
	ctx, span := otel.Tracer("AuditLog").Start(ctx, "Fetching recent audit log")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT l.id, l.execution_id, l.batch_id, l.event, l.worker_id, l.details, l.created_at
		FROM cartera.execution_audit_logs l
		JOIN cartera.collection_executions e ON e.execution_id = l.execution_id
		WHERE e.tenant_id = $1 AND l.created_at >= $2
		ORDER BY l.created_at ASC, l.id ASC
	`, tenantID, time.Now().Add(-window))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAuditEntries(rows)
}

func scanAuditEntries(rows *sql.Rows) ([]model.AuditLogEntry, error) {
	var entries []model.AuditLogEntry
	for rows.Next() {
		var entry model.AuditLogEntry
		var batchID, workerID, details sql.NullString
		var event string
		err := rows.Scan(&entry.ID, &entry.ExecutionID, &batchID, &event, &workerID, &details, &entry.CreatedAt)
		if err != nil {
			return nil, err
		}
		entry.BatchID = batchID.String
		entry.Event = model.AuditEvent(event)
		entry.WorkerID = workerID.String
		entry.Details = details.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
