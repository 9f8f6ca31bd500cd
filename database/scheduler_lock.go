package database

import (
	"context"
	"database/sql"

	"github.com/carterahq/cartera/model"
	"go.opentelemetry.io/otel"
)

// GetSchedulerLock reads the raw singleton lock record for a tenant. A tenant
// without a row is reported as the sentinel record: never locked. Deriving
// is_locked and time remaining is the model's job, not the store's.
func (d Datasource) GetSchedulerLock(ctx context.Context, tenantID string) (*model.SchedulerLockRecord, error) {
	ctx, span := otel.Tracer("SchedulerLock").Start(ctx, "Fetching scheduler lock record")
	defer span.End()

	record := &model.SchedulerLockRecord{TenantID: tenantID}
	var lockedAt, expiresAt sql.NullTime
	err := d.Conn.QueryRowContext(ctx, `
		SELECT locked_by, locked_at, expires_at
		FROM cartera.scheduler_locks
		WHERE tenant_id = $1
	`, tenantID).Scan(&record.LockedBy, &lockedAt, &expiresAt)
	if err == sql.ErrNoRows {
		record.LockedBy = model.LockSentinel
		return record, nil
	}
	if err != nil {
		return nil, err
	}
	if lockedAt.Valid {
		record.LockedAt = &lockedAt.Time
	}
	if expiresAt.Valid {
		record.ExpiresAt = &expiresAt.Time
	}
	return record, nil
}
